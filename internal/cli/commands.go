package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/IsaacGridGainsDev/Model-Control-Protocol-for-Model-Interaction/config"
	"github.com/IsaacGridGainsDev/Model-Control-Protocol-for-Model-Interaction/internal/sequencer"
	"github.com/IsaacGridGainsDev/Model-Control-Protocol-for-Model-Interaction/internal/storage"
)

const version = "1.0.0"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Control Protocol - sequential model interaction harness",
		Long: `MCP records a simulated conversation between language model participants.
Each turn stores one message and one interaction record in a local SQLite
database; responses are deterministic placeholders standing in for real APIs.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
				cfg.LogLevel = "debug"
			}
			if db, _ := cmd.Flags().GetString("db"); db != "" {
				cfg.DBPath = db
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return cfg.EnsureDirectories()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			dbPath, _ := cmd.Flags().GetString("db")

			// Default behavior: start the interactive menu
			return runInteractiveMode(cmd.Context(), cfg, flagOverrides{
				debug:  debug,
				dbPath: dbPath,
			})
		},
	}

	rootCmd.AddCommand(newHistoryCmd(cfg))
	rootCmd.AddCommand(newClearCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("db", "", "Database file path (overrides configuration)")

	return rootCmd
}

// newHistoryCmd creates the history command
func newHistoryCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the recorded message history",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			history, err := store.History(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch history: %w", err)
			}
			DisplayHistory(history)
			return nil
		},
	}
}

// newClearCmd creates the clear command
func newClearCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every recorded message and interaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				confirmed, err := promptConfirmClear()
				if err != nil {
					return err
				}
				if !confirmed {
					DisplayInfo("Clear cancelled.")
					return nil
				}
			}

			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear store: %w", err)
			}
			DisplaySuccess("Database cleared.")
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mcp v%s\n", version)
			fmt.Println("Model Control Protocol for Model Interaction")
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			DisplaySuccess("Configuration is valid.")
			return nil
		},
	})

	return configCmd
}

// showConfig displays the current configuration
func showConfig(cfg *config.Config) {
	fmt.Println("📋 Current MCP Configuration:")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Data Directory:   %s\n", cfg.DataDir)
	fmt.Printf("Database Path:    %s\n", cfg.DBPath)
	fmt.Println()
	fmt.Printf("Participants:     %v\n", cfg.Participants)
	fmt.Printf("Message Type:     %s\n", cfg.MessageType)
	fmt.Printf("Turn Delay:       %s\n", cfg.TurnDelay())
	fmt.Println()
	fmt.Printf("Debug Mode:       %t\n", cfg.Debug)
	fmt.Printf("Log Level:        %s\n", cfg.LogLevel)
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	switch cfg.LogLevel {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// flagOverrides carries the command-line settings that take precedence over
// whatever config.json holds.
type flagOverrides struct {
	debug  bool
	dbPath string
}

// applyFlagOverrides layers the command-line overrides on top of a persisted
// configuration. The manager returns the on-disk config.json once it exists,
// so the flags must win again after every load.
func applyFlagOverrides(cfg config.Config, o flagOverrides) config.Config {
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	return cfg
}

// runInteractiveMode drives the operator-facing menu loop.
func runInteractiveMode(ctx context.Context, cfg *config.Config, overrides flagOverrides) error {
	mgr, err := config.NewManager(
		config.WithConfigDir(cfg.DataDir),
		config.WithInitialConfig(cfg),
	)
	if err != nil {
		return fmt.Errorf("config manager: %w", err)
	}
	current := applyFlagOverrides(mgr.Get(), overrides)

	logger := newLogger(current)

	store, err := storage.Open(current.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	seq, err := sequencer.New(store, &sequencer.StubProvider{}, current.Participants,
		sequencer.WithLogger(logger),
		sequencer.WithMessageType(current.MessageType),
		sequencer.WithTurnDelay(current.TurnDelay()),
	)
	if err != nil {
		return fmt.Errorf("sequencer: %w", err)
	}
	defer seq.Stop()

	// Pick up external edits of config.json while the menu is running. Only
	// the turn delay can change mid-session; the rest needs a restart.
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := mgr.Watch(watchCtx, func(updated config.Config) {
		seq.SetTurnDelay(updated.TurnDelay())
		logger.WithField("path", mgr.Path()).Info("configuration reloaded")
	}); err != nil {
		logger.WithError(err).Warn("config watch unavailable")
	}

	DisplayWelcomeBanner(current.Participants)

	for {
		choice, err := promptMenu()
		if err != nil {
			// survey returns an error when the operator interrupts
			return err
		}

		switch choice {
		case menuStart:
			// Reject up front rather than after the operator has typed
			// a message Start would refuse anyway.
			if seq.State() == sequencer.StateInConversation {
				DisplayError(fmt.Errorf("conversation already in progress"))
				continue
			}
			initial, err := promptInitialMessage()
			if err != nil {
				return err
			}
			msg, err := seq.Start(ctx, initial)
			if err != nil {
				DisplayError(err)
				continue
			}
			DisplaySuccess("Conversation started.")
			DisplayTurn(msg)

		case menuContinue:
			round, err := seq.RunRound(ctx)
			for _, msg := range round {
				DisplayTurn(msg)
			}
			if err != nil {
				DisplayError(err)
			}

		case menuHistory:
			history, err := store.History(ctx)
			if err != nil {
				DisplayError(err)
				continue
			}
			DisplayHistory(history)

		case menuClear:
			confirmed, err := promptConfirmClear()
			if err != nil {
				return err
			}
			if !confirmed {
				DisplayInfo("Clear cancelled.")
				continue
			}
			if err := store.Clear(ctx); err != nil {
				DisplayError(err)
				continue
			}
			seq.Stop()
			DisplaySuccess("Database cleared.")

		case menuExit:
			seq.Stop()
			DisplayInfo("Goodbye!")
			return nil
		}

		fmt.Println()
	}
}
