package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable of the harness.
type Config struct {
	DataDir string `json:"data_dir"`
	DBPath  string `json:"db_path"`

	Participants []string `json:"participants"`
	MessageType  string   `json:"message_type"`
	TurnDelayMS  int      `json:"turn_delay_ms"`

	Debug    bool   `json:"debug"`
	LogLevel string `json:"log_level"`
}

// DefaultConfig builds the default configuration rooted at the working
// directory, then applies .env and environment overrides.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()
	return cfg
}

// DefaultConfigWithRoot builds the defaults under the given root without
// consulting the environment.
func DefaultConfigWithRoot(root string) *Config {
	dataDir := filepath.Join(root, "data")
	return &Config{
		DataDir:      dataDir,
		DBPath:       filepath.Join(dataDir, "mcp.db"),
		Participants: []string{"Claude", "Gemini", "ChatGPT"},
		MessageType:  "text",
		TurnDelayMS:  500,
		Debug:        false,
		LogLevel:     "info",
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("MCP_DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("MCP_DB_PATH"); val != "" {
		c.DBPath = val
	}
	if val := os.Getenv("MCP_PARTICIPANTS"); val != "" {
		var participants []string
		for _, p := range strings.Split(val, ",") {
			if p = strings.TrimSpace(p); p != "" {
				participants = append(participants, p)
			}
		}
		if len(participants) > 0 {
			c.Participants = participants
		}
	}
	if val := os.Getenv("MCP_MESSAGE_TYPE"); val != "" {
		c.MessageType = val
	}
	if val := os.Getenv("MCP_TURN_DELAY_MS"); val != "" {
		if ms, err := strconv.Atoi(val); err == nil {
			c.TurnDelayMS = ms
		}
	}
	if val := os.Getenv("MCP_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
	if val := os.Getenv("MCP_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
}

// Validate checks the configuration for values the harness cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db_path is required")
	}
	if len(c.Participants) < 2 {
		return fmt.Errorf("at least two participants are required, got %d", len(c.Participants))
	}
	for i, p := range c.Participants {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("participant %d has an empty identifier", i)
		}
	}
	if strings.TrimSpace(c.MessageType) == "" {
		return fmt.Errorf("message_type is required")
	}
	if c.TurnDelayMS < 0 || c.TurnDelayMS > 60_000 {
		return fmt.Errorf("turn_delay_ms must be within [0, 60000], got %d", c.TurnDelayMS)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// TurnDelay returns the configured pause between turns.
func (c *Config) TurnDelay() time.Duration {
	return time.Duration(c.TurnDelayMS) * time.Millisecond
}

// EnsureDirectories creates the directories the harness writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir, filepath.Dir(c.DBPath)}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
