package cli

import (
	"path/filepath"
	"testing"

	"github.com/IsaacGridGainsDev/Model-Control-Protocol-for-Model-Interaction/config"
)

func TestFlagOverridesSurviveExistingConfigFile(t *testing.T) {
	dir := t.TempDir()
	base := config.DefaultConfigWithRoot(dir)

	// First run persists config.json.
	if _, err := config.NewManager(config.WithConfigDir(dir), config.WithInitialConfig(base)); err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	// Later runs load the file and ignore the initial config, so the flag
	// values must be layered back on top.
	mgr, err := config.NewManager(config.WithConfigDir(dir), config.WithInitialConfig(base))
	if err != nil {
		t.Fatalf("NewManager (existing file): %v", err)
	}

	override := filepath.Join(dir, "override.db")
	got := applyFlagOverrides(mgr.Get(), flagOverrides{dbPath: override, debug: true})

	if got.DBPath != override {
		t.Fatalf("db flag dropped: DBPath = %q, want %q", got.DBPath, override)
	}
	if !got.Debug {
		t.Fatal("debug flag dropped")
	}
	if got.LogLevel != "debug" {
		t.Fatalf("log level %q, want debug", got.LogLevel)
	}
}

func TestFlagOverridesLeaveConfigUntouched(t *testing.T) {
	cfg := *config.DefaultConfigWithRoot(t.TempDir())

	got := applyFlagOverrides(cfg, flagOverrides{})

	if got.DBPath != cfg.DBPath {
		t.Fatalf("DBPath changed without a flag: %q", got.DBPath)
	}
	if got.Debug != cfg.Debug || got.LogLevel != cfg.LogLevel {
		t.Fatalf("debug settings changed without a flag: %+v", got)
	}
}
