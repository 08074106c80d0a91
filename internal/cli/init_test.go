package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	applog "contas/internal/log"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger(slog.LevelWarn, applog.ComponentReminder)
	if logger.Component() != applog.ComponentReminder {
		t.Errorf("Component() = %q", logger.Component())
	}
	if slog.Default().Enabled(context.Background(), slog.LevelInfo) {
		t.Error("default logger should drop info records at warn level")
	}
}

func TestLoadConfigFile(t *testing.T) {
	if err := LoadConfigFile(""); err != nil {
		t.Errorf("LoadConfigFile(\"\") error = %v", err)
	}
	if err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("missing file accepted")
	}

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("CONTAS_CLI_TEST_KEY=hello\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONTAS_CLI_TEST_KEY", "")
	os.Unsetenv("CONTAS_CLI_TEST_KEY")
	if err := LoadConfigFile(path); err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if got := os.Getenv("CONTAS_CLI_TEST_KEY"); got != "hello" {
		t.Errorf("CONTAS_CLI_TEST_KEY = %q", got)
	}
}
