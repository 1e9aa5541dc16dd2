package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LEDGER_TEST_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LEDGER_TEST_KEY", "")
	os.Unsetenv("LEDGER_TEST_KEY")

	LoadEnvFile(path)
	if got := os.Getenv("LEDGER_TEST_KEY"); got != "from-dotenv" {
		t.Fatalf("LEDGER_TEST_KEY = %q", got)
	}

	// Missing files are ignored.
	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug", "test")
	if logger.Component() != "test" {
		t.Fatalf("Component() = %q", logger.Component())
	}
}
