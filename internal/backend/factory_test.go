package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"ledger/internal/config"
	"ledger/internal/storage"
)

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		config Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"file", Config{Type: FileBackend, DataDirectory: filepath.Join(dir, "blobs")}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "ledger.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			res, err := NewFactory(nil).CreateBackend(ctx, tt.config)
			if err != nil {
				t.Fatalf("CreateBackend() = %v", err)
			}
			defer res.Cleanup()

			if res.Publisher != nil {
				t.Error("publisher must be nil without AMQP_URL")
			}
			if err := res.KV.Set(ctx, storage.TransactionsKey, []byte("[]")); err != nil {
				t.Fatalf("Set() = %v", err)
			}
			if err := res.Ping(ctx); err != nil {
				t.Fatalf("Ping() = %v", err)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		config  Config
		wantErr string
	}{
		{Config{Type: "sheets"}, "invalid backend type"},
		{Config{Type: SQLiteBackend}, "SQLite database path is required"},
		{Config{Type: FileBackend}, "data directory is required"},
		{Config{Type: MemoryBackend}, ""},
	}
	for _, tt := range tests {
		err := tt.config.Validate()
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("Validate(%s) = %v", tt.config.Type, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("Validate(%s) = %v, want %q", tt.config.Type, err, tt.wantErr)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "file", DataDir: "./data", AMQPQueue: "q"})
	if err != nil {
		t.Fatalf("FromAppConfig() = %v", err)
	}
	if cfg.Type != FileBackend || cfg.DataDirectory != "./data" || cfg.AMQPQueue != "q" {
		t.Fatalf("FromAppConfig() = %+v", cfg)
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "nope"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if len(GetBackendTypes()) != 3 {
		t.Fatal("expected three backend types")
	}
}
