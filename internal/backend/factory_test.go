package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"monedero/internal/config"
	"monedero/internal/core"
)

func TestBackendTypeIsValid(t *testing.T) {
	valid := []BackendType{RESTBackend, SQLiteBackend, MemoryBackend}
	for _, bt := range valid {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("sheets").IsValid() {
		t.Errorf("unknown type should be invalid")
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	f := NewFactory(nil)
	result, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Backend == nil {
		t.Fatalf("backend is nil")
	}
	cats, err := result.Backend.TravelCategories().List(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) == 0 {
		t.Fatalf("memory backend should be seeded")
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	f := NewFactory(nil)
	result, err := f.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "monedero.db"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer result.Cleanup()

	if _, err := result.Backend.Transactions().List(context.Background(), core.TransactionFilter{}.Normalize(time.Now())); err != nil {
		t.Fatalf("list transactions: %v", err)
	}
}

func TestCreateRESTBackendRequiresBaseURL(t *testing.T) {
	f := NewFactory(nil)
	if _, err := f.CreateBackend(context.Background(), Config{Type: RESTBackend}); err == nil {
		t.Fatalf("expected error without base URL")
	}
}

func TestFromAppConfig(t *testing.T) {
	appCfg := &config.Config{
		DataBackend:    "rest",
		BackendBaseURL: "https://api.monedero.dev",
	}
	cfg, err := FromAppConfig(appCfg, func() string { return "tok" })
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if cfg.Type != RESTBackend || cfg.BaseURL != "https://api.monedero.dev" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	appCfg.DataBackend = "bogus"
	if _, err := FromAppConfig(appCfg, nil); err == nil {
		t.Fatalf("expected error for unknown backend type")
	}
}
