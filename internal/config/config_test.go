package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingReturnsDefaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Snapshot.Format != "auto" {
		t.Errorf("Snapshot.Format = %q, want auto", cfg.Snapshot.Format)
	}
	if !cfg.Rewrite.Validate {
		t.Error("Rewrite.Validate should default to true")
	}
	if cfg.Analysis.CacheSize != 4 {
		t.Errorf("Analysis.CacheSize = %d, want 4", cfg.Analysis.CacheSize)
	}
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".seal"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.SourceRoot = "src"
	cfg.Snapshot.Path = "out/program.json.zst"
	cfg.Snapshot.Format = "zstd"
	cfg.Analysis.Workers = 8

	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.SourceRoot != "src" {
		t.Errorf("SourceRoot = %q, want src", loaded.SourceRoot)
	}
	if loaded.Snapshot.Path != "out/program.json.zst" {
		t.Errorf("Snapshot.Path = %q, want out/program.json.zst", loaded.Snapshot.Path)
	}
	if loaded.Snapshot.Format != "zstd" {
		t.Errorf("Snapshot.Format = %q, want zstd", loaded.Snapshot.Format)
	}
	if loaded.Analysis.Workers != 8 {
		t.Errorf("Analysis.Workers = %d, want 8", loaded.Analysis.Workers)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".seal"), 0755); err != nil {
		t.Fatal(err)
	}
	partial := `{"version": 1, "snapshot": {"path": "custom.json"}}`
	if err := os.WriteFile(filepath.Join(root, ".seal", "config.json"), []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Snapshot.Path != "custom.json" {
		t.Errorf("Snapshot.Path = %q, want custom.json", cfg.Snapshot.Path)
	}
	if cfg.Snapshot.Format != "auto" {
		t.Errorf("Snapshot.Format = %q, want auto (default)", cfg.Snapshot.Format)
	}
	if cfg.Analysis.CacheSize != 4 {
		t.Errorf("Analysis.CacheSize = %d, want 4 (default)", cfg.Analysis.CacheSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"bad version", func(c *Config) { c.Version = 2 }, true},
		{"empty snapshot path", func(c *Config) { c.Snapshot.Path = "" }, true},
		{"unknown format", func(c *Config) { c.Snapshot.Format = "xml" }, true},
		{"negative workers", func(c *Config) { c.Analysis.Workers = -1 }, true},
		{"zero cache", func(c *Config) { c.Analysis.CacheSize = 0 }, true},
		{"unknown tidy rule", func(c *Config) { c.Tidy.Rules = []string{"braces"} }, true},
		{"scip format", func(c *Config) { c.Snapshot.Format = "scip" }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}
