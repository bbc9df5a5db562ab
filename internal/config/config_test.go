package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.ModulesFile != "MODULES.toml" {
		t.Errorf("ModulesFile = %q, want MODULES.toml", cfg.ModulesFile)
	}
	if cfg.Generate.BaseName != "" || cfg.Generate.Version != "" || cfg.Generate.OutputDir != "" {
		t.Errorf("Generate overrides should be empty by default, got %+v", cfg.Generate)
	}
	if !cfg.History.Enabled || !cfg.History.KeepArtifacts {
		t.Errorf("history should be enabled with artifacts by default, got %+v", cfg.History)
	}
	if cfg.Logging.Format != "human" || cfg.Logging.Level != "info" {
		t.Errorf("Logging = %+v, want human/info", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad version", func(c *Config) { c.Version = 5 }, "version"},
		{"empty modules file", func(c *Config) { c.ModulesFile = "" }, "modulesFile"},
		{"absolute modules file", func(c *Config) { c.ModulesFile = "/etc/MODULES.toml" }, "modulesFile"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"base name with separator", func(c *Config) { c.Generate.BaseName = "a/b" }, "generate.baseName"},
		{"version with separator", func(c *Config) { c.Generate.Version = "1/2" }, "generate.version"},
		{"empty version allowed", func(c *Config) { c.Generate.Version = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ModulesFile != "MODULES.toml" || !cfg.History.Enabled {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfig_SaveRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Generate.BaseName = "api-corda"
	cfg.Generate.Version = "4.0"
	cfg.History.KeepArtifacts = false
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Generate.BaseName != "api-corda" || loaded.Generate.Version != "4.0" {
		t.Errorf("Generate = %+v", loaded.Generate)
	}
	if loaded.History.KeepArtifacts {
		t.Error("KeepArtifacts should round-trip as false")
	}
	if !loaded.History.Enabled {
		t.Error("Enabled should round-trip as true")
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".apiscan")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := `{"version": 1, "generate": {"version": "2.1"}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Generate.Version != "2.1" {
		t.Errorf("Generate.Version = %q, want 2.1", cfg.Generate.Version)
	}
	if cfg.ModulesFile != "MODULES.toml" {
		t.Errorf("ModulesFile = %q, want default", cfg.ModulesFile)
	}
	if cfg.Logging.Format != "human" {
		t.Errorf("Logging.Format = %q, want default", cfg.Logging.Format)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("APISCAN_GENERATE_VERSION", "9.9")
	t.Setenv("APISCAN_HISTORY_ENABLED", "false")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Generate.Version != "9.9" {
		t.Errorf("Generate.Version = %q, want 9.9 from env", cfg.Generate.Version)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled should be false from env")
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".apiscan")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(root)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("LoadConfig() = %v, want *ConfigError", err)
	}
	if cfgErr.Unwrap() == nil {
		t.Error("expected wrapped parse cause")
	}
}
