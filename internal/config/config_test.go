package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Split.TestSize != 0.3 {
		t.Errorf("TestSize = %v, want 0.3", cfg.Split.TestSize)
	}
	if cfg.Split.RandomSeed != 42 {
		t.Errorf("RandomSeed = %d, want 42", cfg.Split.RandomSeed)
	}
	if cfg.CV.Folds != 5 || !cfg.CV.IsStratified() {
		t.Errorf("CV = %+v, want 5 stratified folds", cfg.CV)
	}
	if want := []int{2, 4, 6, 8}; len(cfg.Grid.MaxDepths) != len(want) {
		t.Errorf("MaxDepths = %v, want %v", cfg.Grid.MaxDepths, want)
	}
	if len(cfg.Grid.Criteria) != 2 {
		t.Errorf("Criteria = %v, want gini and entropy", cfg.Grid.Criteria)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
data:
  path: testdata/iris.csv
split:
  test_size: 0.2
grid:
  max_depths: [3]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Data.Path != "testdata/iris.csv" {
		t.Errorf("Path = %q", cfg.Data.Path)
	}
	if cfg.Split.TestSize != 0.2 {
		t.Errorf("TestSize = %v, want 0.2", cfg.Split.TestSize)
	}
	// Unset fields fall back to defaults.
	if cfg.Split.RandomSeed != 42 {
		t.Errorf("RandomSeed = %d, want default 42", cfg.Split.RandomSeed)
	}
	if len(cfg.Grid.MaxDepths) != 1 || cfg.Grid.MaxDepths[0] != 3 {
		t.Errorf("MaxDepths = %v, want [3]", cfg.Grid.MaxDepths)
	}
	if len(cfg.Grid.Criteria) != 2 {
		t.Errorf("Criteria = %v, want defaults", cfg.Grid.Criteria)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("IRIS_DATA", "/data/iris.csv")
	path := writeConfig(t, "data:\n  path: ${IRIS_DATA}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Data.Path != "/data/iris.csv" {
		t.Errorf("Path = %q, want expanded env value", cfg.Data.Path)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Error("expected error for missing file")
	}

	path := writeConfig(t, "data: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Data.Path = "iris.csv"
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty path", func(c *Config) { c.Data.Path = "" }},
		{"test size too large", func(c *Config) { c.Split.TestSize = 1.5 }},
		{"single fold", func(c *Config) { c.CV.Folds = 1 }},
		{"zero depth", func(c *Config) { c.Grid.MaxDepths = []int{0} }},
		{"unknown criterion", func(c *Config) { c.Grid.Criteria = []string{"chi2"} }},
		{"negative preview", func(c *Config) { c.Report.PreviewRows = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Data.Path = "iris.csv"
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
