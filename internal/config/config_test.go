package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ExperimentName != "obesity_prediction_experiment" {
		t.Errorf("ExperimentName = %q", cfg.ExperimentName)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.TestFraction != 0.3 {
		t.Errorf("TestFraction = %v, want 0.3", cfg.TestFraction)
	}
	if cfg.TemplatePath != "report_template.html" {
		t.Errorf("TemplatePath = %q", cfg.TemplatePath)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("OBEGO_EXPERIMENT_NAME", "smoke_test")
	t.Setenv("OBEGO_SEED", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ExperimentName != "smoke_test" {
		t.Errorf("ExperimentName = %q, want smoke_test", cfg.ExperimentName)
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "clean_data_path: elsewhere/clean.csv\ntest_fraction: 0.25\n"
	if err := os.WriteFile(filepath.Join(dir, "obego.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CleanDataPath != "elsewhere/clean.csv" {
		t.Errorf("CleanDataPath = %q", cfg.CleanDataPath)
	}
	if cfg.TestFraction != 0.25 {
		t.Errorf("TestFraction = %v, want 0.25", cfg.TestFraction)
	}
}

func TestLoadInvalidTestFraction(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("OBEGO_TEST_FRACTION", "1.5")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted test_fraction outside (0, 1)")
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
