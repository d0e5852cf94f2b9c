package config

import (
	"path/filepath"
	"testing"

	"mrireslice/pkg/reslice"
)

func TestDefaultConfigToEngineParamsMatchesDefaultParams(t *testing.T) {
	cfg := DefaultConfig()
	p, err := cfg.ToEngineParams()
	if err != nil {
		t.Fatalf("ToEngineParams: %v", err)
	}
	want := reslice.DefaultParams()
	if p.InterpolationMode != want.InterpolationMode {
		t.Errorf("InterpolationMode = %v, want %v", p.InterpolationMode, want.InterpolationMode)
	}
	if p.BorderMode != want.BorderMode {
		t.Errorf("BorderMode = %v, want %v", p.BorderMode, want.BorderMode)
	}
	if p.SlabMode != want.SlabMode {
		t.Errorf("SlabMode = %v, want %v", p.SlabMode, want.SlabMode)
	}
	if p.ScalarScale != want.ScalarScale {
		t.Errorf("ScalarScale = %v, want %v", p.ScalarScale, want.ScalarScale)
	}
	if p.OutputDimensionality != want.OutputDimensionality {
		t.Errorf("OutputDimensionality = %v, want %v", p.OutputDimensionality, want.OutputDimensionality)
	}
}

func TestLoadConfigMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Interpolation.Mode != "nearest" {
		t.Errorf("Mode = %q, want nearest", cfg.Interpolation.Mode)
	}
}

func TestSaveThenLoadConfigRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reslice.yaml")

	cfg := DefaultConfig()
	cfg.Interpolation.Mode = "cubic"
	cfg.Interpolation.SlabNumberOfSlices = 5
	cfg.Reslice.OutputDimensionality = 2

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Interpolation.Mode != "cubic" {
		t.Errorf("Mode = %q, want cubic", loaded.Interpolation.Mode)
	}
	if loaded.Interpolation.SlabNumberOfSlices != 5 {
		t.Errorf("SlabNumberOfSlices = %d, want 5", loaded.Interpolation.SlabNumberOfSlices)
	}
	if loaded.Reslice.OutputDimensionality != 2 {
		t.Errorf("OutputDimensionality = %d, want 2", loaded.Reslice.OutputDimensionality)
	}
}

func TestCreateDefaultConfigFileWritesLoadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig after create: %v", err)
	}
}

func TestToEngineParamsRejectsUnknownMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interpolation.Mode = "bicubic-ish"
	if _, err := cfg.ToEngineParams(); err == nil {
		t.Fatal("expected an error for an unknown interpolation mode")
	}
}
