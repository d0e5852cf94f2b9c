// Package config provides configuration loading and management for
// mrireslice. It handles loading configuration from YAML files and provides
// default values matching the reslice engine's own defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"mrireslice/pkg/convert"
	"mrireslice/pkg/interpolate"
	"mrireslice/pkg/reslice"
	"mrireslice/pkg/voxel"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Reslice controls the geometry and execution of a pass.
	Reslice struct {
		// ResliceAxes is a flattened row-major 4x4 matrix (16 entries).
		// An empty list means the identity.
		ResliceAxes []float64 `yaml:"resliceAxes"`

		OutputSpacing        [3]float64 `yaml:"outputSpacing"`
		ComputeOutputSpacing bool       `yaml:"computeOutputSpacing"`

		OutputOrigin        [3]float64 `yaml:"outputOrigin"`
		ComputeOutputOrigin bool       `yaml:"computeOutputOrigin"`

		OutputExtent        [6]int `yaml:"outputExtent"`
		ComputeOutputExtent bool   `yaml:"computeOutputExtent"`

		OutputDimensionality int `yaml:"outputDimensionality"`

		AutoCropOutput         bool `yaml:"autoCropOutput"`
		TransformInputSampling bool `yaml:"transformInputSampling"`
		Optimization           bool `yaml:"optimization"`

		// NumCores specifies how many CPU cores to use for parallel tiling.
		NumCores int `yaml:"numCores"`
	} `yaml:"reslice"`

	// Interpolation controls sampling mode and slab compositing.
	Interpolation struct {
		// Mode is one of "nearest", "linear", "cubic".
		Mode string `yaml:"mode"`

		// Border is one of "clamp", "repeat", "mirror".
		Border          string  `yaml:"border"`
		BorderThickness float64 `yaml:"borderThickness"`

		SlabNumberOfSlices int `yaml:"slabNumberOfSlices"`
		// SlabMode is one of "min", "max", "mean", "sum".
		SlabMode                 string  `yaml:"slabMode"`
		SlabTrapezoidIntegration bool    `yaml:"slabTrapezoidIntegration"`
		SlabSliceSpacingFraction float64 `yaml:"slabSliceSpacingFraction"`

		ScalarShift float64 `yaml:"scalarShift"`
		ScalarScale float64 `yaml:"scalarScale"`
	} `yaml:"interpolation"`

	// Output controls the destination scalar buffer and ancillary outputs.
	Output struct {
		// ScalarType is one of the voxel.Kind names, or empty to keep the
		// input's type.
		ScalarType string `yaml:"scalarType"`

		BackgroundColor [4]float64 `yaml:"backgroundColor"`

		GenerateStencilOutput bool `yaml:"generateStencilOutput"`

		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values, mirroring
// reslice.DefaultParams.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Reslice.ComputeOutputSpacing = true
	cfg.Reslice.ComputeOutputOrigin = true
	cfg.Reslice.ComputeOutputExtent = true
	cfg.Reslice.OutputDimensionality = 3
	cfg.Reslice.TransformInputSampling = true
	cfg.Reslice.Optimization = true
	cfg.Reslice.NumCores = runtime.NumCPU()

	cfg.Interpolation.Mode = "nearest"
	cfg.Interpolation.Border = "clamp"
	cfg.Interpolation.BorderThickness = 0.5
	cfg.Interpolation.SlabNumberOfSlices = 1
	cfg.Interpolation.SlabMode = "mean"
	cfg.Interpolation.SlabSliceSpacingFraction = 1.0
	cfg.Interpolation.ScalarScale = 1

	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file. If the file doesn't
// exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path.
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// ToEngineParams converts the loaded configuration into reslice.Params,
// starting from reslice.DefaultParams and overlaying the file's values.
func (cfg *Config) ToEngineParams() (reslice.Params, error) {
	p := reslice.DefaultParams()

	if len(cfg.Reslice.ResliceAxes) == 16 {
		var m [4][4]float64
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				m[r][c] = cfg.Reslice.ResliceAxes[r*4+c]
			}
		}
		p.ResliceAxes = m
	}

	p.ComputeOutputSpacing = cfg.Reslice.ComputeOutputSpacing
	if !p.ComputeOutputSpacing {
		p.OutputSpacing = cfg.Reslice.OutputSpacing
	}

	p.ComputeOutputOrigin = cfg.Reslice.ComputeOutputOrigin
	if !p.ComputeOutputOrigin {
		p.OutputOrigin = cfg.Reslice.OutputOrigin
	}

	p.ComputeOutputExtent = cfg.Reslice.ComputeOutputExtent
	if !p.ComputeOutputExtent {
		e := cfg.Reslice.OutputExtent
		p.OutputExtent = voxel.Extent{e[0], e[1], e[2], e[3], e[4], e[5]}
	}

	if cfg.Reslice.OutputDimensionality != 0 {
		p.OutputDimensionality = cfg.Reslice.OutputDimensionality
	}

	p.AutoCropOutput = cfg.Reslice.AutoCropOutput
	p.TransformInputSampling = cfg.Reslice.TransformInputSampling
	p.Optimization = cfg.Reslice.Optimization
	p.NumWorkers = cfg.Reslice.NumCores

	mode, err := parseInterpolationMode(cfg.Interpolation.Mode)
	if err != nil {
		return reslice.Params{}, err
	}
	p.InterpolationMode = mode

	border, err := parseBorderMode(cfg.Interpolation.Border)
	if err != nil {
		return reslice.Params{}, err
	}
	p.BorderMode = border
	if cfg.Interpolation.BorderThickness != 0 {
		p.BorderThickness = cfg.Interpolation.BorderThickness
	}

	if cfg.Interpolation.SlabNumberOfSlices > 0 {
		p.SlabNumberOfSlices = cfg.Interpolation.SlabNumberOfSlices
	}
	slabMode, err := parseSlabMode(cfg.Interpolation.SlabMode)
	if err != nil {
		return reslice.Params{}, err
	}
	p.SlabMode = slabMode
	p.SlabTrapezoidIntegration = cfg.Interpolation.SlabTrapezoidIntegration
	if cfg.Interpolation.SlabSliceSpacingFraction != 0 {
		p.SlabSliceSpacingFraction = cfg.Interpolation.SlabSliceSpacingFraction
	}

	p.ScalarShift = cfg.Interpolation.ScalarShift
	if cfg.Interpolation.ScalarScale != 0 {
		p.ScalarScale = cfg.Interpolation.ScalarScale
	}

	if cfg.Output.ScalarType != "" {
		kind, err := parseScalarType(cfg.Output.ScalarType)
		if err != nil {
			return reslice.Params{}, err
		}
		p.OutputScalarType = kind
		p.OutputScalarTypeSet = true
	}
	p.BackgroundColor = cfg.Output.BackgroundColor
	p.GenerateStencilOutput = cfg.Output.GenerateStencilOutput

	return p, nil
}

func parseInterpolationMode(s string) (reslice.InterpolationMode, error) {
	switch s {
	case "", "nearest":
		return reslice.ModeNearest, nil
	case "linear":
		return reslice.ModeLinear, nil
	case "cubic":
		return reslice.ModeCubic, nil
	default:
		return 0, fmt.Errorf("config: unknown interpolation mode %q", s)
	}
}

func parseBorderMode(s string) (interpolate.BorderMode, error) {
	switch s {
	case "", "clamp":
		return interpolate.BorderClamp, nil
	case "repeat":
		return interpolate.BorderRepeat, nil
	case "mirror":
		return interpolate.BorderMirror, nil
	default:
		return 0, fmt.Errorf("config: unknown border mode %q", s)
	}
}

func parseSlabMode(s string) (convert.SlabMode, error) {
	switch s {
	case "", "mean":
		return convert.SlabMean, nil
	case "min":
		return convert.SlabMin, nil
	case "max":
		return convert.SlabMax, nil
	case "sum":
		return convert.SlabSum, nil
	default:
		return 0, fmt.Errorf("config: unknown slab mode %q", s)
	}
}

func parseScalarType(s string) (voxel.Kind, error) {
	for k := voxel.Int8; k <= voxel.Float64; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("config: unknown scalar type %q", s)
}
