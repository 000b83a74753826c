package config

import (
	"errors"
	"testing"

	"fluidsim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.CellSize != 1.0 {
		t.Errorf("Expected CellSize 1.0, got %f", cfg.CellSize)
	}
	if cfg.Nx != 32 || cfg.Ny != 32 || cfg.Nz != 32 {
		t.Errorf("Expected 32^3 grid, got (%d,%d,%d)", cfg.Nx, cfg.Ny, cfg.Nz)
	}
	if cfg.Method != physics.MethodAPIC {
		t.Errorf("Expected default method APIC, got %v", cfg.Method)
	}
	if cfg.CFLNumber != 3.0 {
		t.Errorf("Expected CFLNumber 3.0, got %f", cfg.CFLNumber)
	}
	if cfg.Density != 1.0 {
		t.Errorf("Expected Density 1.0, got %f", cfg.Density)
	}
	if cfg.Tolerance != 1e-6 {
		t.Errorf("Expected Tolerance 1e-6, got %g", cfg.Tolerance)
	}
	if cfg.MaxIterations != 200 {
		t.Errorf("Expected MaxIterations 200, got %d", cfg.MaxIterations)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"zero cell size", func(c *Config) { c.CellSize = 0 }, true},
		{"zero grid dimension", func(c *Config) { c.Ny = 0 }, true},
		{"non-positive CFL", func(c *Config) { c.CFLNumber = 0 }, true},
		{"blend above one", func(c *Config) { c.BlendingFactor = 1.5 }, true},
		{"blend below zero", func(c *Config) { c.BlendingFactor = -0.1 }, true},
		{"non-positive density", func(c *Config) { c.Density = 0 }, true},
		{"non-positive tolerance", func(c *Config) { c.Tolerance = 0 }, true},
		{"non-positive max iterations", func(c *Config) { c.MaxIterations = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
			if err != nil && !errors.Is(err, physics.ErrInvalidConfig) {
				t.Errorf("Expected error to wrap ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.CellSize = 2.0

	if cfg.CellSize == clone.CellSize {
		t.Errorf("Expected clone to be independent of original")
	}
}
