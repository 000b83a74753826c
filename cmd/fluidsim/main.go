// Command fluidsim runs the hybrid PIC/FLIP/APIC fluid core headless,
// seeding a block of fluid and advancing it for a fixed number of steps,
// printing pressure-solver diagnostics as it goes. It replaces the
// teacher's windowed demo with the host/plugin-shell surface the core
// itself does not provide (spec §1's "out of scope: host/plugin shells").
package main

import (
	"flag"
	"log"

	"fluidsim/internal/config"
	"fluidsim/internal/physics"
	"fluidsim/internal/simulation"
)

func main() {
	var (
		nx          = flag.Int("nx", 16, "grid cells in x")
		ny          = flag.Int("ny", 16, "grid cells in y")
		nz          = flag.Int("nz", 16, "grid cells in z")
		cellSize    = flag.Float64("cell-size", 1.0, "uniform cell size")
		method      = flag.String("method", "apic", "transfer scheme: pic, flip_blend, apic")
		blend       = flag.Float64("blend", 0.97, "FLIP blending factor in [0,1]")
		cfl         = flag.Float64("cfl", 3.0, "CFL number")
		gravityY    = flag.Float64("gravity-y", -9.81, "gravity along y")
		density     = flag.Float64("density", 1.0, "fluid density")
		seed        = flag.Int64("seed", 1, "PRNG seed for seeding")
		steps       = flag.Int("steps", 100, "number of update() calls")
		dt          = flag.Float64("dt", 0.016, "seconds per update() call")
		seedDensity = flag.Int("seed-density", 2, "particles-per-axis per seeded cell")
	)
	flag.Parse()

	cfg := config.DefaultConfig()
	cfg.Nx, cfg.Ny, cfg.Nz = *nx, *ny, *nz
	cfg.CellSize = *cellSize
	cfg.Method = parseMethod(*method)
	cfg.BlendingFactor = *blend
	cfg.CFLNumber = *cfl
	cfg.Gravity = physics.NewVec3(0, *gravityY, 0)
	cfg.Density = *density
	cfg.Seed = *seed

	sim, err := simulation.New(cfg)
	if err != nil {
		log.Fatalf("fluidsim: invalid configuration: %v", err)
	}

	center := cfg.GridOffset.Add(physics.NewVec3(
		float64(cfg.Nx)*cfg.CellSize/2,
		float64(cfg.Ny)*cfg.CellSize/2,
		float64(cfg.Nz)*cfg.CellSize/2,
	))
	blockSize := physics.NewVec3(2*cfg.CellSize, 2*cfg.CellSize, 2*cfg.CellSize)
	sim.SeedBox(center.Sub(blockSize.Scale(0.5)), blockSize, *seedDensity)

	log.Printf("fluidsim: seeded %d particles on a %dx%dx%d grid, method=%s", len(sim.Particles()), cfg.Nx, cfg.Ny, cfg.Nz, cfg.Method)

	for step := 0; step < *steps; step++ {
		diag, err := sim.Update(*dt)
		if err != nil {
			log.Fatalf("fluidsim: update failed at step %d: %v", step, err)
		}
		if !diag.Converged {
			log.Printf("fluidsim: step %d pressure solve did not converge (iterations=%d residual=%g)", step, diag.Iterations, diag.Residual)
		}
	}

	log.Printf("fluidsim: completed %d steps with %d particles", *steps, len(sim.Particles()))
}

func parseMethod(s string) physics.Method {
	switch s {
	case "pic":
		return physics.MethodPIC
	case "flip_blend":
		return physics.MethodFlipBlend
	default:
		return physics.MethodAPIC
	}
}
