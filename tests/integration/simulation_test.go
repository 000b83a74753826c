package integration_test

import (
	"math"
	"testing"

	"fluidsim/internal/config"
	"fluidsim/internal/physics"
	"fluidsim/internal/simulation"
)

func newSimulation(t *testing.T, nx, ny, nz int, method physics.Method) *simulation.Simulation {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Nx, cfg.Ny, cfg.Nz = nx, ny, nz
	cfg.Method = method
	cfg.Density = 1.0
	cfg.Tolerance = 1e-8
	sim, err := simulation.New(cfg)
	if err != nil {
		t.Fatalf("simulation.New returned error: %v", err)
	}
	return sim
}

// TestScenarioS1FreeFallUnderPIC matches spec §8 scenario S1: a single
// particle at rest under gravity, PIC, update(0.1); velocity.y should
// land near -0.981 and the particle must not rise nor drop by more than
// 0.05 (advection runs before the velocity update, so in this single
// substep it does not move at all).
func TestScenarioS1FreeFallUnderPIC(t *testing.T) {
	sim := newSimulation(t, 4, 4, 4, physics.MethodPIC)
	sim.SeedCell(physics.GridIndex{I: 2, J: 2, K: 2}, physics.Vec3{}, 1)
	startY := sim.Particles()[0].Position.Y

	if _, err := sim.Update(0.1); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	p := sim.Particles()[0]
	if math.Abs(p.Velocity.Y-(-0.981)) > 0.1 {
		t.Errorf("Expected velocity.y near -0.981, got %f", p.Velocity.Y)
	}
	deltaY := p.Position.Y - startY
	if deltaY > 0 || deltaY < -0.05 {
		t.Errorf("Expected small downward drift in [-0.05, 0], got %f", deltaY)
	}
}

// TestScenarioS2APICDivergenceStaysBounded matches spec §8 scenario S2:
// a seeded fluid block under APIC must have near-zero post-projection
// divergence at every fluid cell, every substep.
func TestScenarioS2APICDivergenceStaysBounded(t *testing.T) {
	sim := newSimulation(t, 8, 8, 8, physics.MethodAPIC)
	start := physics.NewVec3(3, 3, 3)
	size := physics.NewVec3(2, 2, 2)
	sim.SeedBox(start, size, 2)

	for step := 0; step < 10; step++ {
		if _, err := sim.Update(0.01); err != nil {
			t.Fatalf("Update failed at step %d: %v", step, err)
		}
		assertDivergenceBounded(t, sim, 1e-6)
	}
}

func assertDivergenceBounded(t *testing.T, sim *simulation.Simulation, tol float64) {
	t.Helper()
	g := sim.Grid()
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				if g.Cell(i, j, k).Type != physics.CellFluid {
					continue
				}
				div := g.PosFaceVel(i, j, k, physics.AxisX) - g.NegFaceVel(i, j, k, physics.AxisX) +
					g.PosFaceVel(i, j, k, physics.AxisY) - g.NegFaceVel(i, j, k, physics.AxisY) +
					g.PosFaceVel(i, j, k, physics.AxisZ) - g.NegFaceVel(i, j, k, physics.AxisZ)
				if div > tol || div < -tol {
					t.Fatalf("Divergence at (%d,%d,%d) exceeds tolerance: %g", i, j, k, div)
				}
			}
		}
	}
}

// TestScenarioS3FlipBlendOnePreservesVelocity matches spec §8 scenario
// S3: FLIP-blend with blend=1, no gravity, interior particle velocity
// (1,0,0) is preserved after one substep.
func TestScenarioS3FlipBlendOnePreservesVelocity(t *testing.T) {
	sim := newSimulation(t, 8, 8, 8, physics.MethodFlipBlend)
	sim.Config.Gravity = physics.Vec3{}
	sim.Config.BlendingFactor = 1.0
	sim.SeedCell(physics.GridIndex{I: 4, J: 4, K: 4}, physics.NewVec3(1, 0, 0), 1)

	if _, err := sim.Update(0.01); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	v := sim.Particles()[0].Velocity
	if math.Abs(v.X-1) > 1e-8 || math.Abs(v.Y) > 1e-8 || math.Abs(v.Z) > 1e-8 {
		t.Errorf("Expected (1,0,0) preserved, got %v", v)
	}
}

// TestScenarioS4SphereSeedingRespectsGeometry matches spec §8 scenario
// S4: every particle produced by SeedSphere must lie within the sphere,
// and a non-trivial number of particles should be produced.
func TestScenarioS4SphereSeedingRespectsGeometry(t *testing.T) {
	sim := newSimulation(t, 10, 10, 10, physics.MethodAPIC)
	center := physics.NewVec3(5, 5, 5)
	radius := 3.0
	sim.SeedSphere(center, radius, 2)

	particles := sim.Particles()
	if len(particles) == 0 {
		t.Fatal("Expected SeedSphere to produce at least one particle")
	}
	for _, p := range particles {
		if p.Position.Sub(center).Length() > radius+1e-9 {
			t.Errorf("Particle at %v lies outside the seeded sphere of radius %f", p.Position, radius)
		}
	}
}

// TestScenarioS5PressureBalancesInflowAndOutflow matches spec §8
// scenario S5: a uniform +x inflow on the -x boundary column of an
// all-fluid cube balances to near-zero net divergence after projection.
func TestScenarioS5PressureBalancesInflowAndOutflow(t *testing.T) {
	g := physics.NewGrid(4, 4, 4, 1.0, physics.Vec3{})
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				g.Cell(i, j, k).Type = physics.CellFluid
			}
		}
	}
	for j := 0; j < g.Ny; j++ {
		for k := 0; k < g.Nz; k++ {
			g.SetPosFaceVel(0, j, k, physics.AxisX, 1.0)
		}
	}

	diag := physics.Project(g, 1.0, 1.0, 1e-10, 500)
	if !diag.Converged {
		t.Fatalf("Expected pressure solve to converge, got %+v", diag)
	}

	var totalDivergence float64
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				totalDivergence += g.PosFaceVel(i, j, k, physics.AxisX) - g.NegFaceVel(i, j, k, physics.AxisX) +
					g.PosFaceVel(i, j, k, physics.AxisY) - g.NegFaceVel(i, j, k, physics.AxisY) +
					g.PosFaceVel(i, j, k, physics.AxisZ) - g.NegFaceVel(i, j, k, physics.AxisZ)
			}
		}
	}
	if totalDivergence > 1e-6 || totalDivergence < -1e-6 {
		t.Errorf("Expected total inflow to balance total outflow, net divergence %g", totalDivergence)
	}
}
