package simulation

import (
	"fmt"
	"log"
	"math"

	"fluidsim/internal/config"
	"fluidsim/internal/physics"
	"fluidsim/pkg/rng"
)

// realtimeSubstepCap bounds a single TimeStep call to 0.033s, matching
// spec §4.1's "standalone time_step() caps a substep at 0.033 s for
// real-time seeding".
const realtimeSubstepCap = 0.033

// Simulation holds the entire state of the fluid core: the grid,
// particles, spatial hash and (FLIP-only) the previous-substep grid
// snapshot (spec §3, §9).
type Simulation struct {
	Config *config.Config

	grid    *physics.Grid
	oldGrid *physics.Grid
	hash    *physics.SpatialHash

	particles []physics.Particle
	stream    *rng.Stream

	invalid bool
}

// New creates a simulation instance (spec §6's `new(cell_size, size,
// grid_offset)`). cfg is validated and cloned so later mutation of the
// simulation's Config field never aliases the caller's copy.
func New(cfg *config.Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	owned := cfg.Clone()

	sim := &Simulation{
		Config: owned,
		grid:   physics.NewGrid(owned.Nx, owned.Ny, owned.Nz, owned.CellSize, owned.GridOffset),
		hash:   physics.NewSpatialHash(owned.Nx, owned.Ny, owned.Nz),
		stream: rng.New(owned.Seed),
	}
	return sim, nil
}

// Resize reallocates the grid and hash, discarding all cell state (spec
// §6's `resize(size)`). Particles and their velocities are untouched;
// the next substep re-hashes them against the new grid.
func (s *Simulation) Resize(nx, ny, nz int) {
	s.Config.Nx, s.Config.Ny, s.Config.Nz = nx, ny, nz
	s.grid.Resize(nx, ny, nz)
	s.hash.Resize(nx, ny, nz)
	if s.oldGrid != nil {
		s.oldGrid.Resize(nx, ny, nz)
	}
}

// Particles returns a read-only view of the current particle slice (spec
// §6). Callers must not retain it across a call that mutates the
// simulation.
func (s *Simulation) Particles() []physics.Particle {
	return s.particles
}

// Grid returns the simulation's MAC grid for diagnostics and mesh
// extraction collaborators (spec §1's "mesh extraction... collaborators
// only"). Callers must treat it as read-only; writes bypass the
// invariants the driver otherwise maintains.
func (s *Simulation) Grid() *physics.Grid {
	return s.grid
}

// Invalid reports whether a prior substep hit NumericBlowup; if so,
// Update rejects further calls until Reset is invoked (spec §7).
func (s *Simulation) Invalid() bool {
	return s.invalid
}

// Reset clears the NumericBlowup flag, allowing Update to run again.
// Particle state from the aborted substep is left as-is; callers that
// want a clean slate should reseed.
func (s *Simulation) Reset() {
	s.invalid = false
}

func (s *Simulation) occupancyAt(cell physics.GridIndex) int {
	return len(s.hash.Bucket(cell.I, cell.J, cell.K))
}

// SeedBox adds particles filling the axis-aligned box (spec §4.6,
// §6). density defaults to 2 when <= 0.
func (s *Simulation) SeedBox(start, size physics.Vec3, density int) {
	if density <= 0 {
		density = 2
	}
	physics.HashParticles(s.hash, s.grid, s.particles)
	s.particles = append(s.particles, physics.SeedBox(s.grid, s.stream, start, size, physics.Vec3{}, density, s.occupancyAt)...)
}

// SeedSphere adds particles filling a sphere (spec §4.6, §6).
func (s *Simulation) SeedSphere(center physics.Vec3, radius float64, density int) {
	if density <= 0 {
		density = 2
	}
	physics.HashParticles(s.hash, s.grid, s.particles)
	s.particles = append(s.particles, physics.SeedSphere(s.grid, s.stream, center, radius, physics.Vec3{}, density, s.occupancyAt)...)
}

// SeedCell adds particles filling a single cell (spec §4.6, §6).
func (s *Simulation) SeedCell(cell physics.GridIndex, velocity physics.Vec3, density int) {
	if density <= 0 {
		density = 2
	}
	physics.HashParticles(s.hash, s.grid, s.particles)
	s.particles = append(s.particles, physics.SeedCell(s.grid, s.stream, cell, velocity, density, s.occupancyAt(cell))...)
}

// Update advances wall-clock time by dt, running CFL-bounded substeps
// until the full interval is consumed (spec §4.1). It returns the
// diagnostics of the last pressure solve performed.
func (s *Simulation) Update(dt float64) (physics.SolverDiagnostics, error) {
	if s.invalid {
		return physics.SolverDiagnostics{}, fmt.Errorf("%w: simulation must be reset before further updates", physics.ErrNumericBlowup)
	}

	var diag physics.SolverDiagnostics
	remaining := dt
	substepCount := 0
	for remaining > 0 {
		ts := s.substepSize(remaining)
		substepCount++
		var err error
		diag, err = s.substep(ts)
		log.Printf("DEBUG: fluidsim substep=%d method=%v dt=%g cg_iterations=%d cg_residual=%g cg_converged=%t",
			substepCount, s.Config.Method, ts, diag.Iterations, diag.Residual, diag.Converged)
		if err != nil {
			s.invalid = true
			return diag, err
		}
		remaining -= ts
	}
	return diag, nil
}

// substepSize computes min(CFL_number*cell_size/sqrt(max||v||^2),
// dt_remaining), treating an all-zero velocity field as +infinity (spec
// §4.1, and §9's resolution of the open question on the zero-velocity
// denominator).
func (s *Simulation) substepSize(dtRemaining float64) float64 {
	maxSpeedSq := 0.0
	for _, p := range s.particles {
		if v := p.Velocity.LengthSq(); v > maxSpeedSq {
			maxSpeedSq = v
		}
	}
	if maxSpeedSq == 0 {
		return dtRemaining
	}

	ts := s.Config.CFLNumber * s.Config.CellSize / math.Sqrt(maxSpeedSq)
	if ts >= dtRemaining {
		return dtRemaining
	}
	return ts
}

// TimeStep advances the simulation by the real-time default of 0.033s
// through Update, so the interval may be split into several CFL-bounded
// substeps (spec §4.1/§6's `time_step()`).
func (s *Simulation) TimeStep() (physics.SolverDiagnostics, error) {
	return s.Update(realtimeSubstepCap)
}

// TimeStepDuration advances the simulation by dt, capped at 0.033s,
// through Update, so the interval may be split into several CFL-bounded
// substeps (spec §6's `time_step(dt)`).
func (s *Simulation) TimeStepDuration(dt float64) (physics.SolverDiagnostics, error) {
	if dt > realtimeSubstepCap {
		dt = realtimeSubstepCap
	}
	return s.Update(dt)
}

// substep runs the fixed six-phase sequence for one interval of size dt
// (spec §4.1): advect, re-hash, transfer to grid, gravity, project,
// transfer from grid.
func (s *Simulation) substep(dt float64) (physics.SolverDiagnostics, error) {
	s.advect(dt)

	physics.HashParticles(s.hash, s.grid, s.particles)

	method := s.Config.Method
	if method == physics.MethodFlipBlend {
		s.oldGrid = physics.TransferToGridFlip(s.grid, s.hash, s.particles)
	} else {
		physics.TransferToGrid(s.grid, s.hash, s.particles, method)
	}

	s.addGravity(dt)

	diag := physics.Project(s.grid, dt, s.Config.Density, s.Config.Tolerance, s.Config.MaxIterations)

	switch method {
	case physics.MethodPIC:
		physics.TransferFromGridPIC(s.grid, s.particles)
	case physics.MethodFlipBlend:
		physics.TransferFromGridFlip(s.grid, s.oldGrid, s.particles, s.Config.BlendingFactor)
	case physics.MethodAPIC:
		physics.TransferFromGridAPIC(s.grid, s.particles)
	}

	for i := range s.particles {
		if !s.particles[i].Velocity.IsFinite() {
			return diag, fmt.Errorf("%w: particle %d velocity %v", physics.ErrNumericBlowup, i, s.particles[i].Velocity)
		}
	}

	return diag, nil
}

// advect moves every particle by velocity*dt and clamps it back inside
// the grid's interior with a skin margin (spec §4.2). Clamping does not
// touch velocity.
func (s *Simulation) advect(dt float64) {
	skin := s.Config.BoundarySkinWidth
	lo := s.grid.Offset.Add(physics.NewVec3(skin, skin, skin))
	hi := s.grid.Offset.Add(physics.NewVec3(
		float64(s.grid.Nx)*s.grid.CellSize-skin,
		float64(s.grid.Ny)*s.grid.CellSize-skin,
		float64(s.grid.Nz)*s.grid.CellSize-skin,
	))

	for i := range s.particles {
		p := &s.particles[i]
		p.Position = p.Position.Add(p.Velocity.Scale(dt)).Clamp(lo, hi)
	}
}

// addGravity adds g*dt to every non-boundary face velocity (spec §4.1
// step 4), then re-pins the outermost faces to zero since the additive
// write could otherwise perturb them.
func (s *Simulation) addGravity(dt float64) {
	gDt := s.Config.Gravity.Scale(dt)
	g := s.grid
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				if g.Cell(i, j, k).Type == physics.CellSolid {
					continue
				}
				for _, axis := range [3]physics.Axis{physics.AxisX, physics.AxisY, physics.AxisZ} {
					v := g.PosFaceVel(i, j, k, axis)
					g.SetPosFaceVel(i, j, k, axis, v+gDt.Component(axis))
				}
			}
		}
	}
	g.ZeroBoundaryFaces()
}
