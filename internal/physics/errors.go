package physics

import "fmt"

// ErrInvalidConfig is returned by Config.Validate, and so by
// simulation.New, when a parameter is out of range (spec §7):
// non-positive cell_size, zero grid size, non-positive CFL_number, a
// blending_factor outside [0,1], or a non-positive density, tolerance or
// max iteration count.
var ErrInvalidConfig = fmt.Errorf("physics: invalid configuration")

// ErrNumericBlowup is returned by Update when a particle velocity becomes
// non-finite (spec §7). The offending substep is not committed to the
// caller-visible particle state beyond what already ran; further Update
// calls continue to fail until the simulation is reset.
var ErrNumericBlowup = fmt.Errorf("physics: numeric blowup detected")

// SolverDiagnostics reports the outcome of one pressure solve (spec
// §4.5/§7). Exceeding MaxIterations without reaching Tolerance is
// advisory, not an error: Converged is false but the partial pressure
// field is still applied to the grid.
type SolverDiagnostics struct {
	Iterations int
	Residual   float64
	Converged  bool
}
