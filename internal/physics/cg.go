package physics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// defaultTolerance and defaultMaxIterations mirror spec §4.5's suggested
// defaults, used whenever a caller passes a non-positive value.
const (
	defaultTolerance     = 1e-6
	defaultMaxIterations = 200
)

// SolveCG solves sys.Apply(x, .) = sys.RHS() with matrix-free conjugate
// gradient and Jacobi (diagonal) preconditioning (spec §4.5: "diagonal
// preconditioning is acceptable"). Convergence is judged against
// tol*||b||_inf + 1e-12, matching spec's relative-plus-floor criterion so
// an all-zero right-hand side still terminates immediately.
func SolveCG(sys *PoissonSystem, tol float64, maxIterations int) ([]float64, SolverDiagnostics) {
	if tol <= 0 {
		tol = defaultTolerance
	}
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	n := sys.Len()
	b := sys.RHS()
	x := make([]float64, n)

	bNorm := infNorm(b)
	threshold := tol*bNorm + 1e-12

	r := make([]float64, n)
	copy(r, b)
	resNorm := infNorm(r)
	if resNorm <= threshold {
		return x, SolverDiagnostics{Iterations: 0, Residual: resNorm, Converged: true}
	}

	z := make([]float64, n)
	applyJacobi(sys, r, z)

	p := make([]float64, n)
	copy(p, z)

	rz := floats.Dot(r, z)

	ap := make([]float64, n)

	iterations := 0
	converged := false

	for iter := 1; iter <= maxIterations; iter++ {
		sys.Apply(p, ap)
		pap := floats.Dot(p, ap)
		if pap == 0 {
			break
		}
		alpha := rz / pap

		floats.AddScaled(x, alpha, p)

		floats.AddScaled(r, -alpha, ap)

		resNorm = infNorm(r)
		iterations = iter
		if resNorm <= threshold {
			converged = true
			break
		}

		applyJacobi(sys, r, z)
		rzNew := floats.Dot(r, z)
		beta := rzNew / rz
		rz = rzNew

		// p = z + beta*p
		for i := range p {
			p[i] = z[i] + beta*p[i]
		}
	}

	return x, SolverDiagnostics{Iterations: iterations, Residual: resNorm, Converged: converged}
}

// applyJacobi applies the diagonal preconditioner: z_i = r_i / diag_i,
// falling back to the identity (z_i = r_i) on a zero diagonal so an
// isolated fluid cell with no non-solid neighbors never divides by zero.
func applyJacobi(sys *PoissonSystem, r, z []float64) {
	for i, d := range sys.diag {
		if d == 0 {
			z[i] = r[i]
			continue
		}
		z[i] = r[i] / d
	}
}

func infNorm(v []float64) float64 {
	var m float64
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}
