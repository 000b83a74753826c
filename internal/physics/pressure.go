package physics

// PoissonSystem is the variable-coefficient Poisson system assembled over
// the grid's fluid cells (spec §4.5). It is matrix-free: rows are
// recomputed as (diagonal, list of fluid-neighbor coefficients) rather
// than materialized into a generic sparse matrix type, mirroring the
// teacher's own direct-grid-array Poisson solve (see DESIGN.md).
type PoissonSystem struct {
	grid *Grid

	ordinals map[GridIndex]int
	cells    []GridIndex
	diag     []float64
	neighbor [][]neighborCoeff
	rhs      []float64
}

type neighborCoeff struct {
	ordinal int
	coeff   float64
}

// BuildPoissonSystem enumerates every fluid cell, assigns it a stable
// ordinal (row-major over (i,j,k), i.e. spec's "natural row-major"
// ordering), and assembles the per-row diagonal/off-diagonal
// coefficients and right-hand side described in spec §4.5.
//
// A neighbor is classified for the purposes of this system as: fluid
// (contributes a diagonal term and a symmetric off-diagonal term), air
// (contributes a diagonal term only — Dirichlet p=0), or solid/
// out-of-grid (contributes nothing — Neumann u_n=0; the grid boundary is
// itself a reflective wall per spec §1, so an out-of-grid neighbor is
// treated the same as a solid one).
func BuildPoissonSystem(g *Grid, dt, density float64) *PoissonSystem {
	sys := &PoissonSystem{grid: g, ordinals: make(map[GridIndex]int)}

	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				if g.Cell(i, j, k).Type == CellFluid {
					idx := GridIndex{I: i, J: j, K: k}
					sys.ordinals[idx] = len(sys.cells)
					sys.cells = append(sys.cells, idx)
				}
			}
		}
	}

	n := len(sys.cells)
	sys.diag = make([]float64, n)
	sys.neighbor = make([][]neighborCoeff, n)
	sys.rhs = make([]float64, n)

	h := g.CellSize
	coeff := dt / (density * h * h)

	for ord, idx := range sys.cells {
		nonSolid := 0
		var divergence float64

		for _, off := range NeighborOffsets {
			ni, nj, nk := idx.I+off.DI, idx.J+off.DJ, idx.K+off.DK

			faceVel := 0.0
			if off.Positive {
				faceVel = g.PosFaceVel(idx.I, idx.J, idx.K, off.Axis)
			} else {
				faceVel = g.NegFaceVel(idx.I, idx.J, idx.K, off.Axis)
			}

			if !g.InBounds(ni, nj, nk) || g.Cell(ni, nj, nk).Type == CellSolid {
				// Reflective wall or solid neighbor: Neumann, face
				// velocity is the solid's (zero here), no diagonal or
				// off-diagonal contribution.
				faceVel = 0
			} else {
				nonSolid++
				if g.Cell(ni, nj, nk).Type == CellFluid {
					nOrd := sys.ordinals[GridIndex{I: ni, J: nj, K: nk}]
					sys.neighbor[ord] = append(sys.neighbor[ord], neighborCoeff{ordinal: nOrd, coeff: -coeff})
				}
			}

			if off.Positive {
				divergence += faceVel
			} else {
				divergence -= faceVel
			}
		}

		sys.diag[ord] = float64(nonSolid) * coeff
		sys.rhs[ord] = -divergence / h
	}

	return sys
}

// Len returns the number of fluid cells (rows) in the system.
func (s *PoissonSystem) Len() int { return len(s.cells) }

// RHS returns the assembled right-hand side vector b.
func (s *PoissonSystem) RHS() []float64 { return s.rhs }

// Apply computes y = A*x for the matrix-free operator (diagonal plus
// fluid-neighbor off-diagonal coefficients).
func (s *PoissonSystem) Apply(x, y []float64) {
	for i := range x {
		sum := s.diag[i] * x[i]
		for _, nc := range s.neighbor[i] {
			sum += nc.coeff * x[nc.ordinal]
		}
		y[i] = sum
	}
}

// ApplyPressure subtracts the pressure gradient from every non-solid face
// touching a fluid cell, per spec §4.5's "Apply pressure" step:
// u_face -= (dt/(rho*h)) * (p_high - p_low), using p=0 for air and for
// cells outside the grid or solid (with the face then zeroed).
//
// Every face is owned by the cell on its negative side (the one
// PosFaceVel/SetPosFaceVel address); a fluid cell's own +face is always
// its own to correct, but its -face belongs to the neighbor one cell back.
// If that neighbor is itself fluid, the neighbor's own +face pass
// corrects it; if the neighbor is air, solid or off-grid, nobody else
// will ever visit that face, so it must be corrected here instead.
func ApplyPressure(sys *PoissonSystem, pressure []float64, dt, density float64) {
	g := sys.grid
	h := g.CellSize
	scale := dt / (density * h)

	for ord, idx := range sys.cells {
		pSelf := pressure[ord]

		for _, axis := range [3]Axis{AxisX, AxisY, AxisZ} {
			hi := idx
			switch axis {
			case AxisX:
				hi.I++
			case AxisY:
				hi.J++
			default:
				hi.K++
			}

			if !g.InBounds(hi.I, hi.J, hi.K) {
				g.SetPosFaceVel(idx.I, idx.J, idx.K, axis, 0)
			} else if hiCell := g.Cell(hi.I, hi.J, hi.K); hiCell.Type == CellSolid {
				g.SetPosFaceVel(idx.I, idx.J, idx.K, axis, 0)
			} else {
				pHigh := 0.0
				if hiCell.Type == CellFluid {
					pHigh = pressure[sys.ordinals[hi]]
				}
				current := g.PosFaceVel(idx.I, idx.J, idx.K, axis)
				g.SetPosFaceVel(idx.I, idx.J, idx.K, axis, current-scale*(pHigh-pSelf))
			}

			lo := idx
			switch axis {
			case AxisX:
				lo.I--
			case AxisY:
				lo.J--
			default:
				lo.K--
			}

			if !g.InBounds(lo.I, lo.J, lo.K) {
				continue
			}
			loCell := g.Cell(lo.I, lo.J, lo.K)
			if loCell.Type == CellFluid {
				// The neighbor owns this face and corrects it on its own
				// +face pass above.
				continue
			}
			if loCell.Type == CellSolid {
				g.SetPosFaceVel(lo.I, lo.J, lo.K, axis, 0)
				continue
			}
			// Air neighbor: p_low = 0, p_high = pSelf, face owned at lo.
			current := g.PosFaceVel(lo.I, lo.J, lo.K, axis)
			g.SetPosFaceVel(lo.I, lo.J, lo.K, axis, current-scale*(pSelf-0))
		}
	}

	g.ZeroBoundaryFaces()
}

// Project runs one full pressure-projection step: assemble the system
// over the grid's current fluid cells, solve it with conjugate gradient,
// and apply the resulting pressure field to the face velocities (spec
// §4.5). Returns diagnostics describing the solve; a non-converged solve
// is advisory only — the partial pressure is still applied (spec §7).
func Project(g *Grid, dt, density, tol float64, maxIterations int) SolverDiagnostics {
	sys := BuildPoissonSystem(g, dt, density)
	if sys.Len() == 0 {
		return SolverDiagnostics{Converged: true}
	}

	pressure, diag := SolveCG(sys, tol, maxIterations)
	ApplyPressure(sys, pressure, dt, density)
	return diag
}
