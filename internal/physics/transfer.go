package physics

import "math"

// Method selects one of the three interchangeable transfer schemes (spec
// §1, §4.4, §9's tagged-variant dispatch — no virtual dispatch in the
// inner loops, just a switch in the driver once per substep).
type Method int

const (
	MethodPIC Method = iota
	MethodFlipBlend
	MethodAPIC
)

// String renders the method name, mirroring the teacher's ComputeMode.String().
func (m Method) String() string {
	switch m {
	case MethodPIC:
		return "pic"
	case MethodFlipBlend:
		return "flip_blend"
	case MethodAPIC:
		return "apic"
	default:
		return "unknown"
	}
}

// minWeightThreshold is the total-weight cutoff below which a face
// velocity is treated as unconstrained and set to zero (spec §4.4).
const minWeightThreshold = 1e-6

// kernelWeight is the trilinear (tent) kernel with support one cell
// (spec §4.4): K(d) = max(0,1-|dx|/h) * max(0,1-|dy|/h) * max(0,1-|dz|/h).
func kernelWeight(d Vec3, h float64) float64 {
	kx := math.Max(0, 1-math.Abs(d.X)/h)
	ky := math.Max(0, 1-math.Abs(d.Y)/h)
	kz := math.Max(0, 1-math.Abs(d.Z)/h)
	return kx * ky * kz
}

// orthAxes returns the two axes other than a, in ascending (X,Y,Z)
// order, used by the APIC gradient reconstruction below.
func orthAxes(a Axis) (Axis, Axis) {
	switch a {
	case AxisX:
		return AxisY, AxisZ
	case AxisY:
		return AxisX, AxisZ
	default:
		return AxisX, AxisY
	}
}

// TransferToGrid performs the particle -> grid sweep (spec §4.4). PIC and
// APIC differ only in the per-particle source velocity contributed to
// each face; FLIP-blend has no p->g path of its own (see
// TransferToGridFlip) and is not a valid argument here.
func TransferToGrid(g *Grid, hash *SpatialHash, particles []Particle, method Method) {
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				cell := g.Cell(i, j, k)
				if cell.Type != CellSolid {
					for _, axis := range [3]Axis{AxisX, AxisY, AxisZ} {
						v, ok := transferFaceVelocity(g, hash, particles, i, j, k, axis, method)
						if ok {
							g.SetPosFaceVel(i, j, k, axis, v)
						} else {
							g.SetPosFaceVel(i, j, k, axis, 0)
						}
					}
				}

				if len(hash.Bucket(i, j, k)) > 0 {
					if cell.Type != CellSolid {
						cell.Type = CellFluid
					}
				} else if cell.Type == CellFluid {
					cell.Type = CellAir
				}
			}
		}
	}
}

func transferFaceVelocity(g *Grid, hash *SpatialHash, particles []Particle, i, j, k int, axis Axis, method Method) (float64, bool) {
	faceCenter := g.FaceCenter(i, j, k, axis)
	h := g.CellSize

	var weightSum, velSum float64
	hash.ForEachNearby(GridIndex{I: i, J: j, K: k}, 1, 1, func(idx int) {
		p := &particles[idx]
		w := kernelWeight(p.Position.Sub(faceCenter), h)
		if w <= 0 {
			return
		}
		source := p.Velocity
		if method == MethodAPIC {
			source = source.Add(p.AffineMatrix().MulVec3(faceCenter.Sub(p.Position)))
		}
		weightSum += w
		velSum += w * source.Component(axis)
	})

	if weightSum < minWeightThreshold {
		return 0, false
	}
	return velSum / weightSum, true
}

// TransferToGridFlip implements FLIP-blend's peculiar p->g path (spec
// §4.4): run the PIC p->g sweep, immediately run the PIC g->p sweep so
// every particle records a pre-project reference velocity, then snapshot
// the (still pre-project) grid as old_grid. The outermost faces of the
// snapshot are already zero because Grid.SetPosFaceVel always pins them.
func TransferToGridFlip(g *Grid, hash *SpatialHash, particles []Particle) *Grid {
	TransferToGrid(g, hash, particles, MethodPIC)
	TransferFromGridPIC(g, particles)
	return cloneGrid(g)
}

func cloneGrid(g *Grid) *Grid {
	clone := NewGrid(g.Nx, g.Ny, g.Nz, g.CellSize, g.Offset)
	copy(clone.cells, g.cells)
	return clone
}

// TransferFromGridPIC interpolates a new velocity for every particle from
// the six faces of its owning cell (spec §4.4) and writes it back as
// p.Velocity. It is also the shared "PIC read" step FLIP and APIC build
// on.
func TransferFromGridPIC(g *Grid, particles []Particle) {
	for idx := range particles {
		p := &particles[idx]
		p.Velocity = interpolateVelocity(g, p.Position, p.GridIndex)
	}
}

// interpolateVelocity reads the grid velocity at a particle's position,
// given its owning cell (spec §4.4): each component is linearly
// interpolated along its own axis between the cell's negative and
// positive faces.
func interpolateVelocity(g *Grid, position Vec3, cell GridIndex) Vec3 {
	gp := g.WorldToGrid(position)
	t := NewVec3(
		gp.X-float64(cell.I),
		gp.Y-float64(cell.J),
		gp.Z-float64(cell.K),
	)

	var result Vec3
	for _, axis := range [3]Axis{AxisX, AxisY, AxisZ} {
		vNeg := g.NegFaceVel(cell.I, cell.J, cell.K, axis)
		vPos := g.PosFaceVel(cell.I, cell.J, cell.K, axis)
		result = result.WithComponent(axis, Lerp(vNeg, vPos, t.Component(axis)))
	}
	return result
}

// TransferFromGridFlip implements the FLIP-blend g->p step (spec §4.4):
// the new velocity comes from g exactly as in PIC; old_velocity is
// interpolated identically from oldGrid; the particle's final velocity
// is a convex blend of the PIC update and the FLIP (change-based) update.
func TransferFromGridFlip(g, oldGrid *Grid, particles []Particle, blend float64) {
	for idx := range particles {
		p := &particles[idx]
		newVelocity := interpolateVelocity(g, p.Position, p.GridIndex)
		oldVelocity := interpolateVelocity(oldGrid, p.Position, p.GridIndex)
		p.Velocity = newVelocity.Add(p.Velocity.Sub(oldVelocity).Scale(blend))
	}
}

// TransferFromGridAPIC performs the PIC velocity update and then
// reconstructs the particle's affine matrix C from the face velocity
// field around it (spec §4.4).
func TransferFromGridAPIC(g *Grid, particles []Particle) {
	for idx := range particles {
		p := &particles[idx]
		p.Velocity = interpolateVelocity(g, p.Position, p.GridIndex)

		gp := g.WorldToGrid(p.Position)
		rowX := apicGradientRow(g, AxisX, gp)
		rowY := apicGradientRow(g, AxisY, gp)
		rowZ := apicGradientRow(g, AxisZ, gp)
		p.SetAffineMatrix(NewMat3(rowX, rowY, rowZ).Scale(1.0 / g.CellSize))
	}
}

// apicGradientRow computes one row of the affine matrix C: the gradient
// of the trilinearly-interpolated face-`axis` velocity field at the
// particle's position gp (in continuous grid-index units), analytically
// differentiated from its 2x2x2 enclosing subblock of the face's
// naturally-staggered 3x3x3 neighborhood (spec §4.4). The result is not
// yet divided by cell_size; the caller does that once for all three rows.
func apicGradientRow(g *Grid, axis Axis, gp Vec3) Vec3 {
	o1, o2 := orthAxes(axis)

	baseA, fracA := floorFrac(gp.Component(axis))
	baseO1, fracO1 := floorFrac(gp.Component(o1) - 0.5)
	baseO2, fracO2 := floorFrac(gp.Component(o2) - 0.5)

	sample := func(da, do1, do2 int) float64 {
		return faceVelAt(g, axis, o1, o2, baseA+da, baseO1+do1, baseO2+do2)
	}

	c000 := sample(0, 0, 0)
	c100 := sample(1, 0, 0)
	c010 := sample(0, 1, 0)
	c001 := sample(0, 0, 1)
	c110 := sample(1, 1, 0)
	c101 := sample(1, 0, 1)
	c011 := sample(0, 1, 1)
	c111 := sample(1, 1, 1)

	dA := (1-fracO1)*(1-fracO2)*(c100-c000) +
		fracO1*(1-fracO2)*(c110-c010) +
		(1-fracO1)*fracO2*(c101-c001) +
		fracO1*fracO2*(c111-c011)

	dO1 := (1-fracA)*(1-fracO2)*(c010-c000) +
		fracA*(1-fracO2)*(c110-c100) +
		(1-fracA)*fracO2*(c011-c001) +
		fracA*fracO2*(c111-c101)

	dO2 := (1-fracA)*(1-fracO1)*(c001-c000) +
		fracA*(1-fracO1)*(c101-c100) +
		(1-fracA)*fracO1*(c011-c010) +
		fracA*fracO1*(c111-c110)

	var row Vec3
	row = row.WithComponent(axis, dA)
	row = row.WithComponent(o1, dO1)
	row = row.WithComponent(o2, dO2)
	return row
}

func floorFrac(v float64) (int, float64) {
	b := math.Floor(v)
	return int(b), v - b
}

// faceVelAt reads the face-`axis` velocity sample at face index `along`
// (a cell-interface index along axis, 0..N) and cell indices orth1Idx,
// orth2Idx along the o1/o2 axes, returning zero if any coordinate runs
// past the grid (spec §4.4: "zeroing any component whose neighbor is
// outside the grid — boundary faces are rigid").
func faceVelAt(g *Grid, axis, o1, o2 Axis, along, orth1Idx, orth2Idx int) float64 {
	var i, j, k int
	set := func(a Axis, v int) {
		switch a {
		case AxisX:
			i = v
		case AxisY:
			j = v
		case AxisZ:
			k = v
		}
	}
	set(axis, along)
	set(o1, orth1Idx)
	set(o2, orth2Idx)
	return g.NegFaceVel(i, j, k, axis)
}
