package physics

// CellType tags a MAC grid cell as air, fluid or solid (spec §3).
type CellType int

const (
	CellAir CellType = iota
	CellFluid
	CellSolid
)

// Cell is one staggered-grid cell: a type tag plus the three scalar face
// velocities on its positive-x, positive-y and positive-z faces (spec
// §3). The negative faces are read from the neighboring cell's positive
// face (see Grid.NegFaceVel) rather than stored redundantly.
type Cell struct {
	Type CellType
	Vel  Vec3 // Vel.X/Y/Z are the +x/+y/+z face velocities.
}

// Grid is a dense 3D array of cells addressed by (i, j, k), plus the
// world-space placement of cell (0,0,0) and the uniform cell size (spec
// §3). Storage is a single contiguous slice, row-major in k, then j, then
// i, matching the teacher's contiguous per-axis grid arrays
// (force_calculation.go's [][]float64 grids, extended to 3D and to a
// struct-of-cells rather than parallel arrays).
type Grid struct {
	Nx, Ny, Nz int
	CellSize   float64
	Offset     Vec3

	cells []Cell
}

// NewGrid allocates a grid of the given size. Every cell starts as air
// with zero face velocities.
func NewGrid(nx, ny, nz int, cellSize float64, offset Vec3) *Grid {
	g := &Grid{Nx: nx, Ny: ny, Nz: nz, CellSize: cellSize, Offset: offset}
	g.cells = make([]Cell, nx*ny*nz)
	return g
}

// Resize reallocates the grid to a new size, discarding all cell state.
// Mirrors the `resize(size)` operation from spec §6.
func (g *Grid) Resize(nx, ny, nz int) {
	g.Nx, g.Ny, g.Nz = nx, ny, nz
	g.cells = make([]Cell, nx*ny*nz)
}

// InBounds reports whether (i, j, k) addresses a real cell.
func (g *Grid) InBounds(i, j, k int) bool {
	return i >= 0 && i < g.Nx && j >= 0 && j < g.Ny && k >= 0 && k < g.Nz
}

func (g *Grid) linear(i, j, k int) int {
	return (i*g.Ny+j)*g.Nz + k
}

// Cell returns a pointer to the cell at (i, j, k). Callers must check
// InBounds first; an out-of-range index either panics or addresses some
// other cell, matching the teacher's direct-indexing style (no silent
// clamping inside the grid itself — clamping is the caller's job, e.g.
// during hashing).
func (g *Grid) Cell(i, j, k int) *Cell {
	return &g.cells[g.linear(i, j, k)]
}

// ClampIndex clamps (i, j, k) to the valid cell range, used by hashing
// (spec §4.3) and advection-adjacent bookkeeping.
func (g *Grid) ClampIndex(i, j, k int) (int, int, int) {
	return clampInt(i, 0, g.Nx-1), clampInt(j, 0, g.Ny-1), clampInt(k, 0, g.Nz-1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WorldToGrid converts a world position into continuous grid coordinates
// ((position - offset) / cell_size), per spec §3/§4.3.
func (g *Grid) WorldToGrid(pos Vec3) Vec3 {
	return pos.Sub(g.Offset).Scale(1.0 / g.CellSize)
}

// CellCenter returns the world-space center of cell (i, j, k) (spec §3).
func (g *Grid) CellCenter(i, j, k int) Vec3 {
	return g.Offset.Add(NewVec3(float64(i)+0.5, float64(j)+0.5, float64(k)+0.5).Scale(g.CellSize))
}

// FaceCenter returns the world-space midpoint of the positive face of
// cell (i, j, k) along the given axis (spec §4.4).
func (g *Grid) FaceCenter(i, j, k int, axis Axis) Vec3 {
	offsets := NewVec3(float64(i)+0.5, float64(j)+0.5, float64(k)+0.5)
	switch axis {
	case AxisX:
		offsets.X = float64(i + 1)
	case AxisY:
		offsets.Y = float64(j + 1)
	case AxisZ:
		offsets.Z = float64(k + 1)
	}
	return g.Offset.Add(offsets.Scale(g.CellSize))
}

// PosFaceVel returns the velocity on the positive face of cell (i, j, k)
// along axis. Faces on the outermost grid boundary are always zero (spec
// §3); cells outside the grid likewise read as zero.
func (g *Grid) PosFaceVel(i, j, k int, axis Axis) float64 {
	if !g.InBounds(i, j, k) {
		return 0
	}
	if g.isOuterBoundary(i, j, k, axis) {
		return 0
	}
	return g.Cell(i, j, k).Vel.Component(axis)
}

// SetPosFaceVel sets the positive-face velocity on axis for cell
// (i, j, k), except that the outermost boundary face is pinned at zero
// (spec §3, invariant 4 in spec §8).
func (g *Grid) SetPosFaceVel(i, j, k int, axis Axis, value float64) {
	if !g.InBounds(i, j, k) {
		return
	}
	if g.isOuterBoundary(i, j, k, axis) {
		value = 0
	}
	c := g.Cell(i, j, k)
	c.Vel = c.Vel.WithComponent(axis, value)
}

func (g *Grid) isOuterBoundary(i, j, k int, axis Axis) bool {
	switch axis {
	case AxisX:
		return i == g.Nx-1
	case AxisY:
		return j == g.Ny-1
	default:
		return k == g.Nz-1
	}
}

// NegFaceVel returns the velocity on the negative face of cell (i, j, k)
// along axis: the positive face of the neighbor one cell back, or zero at
// the grid's low boundary (spec §3).
func (g *Grid) NegFaceVel(i, j, k int, axis Axis) float64 {
	ni, nj, nk := i, j, k
	switch axis {
	case AxisX:
		ni--
	case AxisY:
		nj--
	default:
		nk--
	}
	if !g.InBounds(ni, nj, nk) {
		return 0
	}
	return g.PosFaceVel(ni, nj, nk, axis)
}

// ZeroBoundaryFaces pins every outermost +x/+y/+z face to zero. Called
// after gravity and after pressure projection so invariant 4 (spec §8)
// holds even though both steps write face velocities directly.
func (g *Grid) ZeroBoundaryFaces() {
	for j := 0; j < g.Ny; j++ {
		for k := 0; k < g.Nz; k++ {
			c := g.Cell(g.Nx-1, j, k)
			c.Vel.X = 0
		}
	}
	for i := 0; i < g.Nx; i++ {
		for k := 0; k < g.Nz; k++ {
			c := g.Cell(i, g.Ny-1, k)
			c.Vel.Y = 0
		}
	}
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			c := g.Cell(i, j, g.Nz-1)
			c.Vel.Z = 0
		}
	}
}

// NeighborOffsets are the six face-adjacent (di, dj, dk) offsets, used by
// the pressure solver to enumerate a cell's face neighbors (spec §4.5).
var NeighborOffsets = [6]struct {
	DI, DJ, DK int
	Axis       Axis
	Positive   bool
}{
	{1, 0, 0, AxisX, true},
	{-1, 0, 0, AxisX, false},
	{0, 1, 0, AxisY, true},
	{0, -1, 0, AxisY, false},
	{0, 0, 1, AxisZ, true},
	{0, 0, -1, AxisZ, false},
}
