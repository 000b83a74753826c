package physics

// SpatialHash buckets particle indices by owning grid cell (spec §4.3).
// It is cleared and rebuilt every substep; the hash stores indices into
// the simulation's particle slice rather than pointers or references, so
// rebuilding or resizing never invalidates anything a caller is holding
// onto (spec §9's arena-plus-index ownership model).
//
// The bucket-per-cell shape is adapted from the retrieval pack's own
// spatial index (a 2D toroidal grid of ECS entity handles) to this spec's
// 3D clamped grid of particle indices — see DESIGN.md.
type SpatialHash struct {
	nx, ny, nz int
	buckets    [][]int
}

// NewSpatialHash allocates a hash covering a grid of the given size.
func NewSpatialHash(nx, ny, nz int) *SpatialHash {
	return &SpatialHash{nx: nx, ny: ny, nz: nz, buckets: make([][]int, nx*ny*nz)}
}

// Resize reallocates the hash for a new grid size, discarding all
// buckets.
func (h *SpatialHash) Resize(nx, ny, nz int) {
	h.nx, h.ny, h.nz = nx, ny, nz
	h.buckets = make([][]int, nx*ny*nz)
}

// Clear empties every bucket without releasing their backing arrays, so
// repeated rebuilds within a run amortize their allocations.
func (h *SpatialHash) Clear() {
	for i := range h.buckets {
		h.buckets[i] = h.buckets[i][:0]
	}
}

func (h *SpatialHash) linear(i, j, k int) int {
	return (i*h.ny+j)*h.nz + k
}

func (h *SpatialHash) inBounds(i, j, k int) bool {
	return i >= 0 && i < h.nx && j >= 0 && j < h.ny && k >= 0 && k < h.nz
}

// Insert appends particleIdx to the bucket for cell (i, j, k). Particles
// are appended in call order, so a fixed insertion order (e.g. iterating
// the particle slice front to back) yields a reproducible bucket order —
// required by spec §5 for deterministic seeding/averaging.
func (h *SpatialHash) Insert(i, j, k, particleIdx int) {
	if !h.inBounds(i, j, k) {
		return
	}
	idx := h.linear(i, j, k)
	h.buckets[idx] = append(h.buckets[idx], particleIdx)
}

// Bucket returns the particle indices currently hashed to cell (i, j, k).
// The returned slice aliases internal storage and must not be retained
// past the next Clear/Insert.
func (h *SpatialHash) Bucket(i, j, k int) []int {
	if !h.inBounds(i, j, k) {
		return nil
	}
	return h.buckets[h.linear(i, j, k)]
}

// Len returns the total number of particle references across all
// buckets, used to check invariant 1 from spec §8 (bucket population
// equals particle count).
func (h *SpatialHash) Len() int {
	n := 0
	for _, b := range h.buckets {
		n += len(b)
	}
	return n
}

// ForEachNearby enumerates every particle index hashed into the
// inclusive box of cells [cell-back, cell+fwd], clamped to the grid
// (spec §4.3's for_all_nearby_objects). f is called once per particle
// index found; a particle present in more than one visited cell (never
// the case, since each particle hashes to exactly one cell) would be
// visited once per containing cell.
func (h *SpatialHash) ForEachNearby(cell GridIndex, back, fwd int, f func(particleIdx int)) {
	loI, hiI := clampInt(cell.I-back, 0, h.nx-1), clampInt(cell.I+fwd, 0, h.nx-1)
	loJ, hiJ := clampInt(cell.J-back, 0, h.ny-1), clampInt(cell.J+fwd, 0, h.ny-1)
	loK, hiK := clampInt(cell.K-back, 0, h.nz-1), clampInt(cell.K+fwd, 0, h.nz-1)

	for i := loI; i <= hiI; i++ {
		for j := loJ; j <= hiJ; j++ {
			for k := loK; k <= hiK; k++ {
				for _, idx := range h.buckets[h.linear(i, j, k)] {
					f(idx)
				}
			}
		}
	}
}

// HashParticles clears h and re-inserts every particle, assigning each
// particle's GridIndex from its current position (spec §4.3). Insertion
// follows particle-array order, so bucket order is reproducible.
func HashParticles(h *SpatialHash, g *Grid, particles []Particle) {
	h.Clear()
	for idx := range particles {
		p := &particles[idx]
		gp := g.WorldToGrid(p.Position).Floor()
		i, j, k := g.ClampIndex(int(gp.X), int(gp.Y), int(gp.Z))
		p.GridIndex = GridIndex{I: i, J: j, K: k}
		h.Insert(i, j, k, idx)
	}
}
