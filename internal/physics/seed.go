package physics

import "fluidsim/pkg/rng"

// SeedCell fills a single cell with density^3 particles on a stratified
// random grid, uniform in [0, cell_size)^3 relative to the cell's corner
// (spec §4.6). If the cell already holds at least that many particles
// (per occupancy), no particles are inserted.
func SeedCell(g *Grid, stream *rng.Stream, cell GridIndex, velocity Vec3, density int, occupancy int) []Particle {
	target := density * density * density
	if occupancy >= target {
		return nil
	}

	toAdd := target - occupancy
	corner := g.Offset.Add(NewVec3(float64(cell.I), float64(cell.J), float64(cell.K)).Scale(g.CellSize))

	particles := make([]Particle, 0, toAdd)
	for n := 0; n < toAdd; n++ {
		offset := NewVec3(
			stream.Uniform(0, g.CellSize),
			stream.Uniform(0, g.CellSize),
			stream.Uniform(0, g.CellSize),
		)
		particles = append(particles, NewParticle(corner.Add(offset), velocity))
	}
	return particles
}

// SeedBox iterates every cell intersecting the axis-aligned box
// [start, start+size) and stratified-seeds each one at the given density
// (spec §4.6). Cells already containing particles are topped up rather
// than re-seeded, using occupancyAt to look up current per-cell counts.
func SeedBox(g *Grid, stream *rng.Stream, start, size Vec3, velocity Vec3, density int, occupancyAt func(GridIndex) int) []Particle {
	lo := g.WorldToGrid(start).Floor()
	end := g.WorldToGrid(start.Add(size))

	var seeded []Particle
	for i := int(lo.X); float64(i) < end.X; i++ {
		for j := int(lo.Y); float64(j) < end.Y; j++ {
			for k := int(lo.Z); float64(k) < end.Z; k++ {
				if !g.InBounds(i, j, k) {
					continue
				}
				cell := GridIndex{I: i, J: j, K: k}
				seeded = append(seeded, SeedCell(g, stream, cell, velocity, density, occupancyAt(cell))...)
			}
		}
	}
	return seeded
}

// SeedSphere iterates every cell intersecting the bounding box of the
// sphere (center, radius) and, for each candidate particle position drawn
// within that cell, keeps it only if it actually falls inside the sphere
// (spec §4.6's geometric predicate). Candidate counts per cell are drawn
// exactly as in SeedCell, so occupied cells are topped up identically.
func SeedSphere(g *Grid, stream *rng.Stream, center Vec3, radius float64, velocity Vec3, density int, occupancyAt func(GridIndex) int) []Particle {
	boxStart := center.Sub(NewVec3(radius, radius, radius))
	boxSize := NewVec3(2*radius, 2*radius, 2*radius)

	lo := g.WorldToGrid(boxStart).Floor()
	hi := g.WorldToGrid(boxStart.Add(boxSize)).Floor()

	radiusSq := radius * radius

	var seeded []Particle
	for i := int(lo.X); i <= int(hi.X); i++ {
		for j := int(lo.Y); j <= int(hi.Y); j++ {
			for k := int(lo.Z); k <= int(hi.Z); k++ {
				if !g.InBounds(i, j, k) {
					continue
				}
				cell := GridIndex{I: i, J: j, K: k}
				target := density * density * density
				occupancy := occupancyAt(cell)
				if occupancy >= target {
					continue
				}

				corner := g.Offset.Add(NewVec3(float64(i), float64(j), float64(k)).Scale(g.CellSize))
				for n := 0; n < target-occupancy; n++ {
					offset := NewVec3(
						stream.Uniform(0, g.CellSize),
						stream.Uniform(0, g.CellSize),
						stream.Uniform(0, g.CellSize),
					)
					pos := corner.Add(offset)
					if pos.Sub(center).LengthSq() <= radiusSq {
						seeded = append(seeded, NewParticle(pos, velocity))
					}
				}
			}
		}
	}
	return seeded
}
