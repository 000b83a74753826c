package physics

// GridIndex is the owning cell index of a particle (spec §3's
// `grid_index: vec3<usize>`). It is its own small type, rather than an
// overload of Vec3, because it is always a clamped, non-negative integer
// triple into the MAC grid, never a continuous coordinate.
type GridIndex struct {
	I, J, K int
}

// Particle is a single particle in the simulation (spec §3). Cx, Cy, Cz
// are the three rows of the APIC affine velocity-gradient matrix C; they
// are unused (left zero) under PIC and FLIP-blend.
type Particle struct {
	Position  Vec3
	Velocity  Vec3
	GridIndex GridIndex

	Cx, Cy, Cz Vec3
}

// NewParticle creates a new particle at the given position and velocity.
func NewParticle(position, velocity Vec3) Particle {
	return Particle{Position: position, Velocity: velocity}
}

// AffineMatrix returns the particle's APIC affine matrix C, built from
// its three stored rows (spec §9: stored as three row vectors rather than
// a 3x3 container, keeping the particle cache-line friendly).
func (p *Particle) AffineMatrix() Mat3 {
	return NewMat3(p.Cx, p.Cy, p.Cz)
}

// SetAffineMatrix stores c back into the particle's three row fields.
func (p *Particle) SetAffineMatrix(c Mat3) {
	p.Cx, p.Cy, p.Cz = c.Row0, c.Row1, c.Row2
}
