package physics

// Mat3 is the 3x3 affine velocity-gradient matrix APIC carries per
// particle (spec §3, §9), stored as three row vectors rather than a
// [3][3]float64 array so a particle's three rows (Cx, Cy, Cz) stay
// directly addressable fields on Particle — see DESIGN.md.
//
// This is a trimmed-down cousin of Mat4: no translation, no perspective
// divide, because C is a pure linear map (velocity gradient), never an
// affine point transform.
type Mat3 struct {
	Row0, Row1, Row2 Vec3
}

// NewMat3 builds a Mat3 from its three rows.
func NewMat3(row0, row1, row2 Vec3) Mat3 {
	return Mat3{Row0: row0, Row1: row1, Row2: row2}
}

// MulVec3 applies the matrix to a column vector: result = M * v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		X: m.Row0.Dot(v),
		Y: m.Row1.Dot(v),
		Z: m.Row2.Dot(v),
	}
}

// Scale returns m with every entry scaled by s (used to divide the APIC
// gradient estimate by cell_size, spec §4.4).
func (m Mat3) Scale(s float64) Mat3 {
	return Mat3{Row0: m.Row0.Scale(s), Row1: m.Row1.Scale(s), Row2: m.Row2.Scale(s)}
}
