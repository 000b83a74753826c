package physics

import "testing"

// TestParticleCreation tests the creation of a new Particle
func TestParticleCreation(t *testing.T) {
	p := NewParticle(NewVec3(10, 20, 30), NewVec3(0.1, 0.2, 0.3))

	if p.Position.X != 10.0 || p.Position.Y != 20.0 || p.Position.Z != 30.0 {
		t.Errorf("Expected position (10, 20, 30), got (%f, %f, %f)",
			p.Position.X, p.Position.Y, p.Position.Z)
	}

	if p.Velocity.X != 0.1 || p.Velocity.Y != 0.2 || p.Velocity.Z != 0.3 {
		t.Errorf("Expected velocity (0.1, 0.2, 0.3), got (%f, %f, %f)",
			p.Velocity.X, p.Velocity.Y, p.Velocity.Z)
	}

	if p.Cx != (Vec3{}) || p.Cy != (Vec3{}) || p.Cz != (Vec3{}) {
		t.Errorf("Expected affine rows to default to zero, got Cx=%v Cy=%v Cz=%v", p.Cx, p.Cy, p.Cz)
	}
}

// TestParticleAffineMatrixRoundTrip verifies that setting and reading C
// preserves the three rows exactly (spec §9's cache-line-friendly storage).
func TestParticleAffineMatrixRoundTrip(t *testing.T) {
	p := NewParticle(Vec3{}, Vec3{})
	c := NewMat3(NewVec3(1, 2, 3), NewVec3(4, 5, 6), NewVec3(7, 8, 9))

	p.SetAffineMatrix(c)

	if got := p.AffineMatrix(); got != c {
		t.Errorf("Expected round-tripped matrix %v, got %v", c, got)
	}
}
