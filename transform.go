package arix

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is an entity's live, per-frame mutated pose.
type Transform struct {
	Position Vec3
	// Rotation holds Euler angles in radians, applied X then Y then Z.
	Rotation Vec3
	Scale    Vec3
	// Opacity is the material opacity in [0, 1].
	Opacity float64
}

// NewTransform returns a transform at position p with uniform scale s and
// full opacity.
func NewTransform(p, rot Vec3, s float64) Transform {
	return Transform{Position: p, Rotation: rot, Scale: Splat(s), Opacity: 1}
}

// Affine3 is an affine 3D transform held in a column-major homogeneous
// matrix whose bottom row is (0, 0, 0, 1).
type Affine3 mgl64.Mat4

// Identity3 returns the identity matrix.
func Identity3() Affine3 { return Affine3(mgl64.Ident4()) }

// Matrix computes the local affine matrix for t.
//
// Composition order:
//
//	Scale -> Rotate(Euler XYZ) -> Translate(Position)
func (t Transform) Matrix() Affine3 {
	p, s := t.Position, t.Scale
	// Rx * Ry * Rz, matching three.js "XYZ" order.
	m := mgl64.Translate3D(p.X, p.Y, p.Z).
		Mul4(mgl64.HomogRotate3DX(t.Rotation.X)).
		Mul4(mgl64.HomogRotate3DY(t.Rotation.Y)).
		Mul4(mgl64.HomogRotate3DZ(t.Rotation.Z)).
		Mul4(mgl64.Scale3D(s.X, s.Y, s.Z))
	return Affine3(m)
}

// Mul returns m * c (c applied first).
func (m Affine3) Mul(c Affine3) Affine3 {
	return Affine3(mgl64.Mat4(m).Mul4(mgl64.Mat4(c)))
}

// TransformPoint applies m to a point.
func (m Affine3) TransformPoint(p Vec3) Vec3 {
	return vec3(mgl64.Mat4(m).Mul4x1(p.gl().Vec4(1)).Vec3())
}

// TransformDir applies the linear part of m to a direction (no translation).
func (m Affine3) TransformDir(d Vec3) Vec3 {
	return vec3(mgl64.Mat4(m).Mul4x1(d.gl().Vec4(0)).Vec3())
}

// Translation returns the translation column of m.
func (m Affine3) Translation() Vec3 {
	return vec3(mgl64.Mat4(m).Col(3).Vec3())
}

// Invert returns the inverse of m. Returns the identity matrix if m is
// singular (determinant ≈ 0).
func (m Affine3) Invert() Affine3 {
	g := mgl64.Mat4(m)
	if math.Abs(g.Det()) < 1e-12 {
		return Identity3()
	}
	return Affine3(g.Inv())
}

// NormalMatrix returns the matrix used to transform surface normals: the
// inverse-transpose of the linear part, with no translation.
func (m Affine3) NormalMatrix() Affine3 {
	l := mgl64.Mat4(m).Mat3()
	if math.Abs(l.Det()) < 1e-12 {
		return Identity3()
	}
	return Affine3(l.Inv().Transpose().Mat4())
}
