package arix

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertNearTol(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want ~%v", name, got, want)
	}
}

func assertVec(t *testing.T, name string, got, want Vec3) {
	t.Helper()
	if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 || math.Abs(got.Z-want.Z) > 1e-6 {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want Affine3) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func TestTransformMatrixIdentity(t *testing.T) {
	got := NewTransform(Vec3{}, Vec3{}, 1).Matrix()
	assertMatrix(t, "identity", got, Identity3())
}

func TestTransformMatrixTranslationScale(t *testing.T) {
	got := NewTransform(Vec3{1, 2, 3}, Vec3{}, 2).Matrix()
	assertVec(t, "origin", got.TransformPoint(Vec3{}), Vec3{1, 2, 3})
	assertVec(t, "unit", got.TransformPoint(Vec3{1, 1, 1}), Vec3{3, 4, 5})
	assertVec(t, "translation", got.Translation(), Vec3{1, 2, 3})
	assertVec(t, "dir", got.TransformDir(Vec3{1, 0, 0}), Vec3{2, 0, 0})
}

func TestTransformMatrixRotationY(t *testing.T) {
	m := NewTransform(Vec3{}, Vec3{0, math.Pi / 2, 0}, 1).Matrix()
	// Right-handed: +X turns toward -Z.
	assertVec(t, "x axis", m.TransformPoint(Vec3{1, 0, 0}), Vec3{0, 0, -1})
	assertVec(t, "z axis", m.TransformPoint(Vec3{0, 0, 1}), Vec3{1, 0, 0})
}

func TestTransformMatrixEulerOrder(t *testing.T) {
	rot := Vec3{0.3, 0.7, -0.4}
	m := NewTransform(Vec3{}, rot, 1).Matrix()
	rx := NewTransform(Vec3{}, Vec3{rot.X, 0, 0}, 1).Matrix()
	ry := NewTransform(Vec3{}, Vec3{0, rot.Y, 0}, 1).Matrix()
	rz := NewTransform(Vec3{}, Vec3{0, 0, rot.Z}, 1).Matrix()
	assertMatrix(t, "xyz", m, rx.Mul(ry.Mul(rz)))
}

func TestTransformMatrixEulerXYZ(t *testing.T) {
	// Three.js XYZ: Z is applied to the point first, then Y, then X.
	m := NewTransform(Vec3{}, Vec3{math.Pi / 2, 0, math.Pi / 2}, 1).Matrix()
	// Z takes +X to +Y, then X takes +Y to +Z.
	assertVec(t, "x axis", m.TransformPoint(Vec3{1, 0, 0}), Vec3{0, 0, 1})
}

func TestAffineMulOrder(t *testing.T) {
	parent := NewTransform(Vec3{10, 0, 0}, Vec3{}, 1).Matrix()
	child := NewTransform(Vec3{}, Vec3{}, 2).Matrix()
	// child applied first: scale then translate.
	got := parent.Mul(child).TransformPoint(Vec3{1, 1, 1})
	assertVec(t, "point", got, Vec3{12, 2, 2})
}

func TestInvertRoundTrip(t *testing.T) {
	m := Transform{
		Position: Vec3{1, -2, 3},
		Rotation: Vec3{0.4, 1.1, -0.2},
		Scale:    Vec3{2, 0.5, 1.5},
	}.Matrix()
	p := Vec3{0.7, -3, 5}
	got := m.Invert().TransformPoint(m.TransformPoint(p))
	assertVec(t, "round trip", got, p)
}

func TestInvertSingular(t *testing.T) {
	m := Transform{Scale: Vec3{0, 1, 1}}.Matrix()
	assertMatrix(t, "singular", m.Invert(), Identity3())
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	m := Transform{Scale: Vec3{2, 1, 1}}.Matrix()
	// A 45° surface normal tilts toward the axis that was stretched less.
	n := m.NormalMatrix().TransformDir(Vec3{1, 1, 0}.Normalize()).Normalize()
	if n.X >= n.Y {
		t.Errorf("normal = %+v, want X < Y after stretching X", n)
	}
	if math.Abs(n.Z) > 1e-12 {
		t.Errorf("normal.Z = %v, want 0", n.Z)
	}
	assertVec(t, "no translation", NewTransform(Vec3{4, 5, 6}, Vec3{}, 1).Matrix().NormalMatrix().Translation(), Vec3{})
}

func TestVec3Ops(t *testing.T) {
	a, b := Vec3{1, 2, 3}, Vec3{4, -5, 6}
	assertVec(t, "add", a.Add(b), Vec3{5, -3, 9})
	assertVec(t, "sub", a.Sub(b), Vec3{-3, 7, -3})
	assertVec(t, "scale", a.Scale(2), Vec3{2, 4, 6})
	assertNear(t, "dot", a.Dot(b), 12)
	assertVec(t, "cross", Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0}), Vec3{0, 0, 1})
	assertVec(t, "lerp", a.Lerp(b, 0.5), Vec3{2.5, -1.5, 4.5})
	assertNear(t, "len", Vec3{3, 4, 0}.Len(), 5)
	assertVec(t, "normalize", Vec3{0, 0, 3}.Normalize(), Vec3{0, 0, 1})
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero normalize = %+v, want zero", got)
	}
}
