package geom

import (
	"math"
	"testing"
)

func TestVector3(t *testing.T) {
	a := &Vector3{1, 2, 3}
	b := &Vector3{4, 5, 6}

	if *a.Add(b) != (Vector3{5, 7, 9}) {
		t.Error("Add", a.Add(b))
	}
	if *b.Sub(a) != (Vector3{3, 3, 3}) {
		t.Error("Sub", b.Sub(a))
	}
	if a.Dot(b) != 32 {
		t.Error("Dot", a.Dot(b))
	}
	if *a.Cross(b) != (Vector3{-3, 6, -3}) {
		t.Error("Cross", a.Cross(b))
	}
	n := (&Vector3{3, 0, 4}).Normalize()
	if math.Abs(float64(n.Len()-1)) > 0.00001 {
		t.Error("Normalize", n)
	}
}

func TestMatrix4(t *testing.T) {
	tr := NewTranslateMatrix4(1, 2, 3)
	v := tr.ApplyTo(&Vector3{0, 0, 0})
	if *v != (Vector3{1, 2, 3}) {
		t.Error("translate", v)
	}

	s := NewScaleMatrix4(2, 2, 2)
	v = s.Mul(tr).ApplyTo(&Vector3{0, 0, 0})
	if *v != (Vector3{2, 4, 6}) {
		t.Error("scale*translate", v)
	}

	// 90 degrees around Z
	rot := NewEulerRotationMatrix4(0, 0, math.Pi/2)
	v = rot.ApplyTo(&Vector3{1, 0, 0})
	if math.Abs(float64(v.X)) > 0.0001 || math.Abs(float64(v.Y-1)) > 0.0001 {
		t.Error("rotate", v)
	}

	// identity quaternion
	q := NewRotationMatrix4FromQuaternion(0, 0, 0, 1)
	v = q.ApplyTo(&Vector3{1, 2, 3})
	if *v != (Vector3{1, 2, 3}) {
		t.Error("quaternion identity", v)
	}
}

func TestBounds(t *testing.T) {
	b := NewBounds()
	if b.Valid() {
		t.Error("empty bounds should be invalid")
	}
	b.Extend(&Vector3{-1, -2, 0})
	b.Extend(&Vector3{3, 4, 10})
	if !b.Valid() {
		t.Error("bounds should be valid")
	}
	if *b.Center() != (Vector3{1, 1, 5}) {
		t.Error("Center", b.Center())
	}
	if *b.BottomCenter() != (Vector3{1, 1, 0}) {
		t.Error("BottomCenter", b.BottomCenter())
	}
}
