package geom

import "math"

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min Vector3
	Max Vector3
}

func NewBounds() *Bounds {
	inf := Element(math.MaxFloat32)
	return &Bounds{
		Min: Vector3{inf, inf, inf},
		Max: Vector3{-inf, -inf, -inf},
	}
}

func (b *Bounds) Extend(v *Vector3) {
	if v.X < b.Min.X {
		b.Min.X = v.X
	}
	if v.Y < b.Min.Y {
		b.Min.Y = v.Y
	}
	if v.Z < b.Min.Z {
		b.Min.Z = v.Z
	}
	if v.X > b.Max.X {
		b.Max.X = v.X
	}
	if v.Y > b.Max.Y {
		b.Max.Y = v.Y
	}
	if v.Z > b.Max.Z {
		b.Max.Z = v.Z
	}
}

func (b *Bounds) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

func (b *Bounds) Center() *Vector3 {
	return &Vector3{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

// BottomCenter is the center of the box on the X/Y plane at the lowest Z.
func (b *Bounds) BottomCenter() *Vector3 {
	return &Vector3{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: b.Min.Z,
	}
}
