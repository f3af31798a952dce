package csg

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Box is an axis-aligned bounding box. An empty box has Min > Max.
type Box struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBox returns a box that contains nothing; extending it with a point
// yields that point.
func EmptyBox() Box {
	inf := math32.Inf(1)
	return Box{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no point.
func (b Box) IsEmpty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// Extend returns the smallest box containing b and p.
func (b Box) Extend(p mgl32.Vec3) Box {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
	return b
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(o Box) Box {
	if o.IsEmpty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Center returns the midpoint of the box.
func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent along each axis.
func (b Box) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Intersects reports whether the boxes overlap. Touching boxes intersect.
func (b Box) Intersects(o Box) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return !(b.Max.X() < o.Min.X() || b.Min.X() > o.Max.X() ||
		b.Max.Y() < o.Min.Y() || b.Min.Y() > o.Max.Y() ||
		b.Max.Z() < o.Min.Z() || b.Min.Z() > o.Max.Z())
}

// ApproxEqual compares corners within tolerance.
func (b Box) ApproxEqual(o Box, tolerance float32) bool {
	return b.Min.ApproxEqualThreshold(o.Min, tolerance) && b.Max.ApproxEqualThreshold(o.Max, tolerance)
}
