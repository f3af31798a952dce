package csg

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// containsRay is skewed off every axis so that rays from grid-aligned points
// do not graze the edges of axis-aligned faces.
var containsRay = mgl32.Vec3{1, 0.0137, 0.0291}.Normalize()

// Contains reports whether p lies inside the solid, by counting boundary
// crossings of a ray from p. Points on the boundary may go either way.
func (s *Solid) Contains(p mgl32.Vec3) bool {
	b := s.Bounds()
	if b.IsEmpty() ||
		p.X() < b.Min.X() || p.Y() < b.Min.Y() || p.Z() < b.Min.Z() ||
		p.X() > b.Max.X() || p.Y() > b.Max.Y() || p.Z() > b.Max.Z() {
		return false
	}

	crossings := 0
	for _, poly := range s.polygons {
		n := poly.Plane.Normal
		denom := n.Dot(containsRay)
		if math32.Abs(denom) < 1e-9 {
			continue
		}
		dist := (poly.Plane.W - n.Dot(p)) / denom
		if dist <= 0 {
			continue
		}
		if insideConvex(poly, p.Add(containsRay.Mul(dist))) {
			crossings++
		}
	}
	return crossings%2 == 1
}

// insideConvex reports whether q, a point in poly's plane, lies within the
// polygon's loop.
func insideConvex(poly *Polygon, q mgl32.Vec3) bool {
	n := poly.Plane.Normal
	vs := poly.Vertices
	for i := range vs {
		a := vs[i].Pos
		b := vs[(i+1)%len(vs)].Pos
		if b.Sub(a).Cross(q.Sub(a)).Dot(n) < 0 {
			return false
		}
	}
	return len(vs) >= 3
}
