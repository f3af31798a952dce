package csg

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Polygon is a convex planar loop of vertices. Vertex winding and
// Plane.Normal agree by the right-hand rule. Polygons are never modified after
// construction; operations return new ones.
type Polygon struct {
	Vertices []Vertex
	Plane    Plane
	Shared   *Shared

	boundsOnce sync.Once
	box        Box
	center     mgl32.Vec3
	radius     float32
}

// NewPolygon assembles a polygon from parts the caller already has.
func NewPolygon(vertices []Vertex, shared *Shared, plane Plane) *Polygon {
	return &Polygon{Vertices: vertices, Plane: plane, Shared: shared}
}

// Polygon builds a polygon and derives its plane from the first three
// vertices.
func (t *Tags) Polygon(vertices []Vertex, shared *Shared) *Polygon {
	var plane Plane
	if len(vertices) >= 3 {
		plane = t.PlaneFromPoints(vertices[0].Pos, vertices[1].Pos, vertices[2].Pos)
	}
	return NewPolygon(vertices, shared, plane)
}

// Flipped returns the polygon facing the opposite direction.
func (p *Polygon) Flipped() *Polygon {
	n := len(p.Vertices)
	vs := make([]Vertex, n)
	for i, v := range p.Vertices {
		vs[n-1-i] = v.Flipped()
	}
	return NewPolygon(vs, p.Shared, p.Plane.Flipped())
}

// Box returns the axis-aligned bounds of the vertices.
func (p *Polygon) Box() Box {
	p.computeBounds()
	return p.box
}

// BoundingSphere returns a sphere enclosing every vertex.
func (p *Polygon) BoundingSphere() (center mgl32.Vec3, radius float32) {
	p.computeBounds()
	return p.center, p.radius
}

func (p *Polygon) computeBounds() {
	p.boundsOnce.Do(func() {
		p.box = EmptyBox()
		for _, v := range p.Vertices {
			p.box = p.box.Extend(v.Pos)
		}
		p.center = p.box.Center()
		p.radius = p.box.Max.Sub(p.center).Len()
	})
}
