package csg

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

func square(t *Tags, x0, y0, x1, y1, z float32) *Polygon {
	return t.Polygon([]Vertex{
		t.Vertex(mgl32.Vec3{x0, y0, z}, mgl32.Vec2{0, 0}),
		t.Vertex(mgl32.Vec3{x1, y0, z}, mgl32.Vec2{1, 0}),
		t.Vertex(mgl32.Vec3{x1, y1, z}, mgl32.Vec2{1, 1}),
		t.Vertex(mgl32.Vec3{x0, y1, z}, mgl32.Vec2{0, 1}),
	}, nil)
}

func cubeAt(t *Tags, center mgl32.Vec3, size float32) *Solid {
	return Cube(t, CubeOptions{Center: center, Size: mgl32.Vec3{size, size, size}})
}

// volume sums signed tetrahedra against the origin.
func volume(s *Solid) float64 {
	var v float64
	for _, p := range s.Polygons() {
		a := p.Vertices[0].Pos
		for i := 1; i+1 < len(p.Vertices); i++ {
			b, c := p.Vertices[i].Pos, p.Vertices[i+1].Pos
			v += float64(a.Dot(b.Cross(c))) / 6
		}
	}
	return v
}

// area returns the area of a convex polygon.
func area(p *Polygon) float64 {
	var sum mgl32.Vec3
	a := p.Vertices[0].Pos
	for i := 1; i+1 < len(p.Vertices); i++ {
		sum = sum.Add(p.Vertices[i].Pos.Sub(a).Cross(p.Vertices[i+1].Pos.Sub(a)))
	}
	return float64(sum.Len()) / 2
}

// windingNormal is the Newell normal of the vertex loop.
func windingNormal(p *Polygon) mgl32.Vec3 {
	var n mgl32.Vec3
	vs := p.Vertices
	for i := range vs {
		a, b := vs[i].Pos, vs[(i+1)%len(vs)].Pos
		n[0] += (a.Y() - b.Y()) * (a.Z() + b.Z())
		n[1] += (a.Z() - b.Z()) * (a.X() + b.X())
		n[2] += (a.X() - b.X()) * (a.Y() + b.Y())
	}
	return unit(n)
}

func centroid(p *Polygon) mgl32.Vec3 {
	var c mgl32.Vec3
	for _, v := range p.Vertices {
		c = c.Add(v.Pos)
	}
	return c.Mul(1 / float32(len(p.Vertices)))
}

func near(a, b, tol float64) bool {
	d := a - b
	return d < tol && d > -tol
}

// polygonKeys describes every polygon by its sorted vertex positions,
// rounded to 1e-4, and returns the descriptions sorted.
func polygonKeys(s *Solid) []string {
	keys := make([]string, 0, s.PolygonCount())
	for _, p := range s.Polygons() {
		pos := make([]string, len(p.Vertices))
		for i, v := range p.Vertices {
			pos[i] = fmt.Sprintf("(%d %d %d)", round4(v.Pos.X()), round4(v.Pos.Y()), round4(v.Pos.Z()))
		}
		sort.Strings(pos)
		keys = append(keys, strings.Join(pos, " "))
	}
	sort.Strings(keys)
	return keys
}

func round4(x float32) int64 {
	return int64(math.Round(float64(x) * 1e4))
}
