package csg

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRetesselateMergesAdjacentSquares(t *testing.T) {
	tags := NewTags()
	s := FromPolygons(tags, []*Polygon{
		square(tags, 0, 0, 1, 1, 0),
		square(tags, 1, 0, 2, 1, 0),
	}).Retesselated()

	if !s.IsRetesselated {
		t.Fatalf("result not marked retesselated")
	}
	if n := s.PolygonCount(); n != 1 {
		t.Fatalf("got %d polygons, want 1", n)
	}
	p := s.Polygons()[0]
	if n := len(p.Vertices); n != 4 {
		t.Fatalf("got %d vertices, want 4", n)
	}
	if a := area(p); !near(a, 2, 1e-5) {
		t.Fatalf("got area %v, want 2", a)
	}
	if wn := windingNormal(p); !wn.ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, 1e-5) {
		t.Fatalf("merged polygon winds to %v, want +z", wn)
	}
	want := Box{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{2, 1, 0}}
	if !s.Bounds().ApproxEqual(want, 1e-5) {
		t.Fatalf("got bounds %+v, want %+v", s.Bounds(), want)
	}
}

func TestRetesselateKeepsConcaveOutlineConvex(t *testing.T) {
	tags := NewTags()
	s := FromPolygons(tags, []*Polygon{
		square(tags, 0, 0, 1, 1, 0),
		square(tags, 1, 0, 2, 1, 0),
		square(tags, 0, 1, 1, 2, 0),
	}).Retesselated()

	if n := s.PolygonCount(); n != 2 {
		t.Fatalf("got %d polygons, want 2 for an L shape", n)
	}
	var total float64
	for _, p := range s.Polygons() {
		total += area(p)
	}
	if !near(total, 3, 1e-5) {
		t.Fatalf("got area %v, want 3", total)
	}
}

func TestRetesselateGroupsByPlaneAndMaterial(t *testing.T) {
	tags := NewTags()
	red := tags.Shared("red")
	blue := tags.Shared("blue")

	a := square(tags, 0, 0, 1, 1, 0)
	b := square(tags, 1, 0, 2, 1, 0)
	a.Shared, b.Shared = red, blue
	other := square(tags, 0, 0, 1, 1, 5)

	s := FromPolygons(tags, []*Polygon{a, b, other}).Retesselated()
	if n := s.PolygonCount(); n != 3 {
		t.Fatalf("got %d polygons, want 3", n)
	}
}

func TestRetesselateCarriesTexture(t *testing.T) {
	tags := NewTags()
	s := FromPolygons(tags, []*Polygon{
		square(tags, 0, 0, 1, 1, 0),
		square(tags, 1, 0, 2, 1, 0),
	}).Retesselated()

	for _, v := range s.Polygons()[0].Vertices {
		if v.Tex.X() < 0 || v.Tex.X() > 1 || v.Tex.Y() < 0 || v.Tex.Y() > 1 {
			t.Fatalf("texture coordinate %v outside the source range", v.Tex)
		}
	}
}

func TestRetesselatedCubeUnionFaces(t *testing.T) {
	tags := NewTags()
	a := Cube(tags, CubeOptions{Size: mgl32.Vec3{2, 2, 2}})
	b := Cube(tags, CubeOptions{Center: mgl32.Vec3{2, 0, 0}, Size: mgl32.Vec3{2, 2, 2}})

	// Two boxes sharing a face merge into one 4x2x2 box.
	u := a.Union(b)
	if n := u.PolygonCount(); n != 6 {
		t.Fatalf("got %d polygons, want 6", n)
	}
	want := Box{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{3, 1, 1}}
	if !u.Bounds().ApproxEqual(want, 1e-4) {
		t.Fatalf("got bounds %+v, want %+v", u.Bounds(), want)
	}
}

func TestInterpolateAtY(t *testing.T) {
	a := point2{x: 0, y: 0, tex: mgl32.Vec2{0, 0}}
	b := point2{x: 2, y: 4, tex: mgl32.Vec2{1, 1}}
	if p := interpolateAtY(a, b, 1); p.x != 0.5 || p.tex.X() != 0.25 {
		t.Fatalf("got %+v, want x=0.5 tex=0.25", p)
	}
	if p := interpolateAtY(b, a, 1); p.x != 0.5 {
		t.Fatalf("reversed segment: got x=%v, want 0.5", p.x)
	}
	if p := interpolateAtY(a, b, 10); p.x != 2 {
		t.Fatalf("clamped: got x=%v, want 2", p.x)
	}
	flat := point2{x: 4, y: 0}
	if p := interpolateAtY(a, flat, 0); p.x != 2 {
		t.Fatalf("zero-height segment: got x=%v, want midpoint 2", p.x)
	}
}
