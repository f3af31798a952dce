package csg

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPolygonTreeKeepsUnsplitPolygon(t *testing.T) {
	tags := NewTags()
	root := &PolygonTreeNode{}
	sq := square(tags, -1, -1, 1, 1, 0)
	ptn := root.addChild(sq)

	var cf, cb, front, back []*PolygonTreeNode
	ptn.splitByPlane(tags, tags.Plane(mgl32.Vec3{1, 0, 0}, 0), &cf, &cb, &front, &back)
	if len(front) != 1 || len(back) != 1 {
		t.Fatalf("got %d front and %d back fragments, want 1 and 1", len(front), len(back))
	}
	if len(ptn.Children()) != 2 {
		t.Fatalf("got %d children, want 2", len(ptn.Children()))
	}

	polys := root.polygons()
	if len(polys) != 1 || polys[0] != sq {
		t.Fatalf("an intact split polygon must be reported whole, got %d polygons", len(polys))
	}

	back[0].remove()
	if !back[0].IsRemoved() {
		t.Fatalf("fragment not marked removed")
	}
	if ptn.Polygon() != nil {
		t.Fatalf("removing a fragment must invalidate its ancestor")
	}
	if len(ptn.Children()) != 1 {
		t.Fatalf("removed fragment still attached")
	}
	polys = root.polygons()
	if len(polys) != 1 || polys[0] != front[0].Polygon() {
		t.Fatalf("got %d polygons, want only the front fragment", len(polys))
	}
}

func TestTreeInvertFlipsEverything(t *testing.T) {
	tags := NewTags()
	cube := cubeAt(tags, mgl32.Vec3{}, 2)
	tree := NewTree(tags, cube.Polygons())
	tree.Invert()

	for _, p := range tree.AllPolygons() {
		if c := centroid(p); p.Plane.Normal.Dot(c) >= 0 {
			t.Fatalf("inverted face %v still points outward", p.Plane.Normal)
		}
	}
	pl, ok := tree.Root().Plane()
	if !ok {
		t.Fatalf("root has no plane")
	}
	if pl.Normal != cube.Polygons()[0].Plane.Normal.Mul(-1) {
		t.Fatalf("root plane not flipped: %v", pl.Normal)
	}
}

func TestTreeClipRemovesInsidePolygons(t *testing.T) {
	tags := NewTags()
	big := NewTree(tags, cubeAt(tags, mgl32.Vec3{}, 4).Polygons())
	small := NewTree(tags, cubeAt(tags, mgl32.Vec3{}, 2).Polygons())

	small.ClipTo(big, false)
	if n := len(small.AllPolygons()); n != 0 {
		t.Fatalf("got %d polygons, want every face of the inner cube clipped", n)
	}

	big2 := NewTree(tags, cubeAt(tags, mgl32.Vec3{}, 4).Polygons())
	small2 := NewTree(tags, cubeAt(tags, mgl32.Vec3{}, 2).Polygons())
	big2.ClipTo(small2, false)
	if n := len(big2.AllPolygons()); n != 6 {
		t.Fatalf("got %d polygons, want the outer cube untouched", n)
	}
}

func TestTreeRootAdoptsFirstPlane(t *testing.T) {
	tags := NewTags()
	a := square(tags, 0, 0, 1, 1, 0)
	b := square(tags, 2, 0, 3, 1, 0)
	tree := NewTree(tags, []*Polygon{a, b})

	root := tree.Root()
	if pl, _ := root.Plane(); pl.Tag != a.Plane.Tag {
		t.Fatalf("root took plane %d, want %d", pl.Tag, a.Plane.Tag)
	}
	if n := len(root.Leaves()); n != 2 {
		t.Fatalf("got %d coplanar leaves, want 2", n)
	}
	if root.Front() != nil || root.Back() != nil {
		t.Fatalf("coplanar input must not create children")
	}
}
