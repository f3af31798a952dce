package csg

import (
	"context"
	"log/slog"
	"sync"

	"mini-csg/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// Solid is a polyhedron described by its boundary polygons. Solids are never
// modified by operations; every operation returns a new Solid.
type Solid struct {
	tags     *Tags
	polygons []*Polygon

	// IsCanonicalized is set once near-equal vertices and planes share tags.
	IsCanonicalized bool
	// IsRetesselated is set once coplanar fragments have been merged.
	IsRetesselated bool

	boundsOnce sync.Once
	bounds     Box
}

// FromPolygons wraps polygons into a solid. The result is marked neither
// canonicalized nor retesselated.
func FromPolygons(t *Tags, polygons []*Polygon) *Solid {
	return &Solid{tags: t, polygons: polygons}
}

// Tags returns the allocator the solid's operations construct with.
func (s *Solid) Tags() *Tags { return s.tags }

// Polygons returns the boundary polygons. Callers must not modify the slice.
func (s *Solid) Polygons() []*Polygon { return s.polygons }

// PolygonCount returns len(Polygons()).
func (s *Solid) PolygonCount() int { return len(s.polygons) }

// IsEmpty reports whether the solid has no polygons.
func (s *Solid) IsEmpty() bool { return len(s.polygons) == 0 }

// Bounds returns the axis-aligned bounding box of all vertices.
func (s *Solid) Bounds() Box {
	s.boundsOnce.Do(func() {
		b := EmptyBox()
		for _, p := range s.polygons {
			b = b.Union(p.Box())
		}
		s.bounds = b
	})
	return s.bounds
}

// MayOverlap reports whether the bounding boxes of s and o intersect.
func (s *Solid) MayOverlap(o *Solid) bool {
	return s.Bounds().Intersects(o.Bounds())
}

// Union returns s ∪ others[0] ∪ others[1] ∪ ..., folded left to right.
// Operands whose bounds do not touch the running result are appended without
// building trees; when that holds for every operand the plain concatenation
// is returned.
func (s *Solid) Union(others ...*Solid) *Solid {
	defer profiling.Track("csg.Union")()
	result := s.clone()
	clipped := false
	for _, o := range others {
		o = s.adopt(o)
		if !result.MayOverlap(o) {
			result = result.concat(o)
			continue
		}
		clipped = true
		result = result.unionPair(o)
	}
	if clipped {
		result = result.Retesselated().Canonicalized()
	}
	s.logOp("union", others, result)
	return result
}

// Subtract returns s − others[0] − others[1] − ..., folded left to right.
func (s *Solid) Subtract(others ...*Solid) *Solid {
	defer profiling.Track("csg.Subtract")()
	result := s
	for _, o := range others {
		result = result.subtractPair(s.adopt(o))
	}
	result = result.Retesselated().Canonicalized()
	s.logOp("subtract", others, result)
	return result
}

// Intersect returns s ∩ others[0] ∩ others[1] ∩ ..., folded left to right.
// An empty operand makes the result empty.
func (s *Solid) Intersect(others ...*Solid) *Solid {
	defer profiling.Track("csg.Intersect")()
	result := s
	for _, o := range others {
		if result.IsEmpty() || o.IsEmpty() {
			result = FromPolygons(s.tags, nil)
			continue
		}
		result = result.intersectPair(s.adopt(o))
	}
	result = result.Retesselated().Canonicalized()
	s.logOp("intersect", others, result)
	return result
}

func (s *Solid) unionPair(o *Solid) *Solid {
	a := NewTree(s.tags, s.polygons)
	b := NewTree(s.tags, o.polygons)
	a.ClipTo(b, false)
	b.ClipTo(a, false)
	b.Invert()
	b.ClipTo(a, false)
	b.Invert()
	polys := append(a.AllPolygons(), b.AllPolygons()...)
	return FromPolygons(s.tags, polys)
}

func (s *Solid) subtractPair(o *Solid) *Solid {
	a := NewTree(s.tags, s.polygons)
	b := NewTree(s.tags, o.polygons)
	a.Invert()
	a.ClipTo(b, false)
	b.ClipTo(a, true)
	a.AddPolygons(b.AllPolygons())
	a.Invert()
	return FromPolygons(s.tags, a.AllPolygons())
}

func (s *Solid) intersectPair(o *Solid) *Solid {
	a := NewTree(s.tags, s.polygons)
	b := NewTree(s.tags, o.polygons)
	a.Invert()
	b.ClipTo(a, false)
	b.Invert()
	a.ClipTo(b, false)
	b.ClipTo(a, false)
	a.AddPolygons(b.AllPolygons())
	a.Invert()
	return FromPolygons(s.tags, a.AllPolygons())
}

// concat joins the polygon lists of two solids known not to overlap.
func (s *Solid) concat(o *Solid) *Solid {
	polys := make([]*Polygon, 0, len(s.polygons)+len(o.polygons))
	polys = append(polys, s.polygons...)
	polys = append(polys, o.polygons...)
	r := FromPolygons(s.tags, polys)
	r.IsCanonicalized = s.IsCanonicalized && o.IsCanonicalized
	r.IsRetesselated = s.IsRetesselated && o.IsRetesselated
	return r
}

func (s *Solid) clone() *Solid {
	r := FromPolygons(s.tags, s.polygons)
	r.IsCanonicalized = s.IsCanonicalized
	r.IsRetesselated = s.IsRetesselated
	return r
}

// Canonicalized returns a solid in which vertices and planes closer than
// Epsilon share one representative and tag.
func (s *Solid) Canonicalized() *Solid {
	if s.IsCanonicalized {
		return s
	}
	defer profiling.Track("csg.Canonicalize")()
	r := NewFuzzyFactory().Solid(s)
	r.IsCanonicalized = true
	r.IsRetesselated = s.IsRetesselated
	return r
}

// Transform applies the affine matrix m. Polygons that shared a plane or a
// vertex before the transform share the transformed one afterwards; texture
// coordinates stay per polygon.
func (s *Solid) Transform(m mgl32.Mat4) *Solid {
	defer profiling.Track("csg.Transform")()
	planes := make(map[Tag]Plane)
	vertices := make(map[Tag]Vertex)
	mirror := isMirroring(m)

	out := make([]*Polygon, 0, len(s.polygons))
	for _, p := range s.polygons {
		n := len(p.Vertices)
		vs := make([]Vertex, n)
		for i, v := range p.Vertices {
			tv, ok := vertices[v.Tag]
			if !ok || v.Tag == 0 {
				tv = v.transform(s.tags, m)
				vertices[v.Tag] = tv
			}
			tv.Tex = v.Tex
			if mirror {
				vs[n-1-i] = tv
			} else {
				vs[i] = tv
			}
		}
		pl, ok := planes[p.Plane.Tag]
		if !ok || p.Plane.Tag == 0 {
			pl = p.Plane.Transform(s.tags, m)
			planes[p.Plane.Tag] = pl
		}
		out = append(out, NewPolygon(vs, p.Shared, pl))
	}

	r := FromPolygons(s.tags, out)
	r.IsCanonicalized = s.IsCanonicalized
	r.IsRetesselated = s.IsRetesselated
	return r
}

// Translate moves the solid by d.
func (s *Solid) Translate(d mgl32.Vec3) *Solid {
	return s.Transform(mgl32.Translate3D(d.X(), d.Y(), d.Z()))
}

// Scale scales the solid about the origin.
func (s *Solid) Scale(f mgl32.Vec3) *Solid {
	return s.Transform(mgl32.Scale3D(f.X(), f.Y(), f.Z()))
}

// RotateX rotates about the X axis by angle radians.
func (s *Solid) RotateX(angle float32) *Solid {
	return s.Transform(mgl32.HomogRotate3DX(angle))
}

// RotateY rotates about the Y axis by angle radians.
func (s *Solid) RotateY(angle float32) *Solid {
	return s.Transform(mgl32.HomogRotate3DY(angle))
}

// RotateZ rotates about the Z axis by angle radians.
func (s *Solid) RotateZ(angle float32) *Solid {
	return s.Transform(mgl32.HomogRotate3DZ(angle))
}

// adopt returns o with every tag issued by s's allocator, so that tags from
// both operands can be compared.
func (s *Solid) adopt(o *Solid) *Solid {
	if o.tags == s.tags {
		return o
	}
	planes := make(map[Tag]Plane)
	vertices := make(map[Tag]Vertex)
	shared := make(map[*Shared]*Shared)

	out := make([]*Polygon, 0, len(o.polygons))
	for _, p := range o.polygons {
		vs := make([]Vertex, len(p.Vertices))
		for i, v := range p.Vertices {
			nv, ok := vertices[v.Tag]
			if !ok {
				nv = s.tags.Vertex(v.Pos, v.Tex)
				vertices[v.Tag] = nv
			}
			nv.Tex = v.Tex
			vs[i] = nv
		}
		pl, ok := planes[p.Plane.Tag]
		if !ok {
			pl = s.tags.Plane(p.Plane.Normal, p.Plane.W)
			planes[p.Plane.Tag] = pl
		}
		sh := p.Shared
		if sh != nil {
			ns, ok := shared[sh]
			if !ok {
				ns = s.tags.Shared(sh.Material)
				shared[sh] = ns
			}
			sh = ns
		}
		out = append(out, NewPolygon(vs, sh, pl))
	}
	r := FromPolygons(s.tags, out)
	r.IsCanonicalized = o.IsCanonicalized
	r.IsRetesselated = o.IsRetesselated
	return r
}

func (s *Solid) logOp(op string, others []*Solid, result *Solid) {
	l := Logger()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	counts := make([]int, 0, len(others)+1)
	counts = append(counts, s.PolygonCount())
	for _, o := range others {
		counts = append(counts, o.PolygonCount())
	}
	l.Debug("csg: boolean operation",
		"op", op,
		"operands", counts,
		"result", result.PolygonCount())
}
