package csg

import (
	"math"
	"reflect"
)

// fuzzyKey holds up to four quantized components; unused slots stay zero.
type fuzzyKey [4]int64

// fuzzyFactory maps quantized coordinates to the first value seen there.
// A new value is registered under every key from floor-1 to ceil+1 of its
// scaled components, so a later value within one tolerance of it per
// component finds it through the rounded lookup key.
type fuzzyFactory[T any] struct {
	multiplier float64
	table      map[fuzzyKey]T
}

func newFuzzyFactory[T any](tolerance float64) fuzzyFactory[T] {
	return fuzzyFactory[T]{
		multiplier: 1 / tolerance,
		table:      make(map[fuzzyKey]T),
	}
}

func (f *fuzzyFactory[T]) lookupOrCreate(values []float32, create func() T) T {
	var key fuzzyKey
	var lo, hi fuzzyKey
	for i, v := range values {
		s := float64(v) * f.multiplier
		key[i] = int64(math.Round(s))
		lo[i] = int64(math.Floor(s)) - 1
		hi[i] = int64(math.Ceil(s)) + 1
	}
	if obj, ok := f.table[key]; ok {
		return obj
	}

	obj := create()
	k := lo
	for {
		if _, taken := f.table[k]; !taken {
			f.table[k] = obj
		}
		// Odometer over the per-component ranges.
		i := 0
		for ; i < len(values); i++ {
			if k[i] < hi[i] {
				k[i]++
				break
			}
			k[i] = lo[i]
		}
		if i == len(values) {
			return obj
		}
	}
}

// VertexFactory canonicalizes vertices by position.
type VertexFactory struct {
	f fuzzyFactory[Vertex]
}

// NewVertexFactory returns an empty factory merging positions closer than
// tolerance.
func NewVertexFactory(tolerance float64) *VertexFactory {
	return &VertexFactory{f: newFuzzyFactory[Vertex](tolerance)}
}

// LookupOrCreate returns the representative for v, registering v if it is the
// first of its kind.
func (vf *VertexFactory) LookupOrCreate(v Vertex) Vertex {
	return vf.f.lookupOrCreate(v.Pos[:], func() Vertex { return v })
}

// PlaneFactory canonicalizes planes by normal and offset.
type PlaneFactory struct {
	f fuzzyFactory[Plane]
}

// NewPlaneFactory returns an empty factory.
func NewPlaneFactory(tolerance float64) *PlaneFactory {
	return &PlaneFactory{f: newFuzzyFactory[Plane](tolerance)}
}

// LookupOrCreate returns the representative for p.
func (pf *PlaneFactory) LookupOrCreate(p Plane) Plane {
	values := [4]float32{p.Normal.X(), p.Normal.Y(), p.Normal.Z(), p.W}
	return pf.f.lookupOrCreate(values[:], func() Plane { return p })
}

type materialKey struct{ v any }

type identityKey struct{ s *Shared }

// FuzzyFactory rewrites whole polygons and solids through vertex, plane and
// material factories so that near-equal geometry ends up with equal tags.
type FuzzyFactory struct {
	Vertices *VertexFactory
	Planes   *PlaneFactory
	shared   map[any]*Shared
}

// NewFuzzyFactory returns a factory using Epsilon as tolerance.
func NewFuzzyFactory() *FuzzyFactory {
	return &FuzzyFactory{
		Vertices: NewVertexFactory(Epsilon),
		Planes:   NewPlaneFactory(Epsilon),
		shared:   make(map[any]*Shared),
	}
}

// Shared returns the canonical record for s. Records with equal comparable
// materials are merged; anything else is kept by identity.
func (f *FuzzyFactory) Shared(s *Shared) *Shared {
	if s == nil {
		return nil
	}
	var key any = identityKey{s}
	if s.Material != nil && reflect.TypeOf(s.Material).Comparable() {
		key = materialKey{s.Material}
	}
	if c, ok := f.shared[key]; ok {
		return c
	}
	f.shared[key] = s
	return s
}

// Polygon rewrites p through the factories. Consecutive vertices that became
// the same canonical vertex are collapsed; nil is returned when fewer than
// three remain.
func (f *FuzzyFactory) Polygon(p *Polygon) *Polygon {
	plane := f.Planes.LookupOrCreate(p.Plane)
	shared := f.Shared(p.Shared)

	canon := make([]Vertex, len(p.Vertices))
	for i, v := range p.Vertices {
		// Position and tag are canonical; the texture coordinate is the face's own.
		canon[i] = f.Vertices.LookupOrCreate(v)
		canon[i].Tex = v.Tex
	}
	vs := make([]Vertex, 0, len(canon))
	if n := len(canon); n > 0 {
		prev := canon[n-1].Tag
		for _, cv := range canon {
			if cv.Tag != prev {
				vs = append(vs, cv)
			}
			prev = cv.Tag
		}
	}
	if len(vs) < 3 {
		return nil
	}
	return NewPolygon(vs, shared, plane)
}

// Solid canonicalizes every polygon of s into a new solid.
func (f *FuzzyFactory) Solid(s *Solid) *Solid {
	out := make([]*Polygon, 0, len(s.polygons))
	for _, p := range s.polygons {
		if cp := f.Polygon(p); cp != nil {
			out = append(out, cp)
		}
	}
	return FromPolygons(s.tags, out)
}
