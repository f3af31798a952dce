package csg

import "github.com/go-gl/mathgl/mgl32"

// Vertex is a polygon corner: a position, a texture coordinate and an identity.
type Vertex struct {
	Pos mgl32.Vec3
	Tex mgl32.Vec2
	Tag Tag
}

// Vertex creates a vertex with a fresh tag.
func (t *Tags) Vertex(pos mgl32.Vec3, tex mgl32.Vec2) Vertex {
	return Vertex{Pos: pos, Tex: tex, Tag: t.Next()}
}

// Flipped returns v unchanged. Vertices carry no orientation.
func (v Vertex) Flipped() Vertex {
	return v
}

// interpolate returns a new vertex at fraction u along v→other.
func (v Vertex) interpolate(t *Tags, other Vertex, u float32) Vertex {
	pos := v.Pos.Add(other.Pos.Sub(v.Pos).Mul(u))
	tex := v.Tex.Add(other.Tex.Sub(v.Tex).Mul(u))
	return t.Vertex(pos, tex)
}

// transform applies m to the position. The texture coordinate is kept.
func (v Vertex) transform(t *Tags, m mgl32.Mat4) Vertex {
	return t.Vertex(m.Mul4x1(v.Pos.Vec4(1)).Vec3(), v.Tex)
}

// Shared is the material record carried by a polygon. The engine never looks
// inside Material; polygons are only grouped by Tag.
type Shared struct {
	Tag      Tag
	Material any
}

// Shared creates a material record with a fresh tag.
func (t *Tags) Shared(material any) *Shared {
	return &Shared{Tag: t.Next(), Material: material}
}

// sharedTag returns the tag of s, or 0 for a nil record.
func sharedTag(s *Shared) Tag {
	if s == nil {
		return 0
	}
	return s.Tag
}
