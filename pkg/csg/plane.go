package csg

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the tolerance used for plane classification, vertex merging and
// canonicalization.
const Epsilon = 1e-5

// Plane is the set of points p with Normal·p == W.
type Plane struct {
	Normal mgl32.Vec3
	W      float32
	Tag    Tag
}

// Plane creates a plane with a fresh tag. normal is expected to be unit length.
func (t *Tags) Plane(normal mgl32.Vec3, w float32) Plane {
	return Plane{Normal: normal, W: w, Tag: t.Next()}
}

// PlaneFromPoints returns the plane through a, b and c, oriented so that
// a→b→c winds counter-clockwise around the normal.
func (t *Tags) PlaneFromPoints(a, b, c mgl32.Vec3) Plane {
	n := unit(b.Sub(a).Cross(c.Sub(a)))
	return t.Plane(n, n.Dot(a))
}

// Equals reports exact value equality of normal and offset. Tags are ignored.
func (p Plane) Equals(q Plane) bool {
	return p.Normal == q.Normal && p.W == q.W
}

// Flipped returns the plane facing the other way. The result carries the twin
// tag, so flipping twice restores the original tag.
func (p Plane) Flipped() Plane {
	return Plane{Normal: p.Normal.Mul(-1), W: -p.W, Tag: p.Tag.twin()}
}

// SignedDistance returns Normal·pos - W.
func (p Plane) SignedDistance(pos mgl32.Vec3) float32 {
	return p.Normal.Dot(pos) - p.W
}

// Transform maps the plane through m. Three in-plane points are transformed
// and the plane rebuilt from them, which stays correct under non-uniform scale
// and skew. Mirroring transforms flip the rebuilt plane back to the outside.
func (p Plane) Transform(t *Tags, m mgl32.Mat4) Plane {
	u := perpendicular(p.Normal)
	v := p.Normal.Cross(u)
	origin := p.Normal.Mul(p.W)
	p0 := transformPoint(m, origin)
	p1 := transformPoint(m, origin.Add(u))
	p2 := transformPoint(m, origin.Add(v))
	np := t.PlaneFromPoints(p0, p1, p2)
	if isMirroring(m) {
		np = np.Flipped()
	}
	return np
}

// SplitKind classifies a polygon against a plane.
type SplitKind int

const (
	CoplanarFront SplitKind = iota
	CoplanarBack
	Front
	Back
	Spanning
)

func (k SplitKind) String() string {
	switch k {
	case CoplanarFront:
		return "coplanar-front"
	case CoplanarBack:
		return "coplanar-back"
	case Front:
		return "front"
	case Back:
		return "back"
	case Spanning:
		return "spanning"
	}
	return "unknown"
}

// SplitResult is the outcome of Plane.SplitPolygon. Front and Back are only
// set for Spanning, and either may be nil when that side degenerated to fewer
// than three vertices.
type SplitResult struct {
	Kind  SplitKind
	Front *Polygon
	Back  *Polygon
}

const (
	sideOn = iota
	sideFront
	sideBack
)

// SplitPolygon classifies poly against p and, when it spans the plane, cuts
// it into a front and a back piece. New intersection vertices get tags from t.
func (p Plane) SplitPolygon(t *Tags, poly *Polygon) SplitResult {
	if poly.Plane.Equals(p) {
		return SplitResult{Kind: p.coplanarKind(poly)}
	}

	n := len(poly.Vertices)
	sides := make([]uint8, n)
	hasFront, hasBack := false, false
	for i, v := range poly.Vertices {
		d := p.SignedDistance(v.Pos)
		switch {
		case d > Epsilon:
			sides[i] = sideFront
			hasFront = true
		case d < -Epsilon:
			sides[i] = sideBack
			hasBack = true
		}
	}

	switch {
	case !hasFront && !hasBack:
		return SplitResult{Kind: p.coplanarKind(poly)}
	case !hasBack:
		return SplitResult{Kind: Front}
	case !hasFront:
		return SplitResult{Kind: Back}
	}

	front := make([]Vertex, 0, n+1)
	back := make([]Vertex, 0, n+1)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		vi, vj := poly.Vertices[i], poly.Vertices[j]
		si, sj := sides[i], sides[j]
		if si != sideBack {
			front = append(front, vi)
		}
		if si != sideFront {
			back = append(back, vi)
		}
		if (si == sideFront && sj == sideBack) || (si == sideBack && sj == sideFront) {
			u := (p.W - p.Normal.Dot(vi.Pos)) / p.Normal.Dot(vj.Pos.Sub(vi.Pos))
			if math32.IsNaN(u) {
				u = 0
			}
			u = mgl32.Clamp(u, 0, 1)
			mid := vi.interpolate(t, vj, u)
			front = append(front, mid)
			back = append(back, mid)
		}
	}

	res := SplitResult{Kind: Spanning}
	if front = dedupeLoop(front); len(front) >= 3 {
		res.Front = NewPolygon(front, poly.Shared, poly.Plane)
	}
	if back = dedupeLoop(back); len(back) >= 3 {
		res.Back = NewPolygon(back, poly.Shared, poly.Plane)
	}
	return res
}

func (p Plane) coplanarKind(poly *Polygon) SplitKind {
	if p.Normal.Dot(poly.Plane.Normal) >= 0 {
		return CoplanarFront
	}
	return CoplanarBack
}

// dedupeLoop drops vertices closer than Epsilon to their predecessor in the
// closed loop.
func dedupeLoop(vs []Vertex) []Vertex {
	const eps2 = Epsilon * Epsilon
	out := make([]Vertex, 0, len(vs))
	for _, v := range vs {
		if len(out) > 0 && sqDist(out[len(out)-1].Pos, v.Pos) < eps2 {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && sqDist(out[0].Pos, out[len(out)-1].Pos) < eps2 {
		out = out[:len(out)-1]
	}
	return out
}

func sqDist(a, b mgl32.Vec3) float32 {
	d := a.Sub(b)
	return d.Dot(d)
}

// unit normalizes v, leaving the zero vector alone.
func unit(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Mul(1 / l)
}

// perpendicular returns a unit vector orthogonal to n, built from the axis n
// is least aligned with.
func perpendicular(n mgl32.Vec3) mgl32.Vec3 {
	ax, ay, az := math32.Abs(n.X()), math32.Abs(n.Y()), math32.Abs(n.Z())
	axis := mgl32.Vec3{0, 0, 1}
	switch {
	case ax <= ay && ax <= az:
		axis = mgl32.Vec3{1, 0, 0}
	case ay <= ax && ay <= az:
		axis = mgl32.Vec3{0, 1, 0}
	}
	return unit(n.Cross(axis))
}

func transformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

func isMirroring(m mgl32.Mat4) bool {
	return m.Mat3().Det() < 0
}
