package csg

import (
	"math"
	"slices"
	"sort"

	"mini-csg/internal/profiling"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// yBinFactor quantizes projected y coordinates so that values within about
// a tenth of Epsilon snap to one scanline.
const yBinFactor = 10 / Epsilon

// Retesselated merges coplanar polygons that share a plane and a material
// into as few convex polygons as a scanline sweep can produce.
func (s *Solid) Retesselated() *Solid {
	if s.IsRetesselated {
		return s
	}
	defer profiling.Track("csg.Retesselate")()

	type groupKey struct{ plane, shared Tag }
	type group struct {
		plane    Plane
		shared   *Shared
		polygons []*Polygon
	}

	var factory *FuzzyFactory
	if !s.IsCanonicalized {
		factory = NewFuzzyFactory()
	}
	groups := make(map[groupKey]*group)
	var order []groupKey
	for _, p := range s.polygons {
		plane, shared := p.Plane, p.Shared
		if factory != nil {
			plane = factory.Planes.LookupOrCreate(plane)
			shared = factory.Shared(shared)
		}
		key := groupKey{plane.Tag, sharedTag(shared)}
		g, ok := groups[key]
		if !ok {
			g = &group{plane: plane, shared: shared}
			groups[key] = g
			order = append(order, key)
		}
		g.polygons = append(g.polygons, p)
	}

	out := make([]*Polygon, 0, len(s.polygons))
	rebuilt := false
	for _, key := range order {
		g := groups[key]
		if len(g.polygons) < 2 {
			out = append(out, g.polygons...)
			continue
		}
		rebuilt = true
		out = append(out, retesselateCoplanar(s.tags, g.plane, g.shared, g.polygons)...)
	}

	Logger().Debug("csg: retesselated",
		"groups", len(order),
		"before", len(s.polygons),
		"after", len(out))

	r := FromPolygons(s.tags, out)
	r.IsRetesselated = true
	r.IsCanonicalized = s.IsCanonicalized && !rebuilt
	return r
}

// planeBasis maps between 3D points on a plane and 2D coordinates in it.
// (u, v, normal) is right handed, so counter-clockwise loops around the
// normal stay counter-clockwise in 2D.
type planeBasis struct {
	u, v   mgl32.Vec3
	origin mgl32.Vec3
}

func newPlaneBasis(p Plane) planeBasis {
	v := perpendicular(p.Normal)
	return planeBasis{
		u:      v.Cross(p.Normal),
		v:      v,
		origin: p.Normal.Mul(p.W),
	}
}

func (b planeBasis) to2D(p mgl32.Vec3) (float32, float32) {
	return p.Dot(b.u), p.Dot(b.v)
}

func (b planeBasis) to3D(x, y float32) mgl32.Vec3 {
	return b.origin.Add(b.u.Mul(x)).Add(b.v.Mul(y))
}

type point2 struct {
	x, y float32
	tex  mgl32.Vec2
}

func dist2(a, b point2) float32 {
	dx, dy := a.x-b.x, a.y-b.y
	return math32.Sqrt(dx*dx + dy*dy)
}

// lineDir returns the unit direction from a to b.
func lineDir(a, b point2) mgl32.Vec2 {
	d := mgl32.Vec2{b.x - a.x, b.y - a.y}
	if l := d.Len(); l > 0 {
		return d.Mul(1 / l)
	}
	return d
}

// interpolateAtY returns the point on segment p1-p2 at height y. Zero-height
// segments yield their midpoint.
func interpolateAtY(p1, p2 point2, y float32) point2 {
	f1 := y - p1.y
	f2 := p2.y - p1.y
	if f2 < 0 {
		f1, f2 = -f1, -f2
	}
	var t float32
	switch {
	case f2 < 1e-10:
		t = 0.5
	case f1 <= 0:
		t = 0
	case f1 >= f2:
		t = 1
	default:
		t = f1 / f2
	}
	return point2{
		x:   p1.x + t*(p2.x-p1.x),
		y:   y,
		tex: p1.tex.Add(p2.tex.Sub(p1.tex).Mul(t)),
	}
}

// activePolygon is a source polygon crossing the current scanline, with the
// edges bounding it on either side.
type activePolygon struct {
	index       int
	left, right int
	topLeft     point2
	topRight    point2
	bottomLeft  point2
	bottomRight point2
}

func (ap *activePolygon) leftXAt(y float32) float32 {
	return interpolateAtY(ap.topLeft, ap.bottomLeft, y).x
}

// outPolygon accumulates the two sides of an output polygon while the sweep
// extends it downwards.
type outPolygon struct {
	left, right []point2
}

// rowPolygon is the trapezoid one active run covers between two scanlines.
type rowPolygon struct {
	topLeft, topRight       point2
	bottomLeft, bottomRight point2
	leftDir, rightDir       mgl32.Vec2
	out                     *outPolygon
	leftContinues           bool
	rightContinues          bool
}

// retesselateCoplanar sweeps the polygons of one plane from low to high y in
// the plane's 2D basis. Each row between consecutive vertex heights is cut
// into trapezoids, neighbouring trapezoids are joined, and trapezoids are
// stacked onto the ones above while the result stays convex.
func retesselateCoplanar(t *Tags, plane Plane, shared *Shared, polys []*Polygon) []*Polygon {
	basis := newPlaneBasis(plane)

	verts := make([][]point2, len(polys))
	topIndex := make([]int, len(polys))
	startsAt := make(map[float32][]int)
	cornersAt := make(map[float32]map[int]bool)
	yBins := make(map[int64]float32)

	for pi, poly := range polys {
		n := len(poly.Vertices)
		vs := make([]point2, 0, n)
		minIndex := -1
		var minY, maxY float32
		for i, v := range poly.Vertices {
			x, y := basis.to2D(v.Pos)
			bin := int64(math.Floor(float64(y) * yBinFactor))
			if snapped, ok := yBins[bin]; ok {
				y = snapped
			} else if snapped, ok := yBins[bin+1]; ok {
				y = snapped
			} else if snapped, ok := yBins[bin-1]; ok {
				y = snapped
			} else {
				yBins[bin] = y
			}
			vs = append(vs, point2{x: x, y: y, tex: v.Tex})
			if i == 0 || y < minY {
				minY, minIndex = y, i
			}
			if i == 0 || y > maxY {
				maxY = y
			}
			if cornersAt[y] == nil {
				cornersAt[y] = make(map[int]bool)
			}
			cornersAt[y][pi] = true
		}
		if minIndex < 0 || minY >= maxY {
			// No area in the plane.
			continue
		}
		startsAt[minY] = append(startsAt[minY], pi)

		// The sweep walks loops clockwise.
		slices.Reverse(vs)
		verts[pi] = vs
		topIndex[pi] = n - minIndex - 1
	}

	ys := make([]float32, 0, len(cornersAt))
	for y := range cornersAt {
		ys = append(ys, y)
	}
	slices.Sort(ys)

	var (
		out     []*Polygon
		active  []*activePolygon
		prevRow []*rowPolygon
	)
	emit := func(o *outPolygon) {
		pts := make([]point2, 0, len(o.left)+len(o.right))
		pts = append(pts, o.right...)
		for i := len(o.left) - 1; i >= 0; i-- {
			pts = append(pts, o.left[i])
		}
		vs := make([]Vertex, 0, len(pts))
		for _, p := range pts {
			vs = append(vs, t.Vertex(basis.to3D(p.x, p.y), p.tex))
		}
		vs = dedupeLoop(vs)
		if len(vs) >= 3 {
			out = append(out, NewPolygon(vs, shared, plane))
		}
	}

	for yi, y := range ys {
		corners := cornersAt[y]

		// Advance active polygons that have a vertex on this scanline and drop
		// the ones that end here.
		kept := active[:0]
		for _, ap := range active {
			if !corners[ap.index] {
				kept = append(kept, ap)
				continue
			}
			vs := verts[ap.index]
			n := len(vs)
			newLeft := ap.left
			for k := 0; k < n; k++ {
				next := (newLeft + 1) % n
				if vs[next].y != y {
					break
				}
				newLeft = next
			}
			newRight := ap.right
			if prev := (newRight - 1 + n) % n; vs[prev].y == y {
				newRight = prev
			}
			if newLeft != ap.left && newLeft == newRight {
				continue
			}
			ap.left, ap.right = newLeft, newRight
			ap.topLeft, ap.topRight = vs[newLeft], vs[newRight]
			ap.bottomLeft = vs[(newLeft+1)%n]
			ap.bottomRight = vs[(newRight-1+n)%n]
			kept = append(kept, ap)
		}
		active = kept

		var nextY float32
		if yi == len(ys)-1 {
			active = nil
		} else {
			nextY = ys[yi+1]
			midY := 0.5 * (y + nextY)
			for _, pi := range startsAt[y] {
				vs := verts[pi]
				n := len(vs)
				top := topIndex[pi]
				left := top
				for {
					i := (left + 1) % n
					if vs[i].y != y || i == top {
						break
					}
					left = i
				}
				right := top
				for {
					i := (right - 1 + n) % n
					if vs[i].y != y || i == left {
						break
					}
					right = i
				}
				ap := &activePolygon{
					index:       pi,
					left:        left,
					right:       right,
					topLeft:     vs[left],
					topRight:    vs[right],
					bottomLeft:  vs[(left+1)%n],
					bottomRight: vs[(right-1+n)%n],
				}
				x := ap.leftXAt(midY)
				at := sort.Search(len(active), func(i int) bool {
					return x <= active[i].leftXAt(midY)
				})
				active = slices.Insert(active, at, ap)
			}
		}

		// Cut the row between y and nextY into trapezoids, joining neighbours
		// that touch along their whole height.
		var row []*rowPolygon
		for _, ap := range active {
			rp := &rowPolygon{
				topLeft:     interpolateAtY(ap.topLeft, ap.bottomLeft, y),
				topRight:    interpolateAtY(ap.topRight, ap.bottomRight, y),
				bottomLeft:  interpolateAtY(ap.topLeft, ap.bottomLeft, nextY),
				bottomRight: interpolateAtY(ap.topRight, ap.bottomRight, nextY),
			}
			rp.leftDir = lineDir(rp.topLeft, rp.bottomLeft)
			rp.rightDir = lineDir(rp.bottomRight, rp.topRight)
			if len(row) > 0 {
				prev := row[len(row)-1]
				if dist2(rp.topLeft, prev.topRight) < Epsilon && dist2(rp.bottomLeft, prev.bottomRight) < Epsilon {
					rp.topLeft = prev.topLeft
					rp.bottomLeft = prev.bottomLeft
					rp.leftDir = prev.leftDir
					row = row[:len(row)-1]
				}
			}
			row = append(row, rp)
		}

		// Stack this row onto the previous one where the edges line up and
		// the joined outline stays convex; close everything else.
		if yi > 0 {
			continued := make([]bool, len(prevRow))
			matched := make([]bool, len(prevRow))
			for _, rp := range row {
				for ii, pp := range prevRow {
					if matched[ii] {
						continue
					}
					if dist2(pp.bottomLeft, rp.topLeft) >= Epsilon || dist2(pp.bottomRight, rp.topRight) >= Epsilon {
						continue
					}
					matched[ii] = true
					d1 := rp.leftDir.X() - pp.leftDir.X()
					d2 := rp.rightDir.X() - pp.rightDir.X()
					leftContinues := math32.Abs(d1) < Epsilon
					rightContinues := math32.Abs(d2) < Epsilon
					if (leftContinues || d1 >= 0) && (rightContinues || d2 >= 0) {
						rp.out = pp.out
						rp.leftContinues = leftContinues
						rp.rightContinues = rightContinues
						continued[ii] = true
					}
					break
				}
			}
			for ii, pp := range prevRow {
				if continued[ii] {
					continue
				}
				pp.out.right = append(pp.out.right, pp.bottomRight)
				if dist2(pp.bottomRight, pp.bottomLeft) > Epsilon {
					pp.out.left = append(pp.out.left, pp.bottomLeft)
				}
				emit(pp.out)
			}
		}

		for _, rp := range row {
			if rp.out == nil {
				rp.out = &outPolygon{left: []point2{rp.topLeft}}
				if dist2(rp.topLeft, rp.topRight) > Epsilon {
					rp.out.right = append(rp.out.right, rp.topRight)
				}
				continue
			}
			if !rp.leftContinues {
				rp.out.left = append(rp.out.left, rp.topLeft)
			}
			if !rp.rightContinues {
				rp.out.right = append(rp.out.right, rp.topRight)
			}
		}
		prevRow = row
	}
	return out
}
