package csg

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CubeOptions describes an axis-aligned box. A zero Size means 2x2x2.
type CubeOptions struct {
	Center mgl32.Vec3
	Size   mgl32.Vec3
	Shared *Shared
}

// Corner i of the unit cube has x, y, z set from bits 0, 1, 2.
var cubeFaces = [6]struct {
	corners [4]int
	normal  mgl32.Vec3
}{
	{[4]int{0, 4, 6, 2}, mgl32.Vec3{-1, 0, 0}},
	{[4]int{1, 3, 7, 5}, mgl32.Vec3{1, 0, 0}},
	{[4]int{0, 1, 5, 4}, mgl32.Vec3{0, -1, 0}},
	{[4]int{2, 6, 7, 3}, mgl32.Vec3{0, 1, 0}},
	{[4]int{0, 2, 3, 1}, mgl32.Vec3{0, 0, -1}},
	{[4]int{4, 5, 7, 6}, mgl32.Vec3{0, 0, 1}},
}

var quadTex = [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// Cube returns a box with six quads. Every face gets its own four vertices,
// so the 24 vertex instances carry 24 distinct tags.
func Cube(t *Tags, opts CubeOptions) *Solid {
	size := opts.Size
	if size == (mgl32.Vec3{}) {
		size = mgl32.Vec3{2, 2, 2}
	}
	half := size.Mul(0.5)

	corner := func(i int) mgl32.Vec3 {
		return mgl32.Vec3{
			opts.Center.X() + half.X()*float32(2*(i&1)-1),
			opts.Center.Y() + half.Y()*float32(2*((i>>1)&1)-1),
			opts.Center.Z() + half.Z()*float32(2*((i>>2)&1)-1),
		}
	}

	polys := make([]*Polygon, 0, len(cubeFaces))
	for _, face := range cubeFaces {
		vs := make([]Vertex, 4)
		for j, c := range face.corners {
			vs[j] = t.Vertex(corner(c), quadTex[j])
		}
		w := face.normal.Dot(opts.Center.Add(mgl32.Vec3{
			face.normal.X() * half.X(),
			face.normal.Y() * half.Y(),
			face.normal.Z() * half.Z(),
		}))
		polys = append(polys, NewPolygon(vs, opts.Shared, t.Plane(face.normal, w)))
	}
	return FromPolygons(t, polys)
}

// SphereOptions describes a UV sphere. Zero Radius, Slices or Stacks fall
// back to 1, 16 and 8.
type SphereOptions struct {
	Center mgl32.Vec3
	Radius float32
	Slices int
	Stacks int
	Shared *Shared
}

// Sphere returns a UV sphere with triangles at the poles and quads
// elsewhere.
func Sphere(t *Tags, opts SphereOptions) *Solid {
	radius := opts.Radius
	if radius == 0 {
		radius = 1
	}
	slices := opts.Slices
	if slices <= 0 {
		slices = 16
	}
	stacks := opts.Stacks
	if stacks <= 0 {
		stacks = 8
	}

	// Grid vertices are built once so neighbouring faces share tags.
	grid := make([][]Vertex, slices+1)
	for i := range grid {
		grid[i] = make([]Vertex, stacks+1)
		for j := range grid[i] {
			u := float32(i) / float32(slices)
			v := float32(j) / float32(stacks)
			st, ct := math32.Sincos(u * 2 * math32.Pi)
			sp, cp := math32.Sincos(v * math32.Pi)
			dir := mgl32.Vec3{ct * sp, cp, st * sp}
			grid[i][j] = t.Vertex(opts.Center.Add(dir.Mul(radius)), mgl32.Vec2{u, v})
		}
	}
	// Close the seam.
	for j := range grid[slices] {
		grid[slices][j].Tag = grid[0][j].Tag
		grid[slices][j].Pos = grid[0][j].Pos
	}

	polys := make([]*Polygon, 0, slices*stacks)
	for i := 0; i < slices; i++ {
		for j := 0; j < stacks; j++ {
			vs := make([]Vertex, 0, 4)
			vs = append(vs, grid[i][j])
			if j > 0 {
				vs = append(vs, grid[i+1][j])
			}
			if j < stacks-1 {
				vs = append(vs, grid[i+1][j+1])
			}
			vs = append(vs, grid[i][j+1])
			polys = append(polys, t.Polygon(vs, opts.Shared))
		}
	}
	return FromPolygons(t, polys)
}

// CylinderOptions describes a capped cylinder between Start and End. Zero
// values give a unit-radius cylinder from (0,-1,0) to (0,1,0) with 16 slices.
type CylinderOptions struct {
	Start  mgl32.Vec3
	End    mgl32.Vec3
	Radius float32
	Slices int
	Shared *Shared
}

// Cylinder returns a capped cylinder: a triangle fan on each cap and one quad
// per slice around the side.
func Cylinder(t *Tags, opts CylinderOptions) *Solid {
	start, end := opts.Start, opts.End
	if start == end {
		start, end = mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 1, 0}
	}
	radius := opts.Radius
	if radius == 0 {
		radius = 1
	}
	slices := opts.Slices
	if slices <= 0 {
		slices = 16
	}

	ray := end.Sub(start)
	axisZ := unit(ray)
	var seed mgl32.Vec3
	if math32.Abs(axisZ.Y()) > 0.5 {
		seed = mgl32.Vec3{1, 0, 0}
	} else {
		seed = mgl32.Vec3{0, 1, 0}
	}
	axisX := unit(seed.Cross(axisZ))
	axisY := unit(axisX.Cross(axisZ))

	startV := t.Vertex(start, mgl32.Vec2{0.5, 0.5})
	endV := t.Vertex(end, mgl32.Vec2{0.5, 0.5})
	bottom := make([]Vertex, slices+1)
	top := make([]Vertex, slices+1)
	for i := 0; i <= slices; i++ {
		if i == slices {
			bottom[i], top[i] = bottom[0], top[0]
			continue
		}
		s := float32(i) / float32(slices)
		sin, cos := math32.Sincos(s * 2 * math32.Pi)
		out := axisX.Mul(cos).Add(axisY.Mul(sin))
		bottom[i] = t.Vertex(start.Add(out.Mul(radius)), mgl32.Vec2{s, 0})
		top[i] = t.Vertex(start.Add(ray).Add(out.Mul(radius)), mgl32.Vec2{s, 1})
	}

	startPlane := t.Plane(axisZ.Mul(-1), -axisZ.Dot(start))
	endPlane := t.Plane(axisZ, axisZ.Dot(end))

	polys := make([]*Polygon, 0, 3*slices)
	for i := 0; i < slices; i++ {
		polys = append(polys,
			NewPolygon([]Vertex{startV, bottom[i], bottom[i+1]}, opts.Shared, startPlane),
			t.Polygon([]Vertex{bottom[i+1], bottom[i], top[i], top[i+1]}, opts.Shared),
			NewPolygon([]Vertex{endV, top[i+1], top[i]}, opts.Shared, endPlane),
		)
	}
	return FromPolygons(t, polys)
}
