package meshing

import (
	"mini-csg/internal/profiling"
	"mini-csg/pkg/csg"
)

// VertexStride is number of float32 per vertex (pos.xyz + normal.xyz + uv)
const VertexStride = 8

// BuildSolidMesh triangulates every polygon of s as a fan around its first
// vertex and returns interleaved triangles ready for a VBO. Polygons are
// convex, so the fan covers them exactly; the plane normal is used for every
// vertex to keep faces flat shaded.
func BuildSolidMesh(s *csg.Solid) []float32 {
	defer profiling.Track("meshing.BuildSolidMesh")()

	tris := 0
	for _, p := range s.Polygons() {
		if n := len(p.Vertices); n >= 3 {
			tris += n - 2
		}
	}
	vertices := make([]float32, 0, tris*3*VertexStride)

	for _, p := range s.Polygons() {
		vs := p.Vertices
		if len(vs) < 3 {
			continue
		}
		n := p.Plane.Normal
		push := func(v csg.Vertex) {
			vertices = append(vertices,
				v.Pos.X(), v.Pos.Y(), v.Pos.Z(),
				n.X(), n.Y(), n.Z(),
				v.Tex.X(), v.Tex.Y(),
			)
		}
		for i := 1; i+1 < len(vs); i++ {
			push(vs[0])
			push(vs[i])
			push(vs[i+1])
		}
	}
	return vertices
}

// TriangleCount returns how many triangles a mesh built by BuildSolidMesh holds.
func TriangleCount(mesh []float32) int {
	return len(mesh) / (3 * VertexStride)
}
