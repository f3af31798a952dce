package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"mini-csg/internal/profiling"
	"mini-csg/pkg/csg"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// fan calls emit for every triangle of a fan triangulation of s.
func fan(s *csg.Solid, emit func(p *csg.Polygon, a, b, c csg.Vertex) error) error {
	for _, p := range s.Polygons() {
		vs := p.Vertices
		for i := 1; i+1 < len(vs); i++ {
			if err := emit(p, vs[0], vs[i], vs[i+1]); err != nil {
				return err
			}
		}
	}
	return nil
}

func triangleCount(s *csg.Solid) int {
	n := 0
	for _, p := range s.Polygons() {
		if len(p.Vertices) >= 3 {
			n += len(p.Vertices) - 2
		}
	}
	return n
}

// WriteSTL writes s to w as binary STL. Facet normals are the polygon plane
// normals.
func WriteSTL(w io.Writer, s *csg.Solid) error {
	defer profiling.Track("export.WriteSTL")()
	bw := bufio.NewWriter(w)

	var header [80]byte
	copy(header[:], "mini-csg")
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("write stl header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(triangleCount(s))); err != nil {
		return fmt.Errorf("write stl count: %w", err)
	}

	var rec [50]byte
	put := func(off int, f float32) {
		binary.LittleEndian.PutUint32(rec[off:], math.Float32bits(f))
	}
	err := fan(s, func(p *csg.Polygon, a, b, c csg.Vertex) error {
		n := p.Plane.Normal
		for i := 0; i < 3; i++ {
			put(4*i, n[i])
		}
		for j, v := range [3]csg.Vertex{a, b, c} {
			for i := 0; i < 3; i++ {
				put(12+12*j+4*i, v.Pos[i])
			}
		}
		_, err := bw.Write(rec[:])
		return err
	})
	if err != nil {
		return fmt.Errorf("write stl facet: %w", err)
	}
	return bw.Flush()
}

// Triangles converts s into the triangle list sdfx renders and exports.
func Triangles(s *csg.Solid) []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, 0, triangleCount(s))
	toVec := func(v csg.Vertex) v3.Vec {
		return v3.Vec{X: float64(v.Pos.X()), Y: float64(v.Pos.Y()), Z: float64(v.Pos.Z())}
	}
	_ = fan(s, func(_ *csg.Polygon, a, b, c csg.Vertex) error {
		out = append(out, &sdf.Triangle3{toVec(a), toVec(b), toVec(c)})
		return nil
	})
	return out
}

// SaveSTL writes s to the file at path using the sdfx STL writer.
func SaveSTL(path string, s *csg.Solid) error {
	defer profiling.Track("export.SaveSTL")()
	if err := render.SaveSTL(path, Triangles(s)); err != nil {
		return fmt.Errorf("could not save stl %s: %w", path, err)
	}
	return nil
}
