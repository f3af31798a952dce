package export

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"mini-csg/pkg/csg"

	"github.com/go-gl/mathgl/mgl32"
)

func TestWriteSTLCube(t *testing.T) {
	cube := csg.Cube(csg.NewTags(), csg.CubeOptions{})
	var buf bytes.Buffer
	if err := WriteSTL(&buf, cube); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	data := buf.Bytes()
	if want := 84 + 12*50; len(data) != want {
		t.Fatalf("got %d bytes, want %d", len(data), want)
	}
	if got := binary.LittleEndian.Uint32(data[80:84]); got != 12 {
		t.Fatalf("got %d facets, want 12", got)
	}

	first := cube.Polygons()[0]
	for i := 0; i < 3; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(data[84+4*i:]))
		if got != first.Plane.Normal[i] {
			t.Fatalf("normal[%d]: got %v, want %v", i, got, first.Plane.Normal[i])
		}
	}
	for i := 0; i < 3; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(data[96+4*i:]))
		if got != first.Vertices[0].Pos[i] {
			t.Fatalf("vertex[%d]: got %v, want %v", i, got, first.Vertices[0].Pos[i])
		}
	}
}

func TestTrianglesFan(t *testing.T) {
	tags := csg.NewTags()
	s := csg.Cylinder(tags, csg.CylinderOptions{Slices: 8})
	tris := Triangles(s)
	// 8 cap triangles on each end plus 2 per side quad.
	if len(tris) != 8+8+16 {
		t.Fatalf("got %d triangles, want 32", len(tris))
	}
}

func TestSaveSTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.stl")
	cube := csg.Cube(csg.NewTags(), csg.CubeOptions{})
	if err := SaveSTL(path, cube); err != nil {
		t.Fatalf("SaveSTL: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() <= 84 {
		t.Fatalf("got %d bytes, want a header and facets", info.Size())
	}
}

func TestRenderPreview(t *testing.T) {
	tags := csg.NewTags()
	s := csg.Cube(tags, csg.CubeOptions{}).Subtract(
		csg.Cube(tags, csg.CubeOptions{Center: mgl32.Vec3{1, 1, 1}}))

	img, err := RenderPreview(s, 128, "z")
	if err != nil {
		t.Fatalf("RenderPreview: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 128 || b.Dy() != 128 {
		t.Fatalf("got %v, want 128x128", b)
	}
	if c := img.RGBAAt(1, 1); c != backgroundColor {
		t.Fatalf("corner pixel %v, want background", c)
	}
	// The lower-left quadrant of the view shows the full-height front face.
	if c := img.RGBAAt(40, 88); c == backgroundColor {
		t.Fatalf("solid not drawn at the lower-left quadrant")
	}
}

func TestRenderPreviewErrors(t *testing.T) {
	cube := csg.Cube(csg.NewTags(), csg.CubeOptions{})
	if _, err := RenderPreview(cube, 64, "w"); err == nil {
		t.Fatalf("expected an error for an unknown axis")
	}
	if _, err := RenderPreview(cube, 0, "x"); err == nil {
		t.Fatalf("expected an error for a zero size")
	}
	empty, err := RenderPreview(csg.FromPolygons(csg.NewTags(), nil), 64, "y")
	if err != nil {
		t.Fatalf("empty solid: %v", err)
	}
	if c := empty.RGBAAt(32, 20); c != backgroundColor {
		t.Fatalf("empty solid drew %v", c)
	}
}

func TestSavePNG(t *testing.T) {
	cube := csg.Cube(csg.NewTags(), csg.CubeOptions{})
	img, err := RenderPreview(cube, 64, "x")
	if err != nil {
		t.Fatalf("RenderPreview: %v", err)
	}
	path := filepath.Join(t.TempDir(), "cube.png")
	if err := SavePNG(path, img); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("got bounds %v, want %v", decoded.Bounds(), img.Bounds())
	}
}
