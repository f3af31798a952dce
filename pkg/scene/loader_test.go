package scene

import (
	"errors"
	"os"
	"strings"
	"testing"

	"mini-csg/pkg/csg"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl32"
)

func TestLoadSimpleScene(t *testing.T) {
	loader := NewLoader("scenes-test")
	doc, err := loader.Load("box")
	if err != nil {
		t.Fatalf("Failed to load scene: %v", err)
	}
	if doc.Root != "box" {
		t.Errorf("Expected root 'box', got '%s'", doc.Root)
	}
	if doc.Nodes["box"].Kind != KindCube {
		t.Errorf("Expected a cube, got '%s'", doc.Nodes["box"].Kind)
	}
}

func TestChildrenScalarOrList(t *testing.T) {
	loader := NewLoader("scenes-test")
	doc, err := loader.Load("hollow.yaml")
	if err != nil {
		t.Fatalf("Failed to load scene: %v", err)
	}
	if got := doc.Nodes["shell"].Children; len(got) != 2 || got[0] != "outer" || got[1] != "inner" {
		t.Errorf("Expected children [outer inner], got %v", got)
	}
	if got := doc.Nodes["wrapped"].Children; len(got) != 1 || got[0] != "shell" {
		t.Errorf("Expected single child [shell], got %v", got)
	}
}

func TestCache(t *testing.T) {
	loader := NewLoader("scenes-test")
	doc1, err := loader.Load("box")
	if err != nil {
		t.Fatalf("Failed to load scene first time: %v", err)
	}
	doc2, err := loader.Load("box.yaml")
	if err != nil {
		t.Fatalf("Failed to load scene second time: %v", err)
	}
	if doc1 != doc2 {
		t.Errorf("Expected the same document instance to be returned from cache")
	}
}

func TestBuildBox(t *testing.T) {
	s, err := NewLoader("scenes-test").Build("box")
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}
	want := csg.Box{Min: mgl32.Vec3{-0.5, -1, -1.5}, Max: mgl32.Vec3{0.5, 1, 1.5}}
	if got := s.Bounds(); got != want {
		t.Errorf("Expected bounds %+v, got %+v", want, got)
	}
}

func TestBuildHollow(t *testing.T) {
	s, err := NewLoader("scenes-test").Build("hollow")
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}
	if s.Contains(mgl32.Vec3{0.05, 0.1, -0.07}) {
		t.Errorf("Centre of the hollow box should be empty")
	}
	if !s.Contains(mgl32.Vec3{0.8, 0.1, -0.07}) {
		t.Errorf("Wall of the hollow box should be solid")
	}
	if s.PolygonCount() != 12 {
		t.Errorf("Expected 12 faces (outer and inner box), got %d", s.PolygonCount())
	}
}

func TestBuildRefWithTransform(t *testing.T) {
	s, err := NewLoader("scenes-test").Build("assembly")
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}
	want := csg.Box{Min: mgl32.Vec3{-0.5, -1, -1.5}, Max: mgl32.Vec3{5.5, 1, 1.5}}
	if got := s.Bounds(); !got.ApproxEqual(want, 1e-5) {
		t.Errorf("Expected bounds %+v, got %+v", want, got)
	}
}

func TestMaterialsShareRecords(t *testing.T) {
	s, err := NewLoader("scenes-test").Build("painted")
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}
	records := map[*csg.Shared]string{}
	for _, p := range s.Polygons() {
		if p.Shared == nil {
			t.Fatalf("Polygon without material")
		}
		records[p.Shared] = p.Shared.Material.(string)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 material records, got %d: %v", len(records), records)
	}
	names := map[string]bool{}
	for _, n := range records {
		names[n] = true
	}
	if !names["red"] || !names["blue"] {
		t.Errorf("Expected red and blue, got %v", names)
	}
}

func TestCycleDetected(t *testing.T) {
	_, err := NewLoader("scenes-test").Build("cycle_a")
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("Expected ErrCycle, got %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	loader := NewLoader("scenes-test")
	if _, err := loader.Load("missing"); err == nil || !strings.Contains(err.Error(), "could not read scene file") {
		t.Errorf("Expected read error, got %v", err)
	}
	if _, err := loader.Load("bad_kind"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind, got %v", err)
	}
	if _, err := loader.Build("bad_kind"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind from Build, got %v", err)
	}
	if _, err := loader.Load("bad_child"); err == nil || !strings.Contains(err.Error(), "unknown child") {
		t.Errorf("Expected unknown child error, got %v", err)
	}
}

func TestSceneMatchesDistanceField(t *testing.T) {
	s, err := NewLoader("scenes-test").Build("bracket")
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}

	plate, err := sdf.Box3D(v3.Vec{X: 4, Y: 1, Z: 2}, 0)
	if err != nil {
		t.Fatalf("sdf.Box3D: %v", err)
	}
	hole, err := sdf.Cylinder3D(4, 0.5, 0)
	if err != nil {
		t.Fatalf("sdf.Cylinder3D: %v", err)
	}
	// sdfx cylinders run along Z; the scene's runs along Y.
	hole = sdf.Transform3D(hole, sdf.Translate3d(v3.Vec{X: 1}).Mul(sdf.RotateX(-0.5*3.141592653589793)))
	field := sdf.Difference3D(plate, hole)

	checked := 0
	for x := float32(-1.93); x < 2; x += 0.31 {
		for y := float32(-0.43); y < 0.5; y += 0.29 {
			for z := float32(-0.97); z < 1; z += 0.23 {
				p := mgl32.Vec3{x, y, z}
				d := field.Evaluate(v3.Vec{X: float64(x), Y: float64(y), Z: float64(z)})
				// Facets of the 32-sided hole sit within 0.005 of the true circle.
				if d > -0.02 && d < 0.02 {
					continue
				}
				if got, want := s.Contains(p), d < 0; got != want {
					t.Fatalf("Contains(%v) = %v, distance field says %v", p, got, want)
				}
				checked++
			}
		}
	}
	if checked < 50 {
		t.Fatalf("only %d sample points checked", checked)
	}
}

func TestMain(m *testing.M) {
	// Create dummy files for testing
	os.MkdirAll("scenes-test", 0755)

	writeTestFile("scenes-test/box.yaml", `
root: box
nodes:
  box:
    kind: cube
    size: [1, 2, 3]
`)

	writeTestFile("scenes-test/hollow.yaml", `
root: wrapped
nodes:
  outer:
    kind: cube
    size: [2, 2, 2]
  inner:
    kind: cube
    size: [1, 1, 1]
  shell:
    kind: subtract
    children: [outer, inner]
  wrapped:
    kind: union
    children: shell
`)

	writeTestFile("scenes-test/assembly.yaml", `
root: pair
nodes:
  left:
    kind: ref
    ref: box
  right:
    kind: ref
    ref: box.yaml#box
    transform:
      translate: [5, 0, 0]
  pair:
    kind: union
    children: [left, right]
`)

	writeTestFile("scenes-test/painted.yaml", `
root: all
nodes:
  a:
    kind: cube
  b:
    kind: cube
    center: [1, 1, 1]
    material: blue
  all:
    kind: union
    material: red
    children: [a, b]
`)

	writeTestFile("scenes-test/cycle_a.yaml", `
root: loop
nodes:
  loop:
    kind: ref
    ref: cycle_b
`)

	writeTestFile("scenes-test/cycle_b.yaml", `
root: back
nodes:
  back:
    kind: ref
    ref: cycle_a.yaml
`)

	writeTestFile("scenes-test/bad_kind.yaml", `
root: x
nodes:
  x:
    kind: torus
`)

	writeTestFile("scenes-test/bad_child.yaml", `
root: x
nodes:
  x:
    kind: union
    children: [nope]
`)

	writeTestFile("scenes-test/bracket.yaml", `
root: bracket
nodes:
  plate:
    kind: cube
    size: [4, 1, 2]
  hole:
    kind: cylinder
    start: [1, -2, 0]
    end: [1, 2, 0]
    radius: 0.5
    slices: 32
  bracket:
    kind: subtract
    children: [plate, hole]
`)

	exitCode := m.Run()
	os.RemoveAll("scenes-test")
	os.Exit(exitCode)
}

func writeTestFile(path, content string) {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		panic(err)
	}
}
