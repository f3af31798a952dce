package scene

import (
	"errors"
	"fmt"
	"strings"

	"mini-csg/internal/profiling"
	"mini-csg/pkg/csg"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrCycle is returned when references loop back to a node being built.
var ErrCycle = errors.New("reference cycle")

// ErrUnknownKind is returned for a node whose kind is not a primitive, a
// boolean operation or a ref.
var ErrUnknownKind = errors.New("unknown kind")

type nodeKey struct {
	file string
	node string
}

type builder struct {
	loader    *Loader
	tags      *csg.Tags
	materials map[string]*csg.Shared
	visiting  map[nodeKey]bool
}

// Build loads the scene file name and evaluates its root node. All solids of
// one build share a tag allocator, and each material name maps to a single
// shared record.
func (l *Loader) Build(name string) (*csg.Solid, error) {
	defer profiling.Track("scene.Build")()
	b := &builder{
		loader:    l,
		tags:      csg.NewTags(),
		materials: make(map[string]*csg.Shared),
		visiting:  make(map[nodeKey]bool),
	}
	return b.buildRef(normalizeName(name), "", "")
}

// buildRef evaluates node in file, or the file's root when node is empty.
func (b *builder) buildRef(file, node, material string) (*csg.Solid, error) {
	doc, err := b.loader.Load(file)
	if err != nil {
		return nil, err
	}
	if node == "" {
		node = doc.Root
	}
	return b.buildNode(file, doc, node, material)
}

func (b *builder) buildNode(file string, doc *Document, name, material string) (*csg.Solid, error) {
	n, ok := doc.Nodes[name]
	if !ok {
		return nil, fmt.Errorf("%s: node %q not defined", file, name)
	}
	key := nodeKey{file, name}
	if b.visiting[key] {
		return nil, fmt.Errorf("%s#%s: %w", file, name, ErrCycle)
	}
	b.visiting[key] = true
	defer delete(b.visiting, key)

	if n.Material != "" {
		material = n.Material
	}

	var solid *csg.Solid
	switch {
	case n.Kind == KindCube:
		opts := csg.CubeOptions{Center: mgl32.Vec3(n.Center), Shared: b.shared(material)}
		if n.Size != nil {
			opts.Size = mgl32.Vec3(*n.Size)
		}
		solid = csg.Cube(b.tags, opts)
	case n.Kind == KindSphere:
		solid = csg.Sphere(b.tags, csg.SphereOptions{
			Center: mgl32.Vec3(n.Center),
			Radius: n.Radius,
			Slices: n.Slices,
			Stacks: n.Stacks,
			Shared: b.shared(material),
		})
	case n.Kind == KindCylinder:
		opts := csg.CylinderOptions{Radius: n.Radius, Slices: n.Slices, Shared: b.shared(material)}
		if n.Start != nil {
			opts.Start = mgl32.Vec3(*n.Start)
		}
		if n.End != nil {
			opts.End = mgl32.Vec3(*n.End)
		}
		solid = csg.Cylinder(b.tags, opts)
	case isBoolean(n.Kind):
		children := make([]*csg.Solid, 0, len(n.Children))
		for _, c := range n.Children {
			s, err := b.buildNode(file, doc, c, material)
			if err != nil {
				return nil, err
			}
			children = append(children, s)
		}
		first, rest := children[0], children[1:]
		switch n.Kind {
		case KindUnion:
			solid = first.Union(rest...)
		case KindSubtract:
			solid = first.Subtract(rest...)
		default:
			solid = first.Intersect(rest...)
		}
	case n.Kind == KindRef:
		target, node, _ := strings.Cut(n.Ref, "#")
		var err error
		if target == "" {
			solid, err = b.buildNode(file, doc, node, material)
		} else {
			solid, err = b.buildRef(normalizeName(target), node, material)
		}
		if err != nil {
			return nil, fmt.Errorf("%s#%s: could not resolve ref %q: %w", file, name, n.Ref, err)
		}
	default:
		return nil, fmt.Errorf("%s#%s: %w %q", file, name, ErrUnknownKind, n.Kind)
	}

	if n.Transform != nil {
		solid = solid.Transform(n.Transform.Matrix())
	}
	return solid, nil
}

func (b *builder) shared(material string) *csg.Shared {
	if material == "" {
		return nil
	}
	s, ok := b.materials[material]
	if !ok {
		s = b.tags.Shared(material)
		b.materials[material] = s
	}
	return s
}

// Matrix returns the affine matrix of t.
func (t *Transform) Matrix() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Translate[0], t.Translate[1], t.Translate[2])
	m = m.Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(t.Rotate[2])))
	m = m.Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(t.Rotate[1])))
	m = m.Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(t.Rotate[0])))
	if t.Scale != nil {
		m = m.Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
	}
	return m
}
