package scene

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Node kinds.
const (
	KindCube      = "cube"
	KindSphere    = "sphere"
	KindCylinder  = "cylinder"
	KindUnion     = "union"
	KindSubtract  = "subtract"
	KindIntersect = "intersect"
	KindRef       = "ref"
)

// Document is one scene file: a set of named nodes and the node to build.
type Document struct {
	Root  string           `yaml:"root"`
	Nodes map[string]*Node `yaml:"nodes"`
}

// Node is a primitive, a boolean combination of other nodes, or a reference
// to a node in another scene file.
type Node struct {
	Kind string `yaml:"kind"`

	// Primitive parameters. Zero values take the engine defaults.
	Center [3]float32  `yaml:"center"`
	Size   *[3]float32 `yaml:"size"`
	Radius float32     `yaml:"radius"`
	Start  *[3]float32 `yaml:"start"`
	End    *[3]float32 `yaml:"end"`
	Slices int         `yaml:"slices"`
	Stacks int         `yaml:"stacks"`

	// Children of a boolean node, folded left to right.
	Children Children `yaml:"children"`

	// Ref names "file.yaml", "file.yaml#node" or "#node" in the same file.
	Ref string `yaml:"ref"`

	Transform *Transform `yaml:"transform"`
	// Material is inherited by children that do not set their own.
	Material string `yaml:"material"`
}

// Transform is applied as scale, then rotation about X, Y and Z in degrees,
// then translation.
type Transform struct {
	Translate [3]float32  `yaml:"translate"`
	Rotate    [3]float32  `yaml:"rotate"`
	Scale     *[3]float32 `yaml:"scale"`
}

// Children accepts either a single node name or a list of names.
type Children []string

// UnmarshalYAML implements yaml.Unmarshaler for Children.
func (c *Children) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var name string
		if err := value.Decode(&name); err != nil {
			return err
		}
		*c = Children{name}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		*c = names
		return nil
	}
	return fmt.Errorf("line %d: children must be a name or a list of names", value.Line)
}

func isBoolean(kind string) bool {
	return kind == KindUnion || kind == KindSubtract || kind == KindIntersect
}

// Validate checks that the root exists, every kind is known and every child
// name resolves within the document.
func (d *Document) Validate() error {
	if d.Root == "" {
		return fmt.Errorf("missing root")
	}
	if _, ok := d.Nodes[d.Root]; !ok {
		return fmt.Errorf("root node %q not defined", d.Root)
	}
	for name, n := range d.Nodes {
		if n == nil {
			return fmt.Errorf("node %q is empty", name)
		}
		switch {
		case n.Kind == KindCube, n.Kind == KindSphere, n.Kind == KindCylinder:
			if len(n.Children) > 0 {
				return fmt.Errorf("node %q: %s takes no children", name, n.Kind)
			}
		case isBoolean(n.Kind):
			if len(n.Children) == 0 {
				return fmt.Errorf("node %q: %s needs at least one child", name, n.Kind)
			}
			for _, c := range n.Children {
				if _, ok := d.Nodes[c]; !ok {
					return fmt.Errorf("node %q: unknown child %q", name, c)
				}
			}
		case n.Kind == KindRef:
			if n.Ref == "" {
				return fmt.Errorf("node %q: ref needs a target", name)
			}
		default:
			return fmt.Errorf("node %q: %w %q", name, ErrUnknownKind, n.Kind)
		}
	}
	return nil
}
