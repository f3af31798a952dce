package csg

// PolygonTreeNode records how one source polygon was cut up. A node is a leaf
// holding a live polygon, an internal node whose children hold the fragments,
// or removed. An internal node keeps its own polygon only as long as every
// fragment below it is still alive; removing any descendant clears it.
type PolygonTreeNode struct {
	parent   *PolygonTreeNode
	children []*PolygonTreeNode
	polygon  *Polygon
	removed  bool
}

// Polygon returns the polygon this node stands for, or nil once a descendant
// has been removed.
func (n *PolygonTreeNode) Polygon() *Polygon { return n.polygon }

// IsRemoved reports whether the node was clipped away.
func (n *PolygonTreeNode) IsRemoved() bool { return n.removed }

// Children returns the fragments the polygon was split into.
func (n *PolygonTreeNode) Children() []*PolygonTreeNode { return n.children }

func (n *PolygonTreeNode) addChild(p *Polygon) *PolygonTreeNode {
	c := &PolygonTreeNode{parent: n, polygon: p}
	n.children = append(n.children, c)
	return c
}

// remove detaches n from its parent and invalidates every ancestor below the
// root.
func (n *PolygonTreeNode) remove() {
	if n.removed {
		return
	}
	n.removed = true
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	for a := p; a != nil && a.parent != nil; a = a.parent {
		a.polygon = nil
	}
}

// invert flips every polygon in the subtree, internal nodes included.
func (n *PolygonTreeNode) invert() {
	stack := []*PolygonTreeNode{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node.polygon != nil {
			node.polygon = node.polygon.Flipped()
		}
		stack = append(stack, node.children...)
	}
}

// polygons collects live polygons breadth first. A node that still owns its
// polygon stands in for all of its fragments.
func (n *PolygonTreeNode) polygons() []*Polygon {
	var out []*Polygon
	queue := [][]*PolygonTreeNode{{n}}
	for i := 0; i < len(queue); i++ {
		for _, node := range queue[i] {
			switch {
			case node.polygon != nil:
				out = append(out, node.polygon)
			case len(node.children) > 0:
				queue = append(queue, node.children)
			}
		}
	}
	return out
}

// splitByPlane sorts the leaves below n into the four buckets. Buckets may
// alias each other.
func (n *PolygonTreeNode) splitByPlane(t *Tags, plane Plane, coplanarFront, coplanarBack, front, back *[]*PolygonTreeNode) {
	if len(n.children) == 0 {
		n.splitLeafByPlane(t, plane, coplanarFront, coplanarBack, front, back)
		return
	}
	stack := [][]*PolygonTreeNode{n.children}
	for len(stack) > 0 {
		level := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range level {
			if len(c.children) > 0 {
				stack = append(stack, c.children)
				continue
			}
			c.splitLeafByPlane(t, plane, coplanarFront, coplanarBack, front, back)
		}
	}
}

func (n *PolygonTreeNode) splitLeafByPlane(t *Tags, plane Plane, coplanarFront, coplanarBack, front, back *[]*PolygonTreeNode) {
	poly := n.polygon
	if poly == nil {
		return
	}
	center, radius := poly.BoundingSphere()
	d := plane.SignedDistance(center)
	r := radius + Epsilon
	if d > r {
		*front = append(*front, n)
		return
	}
	if d < -r {
		*back = append(*back, n)
		return
	}

	res := plane.SplitPolygon(t, poly)
	switch res.Kind {
	case CoplanarFront:
		*coplanarFront = append(*coplanarFront, n)
	case CoplanarBack:
		*coplanarBack = append(*coplanarBack, n)
	case Front:
		*front = append(*front, n)
	case Back:
		*back = append(*back, n)
	case Spanning:
		if res.Front != nil {
			*front = append(*front, n.addChild(res.Front))
		}
		if res.Back != nil {
			*back = append(*back, n.addChild(res.Back))
		}
	}
}

// Node is one BSP node: a splitting plane, the polygons lying in it and the
// two half-space subtrees.
type Node struct {
	plane    Plane
	hasPlane bool
	front    *Node
	back     *Node
	parent   *Node
	leaves   []*PolygonTreeNode
}

// Plane returns the splitting plane and whether one has been chosen yet.
func (n *Node) Plane() (Plane, bool) { return n.plane, n.hasPlane }

// Front returns the front subtree, nil if absent.
func (n *Node) Front() *Node { return n.front }

// Back returns the back subtree, nil if absent.
func (n *Node) Back() *Node { return n.back }

// Parent returns the node this one hangs under.
func (n *Node) Parent() *Node { return n.parent }

// Leaves returns the polygon tree nodes coplanar with this node's plane.
func (n *Node) Leaves() []*PolygonTreeNode { return n.leaves }

type nodeWork struct {
	node  *Node
	nodes []*PolygonTreeNode
}

// invert swaps every node's half spaces.
func (n *Node) invert() {
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node.hasPlane {
			node.plane = node.plane.Flipped()
		}
		node.front, node.back = node.back, node.front
		if node.front != nil {
			stack = append(stack, node.front)
		}
		if node.back != nil {
			stack = append(stack, node.back)
		}
	}
}

// addPolygonTreeNodes inserts polygon tree nodes below n, creating child
// nodes as needed.
func (n *Node) addPolygonTreeNodes(t *Tags, nodes []*PolygonTreeNode) {
	stack := []nodeWork{{node: n, nodes: nodes}}
	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := w.node
		if len(w.nodes) == 0 {
			continue
		}
		if !node.hasPlane {
			for _, ptn := range w.nodes {
				if ptn.polygon != nil {
					node.plane = ptn.polygon.Plane
					node.hasPlane = true
					break
				}
			}
			if !node.hasPlane {
				continue
			}
		}

		var front, back []*PolygonTreeNode
		for _, ptn := range w.nodes {
			ptn.splitByPlane(t, node.plane, &node.leaves, &node.leaves, &front, &back)
		}
		if len(front) > 0 {
			if node.front == nil {
				node.front = &Node{parent: node}
			}
			stack = append(stack, nodeWork{node: node.front, nodes: front})
		}
		if len(back) > 0 {
			if node.back == nil {
				node.back = &Node{parent: node}
			}
			stack = append(stack, nodeWork{node: node.back, nodes: back})
		}
	}
}

// clipPolygons pushes nodes down through the subtree rooted at n and removes
// whatever ends up behind a node without a back subtree. With
// alsoRemoveCoplanarFront, fragments lying in a plane and facing the same way
// are treated as behind it.
func (n *Node) clipPolygons(t *Tags, nodes []*PolygonTreeNode, alsoRemoveCoplanarFront bool) {
	stack := []nodeWork{{node: n, nodes: nodes}}
	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := w.node
		if !node.hasPlane {
			continue
		}

		var front, back []*PolygonTreeNode
		coplanarFront := &front
		if alsoRemoveCoplanarFront {
			coplanarFront = &back
		}
		for _, ptn := range w.nodes {
			if ptn.removed {
				continue
			}
			ptn.splitByPlane(t, node.plane, coplanarFront, &back, &front, &back)
		}

		if node.front != nil && len(front) > 0 {
			stack = append(stack, nodeWork{node: node.front, nodes: front})
		}
		if node.back != nil && len(back) > 0 {
			stack = append(stack, nodeWork{node: node.back, nodes: back})
			continue
		}
		for _, ptn := range back {
			ptn.remove()
		}
	}
}

// clipTo clips the polygons held by every node of this subtree against other.
func (n *Node) clipTo(t *Tags, other *Tree, alsoRemoveCoplanarFront bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(node.leaves) > 0 {
			other.root.clipPolygons(t, node.leaves, alsoRemoveCoplanarFront)
		}
		if node.front != nil {
			stack = append(stack, node.front)
		}
		if node.back != nil {
			stack = append(stack, node.back)
		}
	}
}

// Tree pairs a BSP node hierarchy with the polygon tree forest recording
// every split made while building and clipping it.
type Tree struct {
	tags        *Tags
	polygonTree *PolygonTreeNode
	root        *Node
}

// NewTree builds a BSP tree over polygons. Tags for new vertices come from t.
func NewTree(t *Tags, polygons []*Polygon) *Tree {
	tr := &Tree{
		tags:        t,
		polygonTree: &PolygonTreeNode{},
		root:        &Node{},
	}
	tr.AddPolygons(polygons)
	return tr
}

// Root returns the top BSP node.
func (tr *Tree) Root() *Node { return tr.root }

// AddPolygons inserts more polygons into the tree.
func (tr *Tree) AddPolygons(polygons []*Polygon) {
	nodes := make([]*PolygonTreeNode, 0, len(polygons))
	for _, p := range polygons {
		nodes = append(nodes, tr.polygonTree.addChild(p))
	}
	tr.root.addPolygonTreeNodes(tr.tags, nodes)
}

// Invert turns the solid inside out.
func (tr *Tree) Invert() {
	tr.polygonTree.invert()
	tr.root.invert()
}

// ClipTo removes every part of this tree's polygons that lies inside other.
func (tr *Tree) ClipTo(other *Tree, alsoRemoveCoplanarFront bool) {
	tr.root.clipTo(tr.tags, other, alsoRemoveCoplanarFront)
}

// AllPolygons returns the surviving polygons.
func (tr *Tree) AllPolygons() []*Polygon {
	return tr.polygonTree.polygons()
}
