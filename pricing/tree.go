package pricing

// NodeID addresses a node inside a Tree. IDs are stable for the lifetime of
// the tree; removed nodes keep their slot and are simply detached.
type NodeID int

// NoNode is returned where no node exists.
const NoNode NodeID = -1

// Node is either a Leaf or a Container.
type Node interface {
	Label() string
	optionNode()
}

// Leaf is a selectable, priced option.
type Leaf struct {
	Text  string
	Value float64
}

// Container groups further options and carries no price of its own.
type Container struct {
	Text     string
	Children []NodeID
}

func (l Leaf) Label() string      { return l.Text }
func (c Container) Label() string { return c.Text }

func (Leaf) optionNode()      {}
func (Container) optionNode() {}

// RawNode is the stored JSON shape of a conditional field:
// {"text": ..., "value": ..., "children": [...]}.
type RawNode struct {
	Text     string     `json:"text" yaml:"text"`
	Value    *float64   `json:"value,omitempty" yaml:"value,omitempty"`
	Children *[]RawNode `json:"children,omitempty" yaml:"children,omitempty"`
}

type entry struct {
	node    Node
	parent  NodeID
	removed bool
}

// Tree is an arena of option nodes. The roots are the item's conditional
// fields in display order.
//
// A Tree is safe for concurrent reads. Editing methods must not race with
// readers; edit a Clone instead.
type Tree struct {
	nodes []entry
	roots []NodeID
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Ingest classifies the raw fields once: a node with a children slice (even an
// empty one) is a Container, anything else is a Leaf. A nil or empty input
// yields an empty tree.
func Ingest(fields []RawNode) *Tree {
	t := NewTree()
	for i := range fields {
		t.roots = append(t.roots, t.ingest(&fields[i], NoNode))
	}
	return t
}

func (t *Tree) ingest(raw *RawNode, parent NodeID) NodeID {
	id := NodeID(len(t.nodes))
	if raw.Children == nil {
		var v float64
		if raw.Value != nil {
			v = *raw.Value
		}
		t.nodes = append(t.nodes, entry{node: Leaf{Text: raw.Text, Value: v}, parent: parent})
		return id
	}

	t.nodes = append(t.nodes, entry{node: Container{Text: raw.Text}, parent: parent})
	children := make([]NodeID, 0, len(*raw.Children))
	for i := range *raw.Children {
		children = append(children, t.ingest(&(*raw.Children)[i], id))
	}
	t.nodes[id].node = Container{Text: raw.Text, Children: children}
	return id
}

// Raw exports the tree back into its stored shape.
func (t *Tree) Raw() []RawNode {
	if t == nil {
		return nil
	}
	out := make([]RawNode, 0, len(t.roots))
	for _, id := range t.roots {
		out = append(out, t.raw(id))
	}
	return out
}

func (t *Tree) raw(id NodeID) RawNode {
	switch n := t.nodes[id].node.(type) {
	case Leaf:
		v := n.Value
		return RawNode{Text: n.Text, Value: &v}
	case Container:
		children := make([]RawNode, 0, len(n.Children))
		for _, c := range n.Children {
			children = append(children, t.raw(c))
		}
		return RawNode{Text: n.Text, Children: &children}
	}
	return RawNode{}
}

// Len returns the number of attached nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, e := range t.nodes {
		if !e.removed {
			n++
		}
	}
	return n
}

// Roots returns the root field ids in order.
func (t *Tree) Roots() []NodeID {
	if t == nil {
		return nil
	}
	return append([]NodeID(nil), t.roots...)
}

func (t *Tree) valid(id NodeID) bool {
	return t != nil && id >= 0 && int(id) < len(t.nodes) && !t.nodes[id].removed
}

// Node returns the node stored under id.
func (t *Tree) Node(id NodeID) (Node, bool) {
	if !t.valid(id) {
		return nil, false
	}
	return t.nodes[id].node, true
}

// Parent returns the parent of id, or NoNode for roots and unknown ids.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].parent
}

// Children returns the children of a container; leaves have none.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	if c, ok := t.nodes[id].node.(Container); ok {
		return append([]NodeID(nil), c.Children...)
	}
	return nil
}

// Child returns the i-th child of id.
func (t *Tree) Child(id NodeID, i int) (NodeID, bool) {
	if !t.valid(id) {
		return NoNode, false
	}
	c, ok := t.nodes[id].node.(Container)
	if !ok || i < 0 || i >= len(c.Children) {
		return NoNode, false
	}
	return c.Children[i], true
}

// Root returns the i-th root field.
func (t *Tree) Root(i int) (NodeID, bool) {
	if t == nil || i < 0 || i >= len(t.roots) {
		return NoNode, false
	}
	return t.roots[i], true
}

// Clone returns an independent copy.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	c := &Tree{
		nodes: make([]entry, len(t.nodes)),
		roots: append([]NodeID(nil), t.roots...),
	}
	for i, e := range t.nodes {
		if ct, ok := e.node.(Container); ok {
			e.node = Container{Text: ct.Text, Children: append([]NodeID(nil), ct.Children...)}
		}
		c.nodes[i] = e
	}
	return c
}

func (t *Tree) add(n Node, parent NodeID) (NodeID, bool) {
	if t == nil {
		return NoNode, false
	}
	if parent != NoNode {
		if !t.valid(parent) {
			return NoNode, false
		}
		p, ok := t.nodes[parent].node.(Container)
		if !ok {
			return NoNode, false
		}
		id := NodeID(len(t.nodes))
		t.nodes = append(t.nodes, entry{node: n, parent: parent})
		p.Children = append(p.Children, id)
		t.nodes[parent].node = p
		return id, true
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, entry{node: n, parent: NoNode})
	t.roots = append(t.roots, id)
	return id, true
}

// AddLeaf appends a priced leaf under parent (NoNode adds a root field).
// It fails when parent is not a container.
func (t *Tree) AddLeaf(parent NodeID, text string, value float64) (NodeID, bool) {
	if parent != NoNode && !t.valid(parent) {
		return NoNode, false
	}
	return t.add(Leaf{Text: text, Value: value}, parent)
}

// AddContainer appends an empty container under parent (NoNode adds a root field).
func (t *Tree) AddContainer(parent NodeID, text string) (NodeID, bool) {
	if parent != NoNode && !t.valid(parent) {
		return NoNode, false
	}
	return t.add(Container{Text: text}, parent)
}

// SetText relabels a node.
func (t *Tree) SetText(id NodeID, text string) bool {
	if !t.valid(id) {
		return false
	}
	switch n := t.nodes[id].node.(type) {
	case Leaf:
		n.Text = text
		t.nodes[id].node = n
	case Container:
		n.Text = text
		t.nodes[id].node = n
	}
	return true
}

// SetValue reprices a leaf. Containers carry no price and are left unchanged.
func (t *Tree) SetValue(id NodeID, value float64) bool {
	if !t.valid(id) {
		return false
	}
	l, ok := t.nodes[id].node.(Leaf)
	if !ok {
		return false
	}
	l.Value = value
	t.nodes[id].node = l
	return true
}

// Remove detaches id and its subtree. Sibling indices after it shift down, so
// selections recorded against the old shape may become stale.
func (t *Tree) Remove(id NodeID) bool {
	if !t.valid(id) {
		return false
	}
	if parent := t.nodes[id].parent; parent != NoNode {
		p := t.nodes[parent].node.(Container)
		p.Children = without(p.Children, id)
		t.nodes[parent].node = p
	} else {
		t.roots = without(t.roots, id)
	}
	t.detach(id)
	return true
}

func (t *Tree) detach(id NodeID) {
	t.nodes[id].removed = true
	if c, ok := t.nodes[id].node.(Container); ok {
		for _, child := range c.Children {
			t.detach(child)
		}
	}
}

func without(ids []NodeID, id NodeID) []NodeID {
	out := make([]NodeID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
