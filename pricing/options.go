package pricing

import (
	"strconv"
	"strings"
)

// PathSeparator joins the labels along a selection path and a container with
// its children.
const PathSeparator = " → "

// Selection picks one node inside a root field, addressed by child indices
// from the root. An empty Path selects the root itself.
type Selection struct {
	Field int   `json:"field" yaml:"field"`
	Path  []int `json:"path" yaml:"path"`
}

// PriceOf returns a leaf's value, or for a container the sum of every leaf in
// its subtree. Unknown ids price at 0.
func (t *Tree) PriceOf(id NodeID) float64 {
	n, ok := t.Node(id)
	if !ok {
		return 0
	}
	switch n := n.(type) {
	case Leaf:
		return n.Value
	case Container:
		var sum float64
		for _, c := range n.Children {
			sum += t.PriceOf(c)
		}
		return sum
	}
	return 0
}

// LabelOf renders a node and, for containers, its descendants:
// "Size → Small → Plain, Glossy". Children with empty labels are dropped.
func (t *Tree) LabelOf(id NodeID) string {
	n, ok := t.Node(id)
	if !ok {
		return ""
	}
	c, isContainer := n.(Container)
	if !isContainer {
		return n.Label()
	}

	labels := make([]string, 0, len(c.Children))
	for _, child := range c.Children {
		if l := t.LabelOf(child); l != "" {
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		return c.Text
	}
	return c.Text + PathSeparator + strings.Join(labels, ", ")
}

// Resolve follows a selection to its node. Out-of-range fields or indices
// report false.
func (t *Tree) Resolve(sel Selection) (NodeID, bool) {
	id, ok := t.Root(sel.Field)
	if !ok {
		return NoNode, false
	}
	for _, i := range sel.Path {
		if id, ok = t.Child(id, i); !ok {
			return NoNode, false
		}
	}
	return id, true
}

// PathOf returns the nodes from the root field down to id.
func (t *Tree) PathOf(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	var path []NodeID
	for cur := id; cur != NoNode; cur = t.nodes[cur].parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// effective drops selections that do not resolve and keeps only the first
// selection per root field.
func (t *Tree) effective(selections []Selection) []NodeID {
	if t == nil || len(selections) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(selections))
	out := make([]NodeID, 0, len(selections))
	for _, sel := range selections {
		if seen[sel.Field] {
			continue
		}
		id, ok := t.Resolve(sel)
		if !ok {
			continue
		}
		seen[sel.Field] = true
		out = append(out, id)
	}
	return out
}

// SelectionPrice sums the values of the selected leaves. Selections that land
// on a container add nothing.
func SelectionPrice(t *Tree, selections []Selection) float64 {
	var sum float64
	for _, id := range t.effective(selections) {
		if l, ok := t.nodes[id].node.(Leaf); ok {
			sum += l.Value
		}
	}
	return sum
}

// SelectionLabel renders each selection as its root-to-node path and joins
// the selections with ", ".
func SelectionLabel(t *Tree, selections []Selection) string {
	ids := t.effective(selections)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, t.pathLabel(id))
	}
	return strings.Join(parts, ", ")
}

func (t *Tree) pathLabel(id NodeID) string {
	path := t.PathOf(id)
	labels := make([]string, 0, len(path))
	for _, p := range path {
		labels = append(labels, t.nodes[p].node.Label())
	}
	return strings.Join(labels, PathSeparator)
}

// MissingFields lists the root fields that have no leaf selected.
func MissingFields(t *Tree, selections []Selection) []string {
	if t == nil {
		return nil
	}
	chosen := make(map[NodeID]bool)
	for _, id := range t.effective(selections) {
		if _, ok := t.nodes[id].node.(Leaf); ok {
			chosen[t.PathOf(id)[0]] = true
		}
	}
	var missing []string
	for _, root := range t.roots {
		if !chosen[root] {
			missing = append(missing, t.nodes[root].node.Label())
		}
	}
	return missing
}

// Validate rejects option trees with empty labels. Used when an admin saves
// an item.
func (t *Tree) Validate() error {
	verr := &ValidationError{}
	for i, root := range t.Roots() {
		t.validate(root, "conditionalFields["+strconv.Itoa(i)+"]", verr)
	}
	return verr.orNil()
}

func (t *Tree) validate(id NodeID, field string, verr *ValidationError) {
	n := t.nodes[id].node
	if strings.TrimSpace(n.Label()) == "" {
		verr.add(field+".text", "is required")
	}
	if c, ok := n.(Container); ok {
		for i, child := range c.Children {
			t.validate(child, field+".children["+strconv.Itoa(i)+"]", verr)
		}
	}
}
