package pricing

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func children(nodes ...RawNode) *[]RawNode { return &nodes }

// sizeTree is Size → Small → {Plain 0, Glossy 3}, Large → {Plain 1}; Color → {Red 5, Blue}.
func sizeTree() *Tree {
	return Ingest([]RawNode{
		{Text: "Size", Children: children(
			RawNode{Text: "Small", Children: children(
				RawNode{Text: "Plain", Value: floatPtr(0)},
				RawNode{Text: "Glossy", Value: floatPtr(3)},
			)},
			RawNode{Text: "Large", Children: children(
				RawNode{Text: "Plain", Value: floatPtr(1)},
			)},
		)},
		{Text: "Color", Children: children(
			RawNode{Text: "Red", Value: floatPtr(5)},
			RawNode{Text: "Blue"},
		)},
	})
}

func TestIngestClassification(t *testing.T) {
	tree := Ingest([]RawNode{
		{Text: "Leaf only", Value: floatPtr(2)},
		{Text: "Neither"},
		{Text: "Empty container", Children: children()},
		{Text: "Both", Value: floatPtr(9), Children: children(RawNode{Text: "Child", Value: floatPtr(1)})},
	})

	kinds := make([]string, 0, 4)
	for _, id := range tree.Roots() {
		n, ok := tree.Node(id)
		require.True(t, ok)
		switch n.(type) {
		case Leaf:
			kinds = append(kinds, "leaf")
		case Container:
			kinds = append(kinds, "container")
		}
	}
	assert.Equal(t, []string{"leaf", "leaf", "container", "container"}, kinds)

	// The value on a node that also has children is ignored.
	both, _ := tree.Root(3)
	assert.Equal(t, 1.0, tree.PriceOf(both))
}

func TestIngestFromJSON(t *testing.T) {
	var raw []RawNode
	err := json.Unmarshal([]byte(`[{"text":"Finish","children":[{"text":"Matte","value":2},{"text":"Gloss","value":4.5}]}]`), &raw)
	require.NoError(t, err)

	tree := Ingest(raw)
	root, ok := tree.Root(0)
	require.True(t, ok)
	assert.Equal(t, 6.5, tree.PriceOf(root))
	assert.Equal(t, "Finish → Matte, Gloss", tree.LabelOf(root))

	if diff := cmp.Diff(raw, tree.Raw()); diff != "" {
		t.Errorf("Raw() mismatch (-want +got):\n%s", diff)
	}
}

func TestPriceOfAndLabelOf(t *testing.T) {
	tree := sizeTree()
	size, _ := tree.Root(0)
	color, _ := tree.Root(1)

	assert.Equal(t, 4.0, tree.PriceOf(size))
	assert.Equal(t, 5.0, tree.PriceOf(color))
	assert.Equal(t, "Size → Small → Plain, Glossy, Large → Plain", tree.LabelOf(size))
	assert.Equal(t, "Color → Red, Blue", tree.LabelOf(color))
	assert.Equal(t, 0.0, tree.PriceOf(NodeID(999)))
	assert.Equal(t, "", tree.LabelOf(NoNode))
}

func TestLabelOfDropsEmptyChildren(t *testing.T) {
	tree := Ingest([]RawNode{
		{Text: "Engraving", Children: children(RawNode{Text: ""}, RawNode{Text: "Initials", Value: floatPtr(2)})},
		{Text: "Wrap", Children: children(RawNode{Text: ""})},
	})
	first, _ := tree.Root(0)
	second, _ := tree.Root(1)

	assert.Equal(t, "Engraving → Initials", tree.LabelOf(first))
	assert.Equal(t, "Wrap", tree.LabelOf(second))
}

func TestSelectionPriceAndLabel(t *testing.T) {
	tree := sizeTree()

	tests := []struct {
		name       string
		selections []Selection
		price      float64
		label      string
	}{
		{"no selection", nil, 0, ""},
		{"nested leaf", []Selection{{Field: 0, Path: []int{0, 1}}}, 3, "Size → Small → Glossy"},
		{"two fields", []Selection{{Field: 0, Path: []int{1, 0}}, {Field: 1, Path: []int{0}}}, 6, "Size → Large → Plain, Color → Red"},
		{"leaf without value", []Selection{{Field: 1, Path: []int{1}}}, 0, "Color → Blue"},
		{"container contributes nothing", []Selection{{Field: 0, Path: []int{0}}}, 0, "Size → Small"},
		{"stale index skipped", []Selection{{Field: 0, Path: []int{0, 7}}, {Field: 1, Path: []int{0}}}, 5, "Color → Red"},
		{"unknown field skipped", []Selection{{Field: 4, Path: []int{0}}}, 0, ""},
		{"second selection for same field ignored", []Selection{{Field: 1, Path: []int{0}}, {Field: 1, Path: []int{1}}}, 5, "Color → Red"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.price, SelectionPrice(tree, tt.selections))
			assert.Equal(t, tt.label, SelectionLabel(tree, tt.selections))
		})
	}
}

func TestSelectionOnRootLeaf(t *testing.T) {
	tree := Ingest([]RawNode{{Text: "Red", Value: floatPtr(5)}})

	assert.Equal(t, 5.0, SelectionPrice(tree, []Selection{{Field: 0}}))
	assert.Equal(t, "Red", SelectionLabel(tree, []Selection{{Field: 0}}))
	assert.Equal(t, 0.0, SelectionPrice(tree, nil))
}

func TestNilTree(t *testing.T) {
	var tree *Tree

	assert.Equal(t, 0.0, SelectionPrice(tree, []Selection{{Field: 0}}))
	assert.Equal(t, "", SelectionLabel(tree, []Selection{{Field: 0}}))
	assert.Nil(t, MissingFields(tree, nil))
	assert.Nil(t, Capture(tree, []Selection{{Field: 0}}))
	assert.Equal(t, 0, tree.Len())
}

func TestMissingFields(t *testing.T) {
	tree := sizeTree()

	assert.Equal(t, []string{"Size", "Color"}, MissingFields(tree, nil))
	assert.Equal(t, []string{"Color"}, MissingFields(tree, []Selection{{Field: 0, Path: []int{0, 0}}}))
	// A container does not satisfy its field.
	assert.Equal(t, []string{"Size"}, MissingFields(tree, []Selection{{Field: 0, Path: []int{1}}, {Field: 1, Path: []int{1}}}))
	assert.Empty(t, MissingFields(tree, []Selection{{Field: 0, Path: []int{1, 0}}, {Field: 1, Path: []int{1}}}))
}

func TestEvaluatorDoesNotMutateInputs(t *testing.T) {
	tree := sizeTree()
	before := tree.Raw()
	sels := []Selection{{Field: 0, Path: []int{0, 1}}}

	_ = SelectionPrice(tree, sels)
	_ = SelectionLabel(tree, sels)
	_ = Capture(tree, sels)

	if diff := cmp.Diff(before, tree.Raw()); diff != "" {
		t.Errorf("tree mutated (-before +after):\n%s", diff)
	}
	assert.Equal(t, []Selection{{Field: 0, Path: []int{0, 1}}}, sels)
}

func TestTreeEditing(t *testing.T) {
	tree := NewTree()
	finish, ok := tree.AddContainer(NoNode, "Finish")
	require.True(t, ok)
	matte, _ := tree.AddLeaf(finish, "Matte", 2)
	gloss, _ := tree.AddLeaf(finish, "Gloss", 4)

	_, ok = tree.AddLeaf(matte, "Nested", 1)
	assert.False(t, ok, "leaves cannot hold children")

	assert.True(t, tree.SetValue(gloss, 5))
	assert.False(t, tree.SetValue(finish, 1))
	assert.True(t, tree.SetText(matte, "Satin"))
	assert.Equal(t, "Finish → Satin, Gloss", tree.LabelOf(finish))
	assert.Equal(t, 7.0, tree.PriceOf(finish))
	assert.Equal(t, finish, tree.Parent(gloss))
	assert.Equal(t, []NodeID{finish, gloss}, tree.PathOf(gloss))

	clone := tree.Clone()
	assert.True(t, tree.Remove(matte))
	assert.Equal(t, 2, tree.Len())
	assert.Equal(t, 5.0, tree.PriceOf(finish))

	// Selection recorded before the edit now points past the end.
	assert.Equal(t, 0.0, SelectionPrice(tree, []Selection{{Field: 0, Path: []int{1}}}))
	assert.Equal(t, 5.0, SelectionPrice(clone, []Selection{{Field: 0, Path: []int{1}}}))
	assert.Equal(t, 3, clone.Len())

	assert.True(t, tree.Remove(finish))
	assert.Empty(t, tree.Roots())
	assert.False(t, tree.Remove(finish))
}

func TestNilTreeEditing(t *testing.T) {
	var tree *Tree

	id, ok := tree.AddContainer(NoNode, "Finish")
	assert.False(t, ok)
	assert.Equal(t, NoNode, id)

	id, ok = tree.AddLeaf(NoNode, "Matte", 2)
	assert.False(t, ok)
	assert.Equal(t, NoNode, id)

	_, ok = tree.AddLeaf(0, "Matte", 2)
	assert.False(t, ok)
	assert.Equal(t, 0, tree.Len())
}

func TestTreeValidate(t *testing.T) {
	assert.NoError(t, sizeTree().Validate())

	bad := Ingest([]RawNode{{Text: "Size", Children: children(RawNode{Text: " "})}})
	err := bad.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "conditionalFields[0].children[0].text", verr.Fields[0].Field)
}
