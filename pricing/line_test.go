package pricing

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTotal(t *testing.T) {
	tree := Ingest([]RawNode{{Text: "Finish", Children: children(RawNode{Text: "Gloss", Value: floatPtr(2)})}})
	choice := Choice{Tree: tree, Selections: []Selection{{Field: 0, Path: []int{0}}}}

	assert.Equal(t, 36.0, LineTotal(10, 3, choice))
	assert.Equal(t, 30.0, LineTotal(10, 3, nil))
	assert.Equal(t, 0.0, LineTotal(10, 0, choice))
	assert.Equal(t, 2*LineTotal(10, 3, choice), LineTotal(10, 6, choice))
}

func TestAggregate(t *testing.T) {
	assert.Equal(t, Summary{}, Aggregate(nil))
	assert.Equal(t, Summary{}, Aggregate([]LineItem{}))

	lines := []LineItem{
		{BasePrice: 10, Quantity: 3, Options: Snapshot{{Field: "Finish", Path: []string{"Finish", "Gloss"}, Value: 2}}},
		{BasePrice: 4.5, Quantity: 2},
		{BasePrice: 1, Quantity: 10, Options: Snapshot{}},
	}
	want := Summary{TotalQuantity: 15, TotalPrice: 36 + 9 + 10, LineCount: 3}
	assert.Equal(t, want, Aggregate(lines))

	reversed := []LineItem{lines[2], lines[1], lines[0]}
	assert.Equal(t, want, Aggregate(reversed))
}

func TestCaptureSnapshot(t *testing.T) {
	tree := sizeTree()
	sels := []Selection{{Field: 0, Path: []int{0, 1}}, {Field: 1, Path: []int{0}}, {Field: 0, Path: []int{1, 0}}}

	snap := Capture(tree, sels)
	want := Snapshot{
		{Field: "Size", Path: []string{"Size", "Small", "Glossy"}, Value: 3},
		{Field: "Color", Path: []string{"Color", "Red"}, Value: 5},
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, SelectionPrice(tree, sels), snap.OptionsPrice())
	assert.Equal(t, SelectionLabel(tree, sels), snap.Label())
}

func TestSnapshotSurvivesCatalogEdits(t *testing.T) {
	tree := sizeTree()
	sels := []Selection{{Field: 0, Path: []int{0, 1}}}
	snap := Capture(tree, sels)

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	glossy, _ := tree.Resolve(sels[0])
	tree.SetValue(glossy, 100)
	tree.SetText(glossy, "Mirror")

	var stored Snapshot
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, 3.0, stored.OptionsPrice())
	assert.Equal(t, "Size → Small → Glossy", stored.Label())
	assert.Equal(t, 3.0*4+40, LineTotal(10, 4, stored))
}

func TestEvaluate(t *testing.T) {
	in := QuoteInput{
		BasePrice:  10,
		Constraint: Constraint{Minimum: 4, Maximum: intPtr(40), Circulation: 4},
		Tree:       sizeTree(),
		Requested:  7,
		Selections: []Selection{{Field: 0, Path: []int{0, 1}}},
	}

	q := Evaluate(in)
	assert.Equal(t, 8, q.Quantity)
	assert.True(t, q.Adjusted)
	assert.True(t, q.Satisfiable)
	assert.Equal(t, 3.0, q.OptionsPrice)
	assert.Equal(t, 13.0, q.UnitPrice)
	assert.Equal(t, 104.0, q.LineTotal)
	assert.Equal(t, []string{"Color"}, q.MissingFields)
	assert.False(t, q.Complete())

	in.Selections = append(in.Selections, Selection{Field: 1, Path: []int{0}})
	in.Requested = 8
	q = Evaluate(in)
	assert.False(t, q.Adjusted)
	assert.True(t, q.Complete())
	assert.Equal(t, "Size → Small → Glossy, Color → Red", q.OptionsLabel)
	assert.Equal(t, 144.0, q.LineTotal)
	assert.Len(t, q.Snapshot, 2)
}

func TestEvaluateUnsatisfiable(t *testing.T) {
	q := Evaluate(QuoteInput{BasePrice: 1, Constraint: Constraint{Minimum: 10, Maximum: intPtr(5), Circulation: 1}, Requested: 7})

	assert.Equal(t, 10, q.Quantity)
	assert.False(t, q.Satisfiable)
	assert.False(t, q.Complete())
}
