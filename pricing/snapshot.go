package pricing

import "strings"

// SelectedOption is one finalized selection, frozen with the labels and price
// it had when the line item was created.
type SelectedOption struct {
	Field string   `json:"field"`
	Path  []string `json:"path"`
	Value float64  `json:"value"`
}

// Snapshot is the persisted form of a line item's selections. It is read back
// as historical data and never re-evaluated against the catalog tree.
type Snapshot []SelectedOption

// Capture freezes the effective selections of t. Selections that resolve to a
// container are kept for display with a zero value.
func Capture(t *Tree, selections []Selection) Snapshot {
	ids := t.effective(selections)
	if len(ids) == 0 {
		return nil
	}
	snap := make(Snapshot, 0, len(ids))
	for _, id := range ids {
		path := t.PathOf(id)
		labels := make([]string, 0, len(path))
		for _, p := range path {
			labels = append(labels, t.nodes[p].node.Label())
		}
		var v float64
		if l, ok := t.nodes[id].node.(Leaf); ok {
			v = l.Value
		}
		snap = append(snap, SelectedOption{Field: labels[0], Path: labels, Value: v})
	}
	return snap
}

// OptionsPrice implements OptionPricer.
func (s Snapshot) OptionsPrice() float64 {
	var sum float64
	for _, o := range s {
		sum += o.Value
	}
	return sum
}

// Label renders the snapshot the same way SelectionLabel renders live
// selections.
func (s Snapshot) Label() string {
	parts := make([]string, 0, len(s))
	for _, o := range s {
		if len(o.Path) == 0 {
			continue
		}
		parts = append(parts, strings.Join(o.Path, PathSeparator))
	}
	return strings.Join(parts, ", ")
}
