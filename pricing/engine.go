package pricing

// QuoteInput is what a presentation layer knows about an item while the user
// adjusts quantity and options.
type QuoteInput struct {
	BasePrice  float64
	Constraint Constraint
	Tree       *Tree
	Requested  int
	Selections []Selection
}

// Quote is the live pricing of an item detail view.
type Quote struct {
	RequestedQuantity int      `json:"requestedQuantity"`
	Quantity          int      `json:"quantity"`
	Adjusted          bool     `json:"adjusted"`
	Satisfiable       bool     `json:"satisfiable"`
	UnitPrice         float64  `json:"unitPrice"`
	OptionsPrice      float64  `json:"optionsPrice"`
	OptionsLabel      string   `json:"optionsLabel"`
	MissingFields     []string `json:"missingFields,omitempty"`
	LineTotal         float64  `json:"lineTotal"`
	Snapshot          Snapshot `json:"snapshot,omitempty"`
}

// Complete reports whether the quote can be finalized into a cart line.
func (q Quote) Complete() bool {
	return q.Satisfiable && len(q.MissingFields) == 0 && q.Quantity > 0
}

// Evaluate resolves the quantity, prices the selections and computes the line
// total. It has no side effects on in.
func Evaluate(in QuoteInput) Quote {
	qty := in.Constraint.Resolve(in.Requested)
	choice := Choice{Tree: in.Tree, Selections: in.Selections}
	opts := choice.OptionsPrice()

	return Quote{
		RequestedQuantity: in.Requested,
		Quantity:          qty,
		Adjusted:          qty != in.Requested,
		Satisfiable:       in.Constraint.Satisfiable(),
		UnitPrice:         in.BasePrice + opts,
		OptionsPrice:      opts,
		OptionsLabel:      choice.Label(),
		MissingFields:     MissingFields(in.Tree, in.Selections),
		LineTotal:         LineTotal(in.BasePrice, qty, choice),
		Snapshot:          Capture(in.Tree, in.Selections),
	}
}
