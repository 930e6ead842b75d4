package pricing

// OptionPricer yields the per-unit price delta of a line's selected options.
type OptionPricer interface {
	OptionsPrice() float64
}

// Choice is a live selection against the current catalog tree.
type Choice struct {
	Tree       *Tree
	Selections []Selection
}

// OptionsPrice implements OptionPricer.
func (c Choice) OptionsPrice() float64 {
	return SelectionPrice(c.Tree, c.Selections)
}

// Label renders the choice for display.
func (c Choice) Label() string {
	return SelectionLabel(c.Tree, c.Selections)
}

// LineTotal is (basePrice + options) * quantity. A nil options adds nothing.
func LineTotal(basePrice float64, quantity int, options OptionPricer) float64 {
	var delta float64
	if options != nil {
		delta = options.OptionsPrice()
	}
	return (basePrice + delta) * float64(quantity)
}

// LineItem is one item at a quantity with its options, as it appears in a
// cart or order.
type LineItem struct {
	BasePrice float64
	Quantity  int
	Options   OptionPricer
}

// Total returns the line total.
func (l LineItem) Total() float64 {
	return LineTotal(l.BasePrice, l.Quantity, l.Options)
}

// Summary aggregates a cart or an order.
type Summary struct {
	TotalQuantity int     `json:"totalQuantity"`
	TotalPrice    float64 `json:"totalPrice"`
	LineCount     int     `json:"lineCount"`
}

// Aggregate sums quantities and totals over lines. An empty input yields the
// zero Summary.
func Aggregate(lines []LineItem) Summary {
	var s Summary
	for _, l := range lines {
		s.TotalQuantity += l.Quantity
		s.TotalPrice += l.Total()
	}
	s.LineCount = len(lines)
	return s
}
