package orderform

// LineState tracks how far a line has progressed through entry. Transitions
// are driven by discrete edit events: selecting a product moves an empty line
// to ProductSelected, entering a quantity moves it to Quantified.
type LineState int

const (
	LineEmpty LineState = iota
	LineProductSelected
	LineQuantified
)

func (s LineState) String() string {
	switch s {
	case LineProductSelected:
		return "product_selected"
	case LineQuantified:
		return "quantified"
	default:
		return "empty"
	}
}

// Line is one product+quantity entry. Price and Stock are snapshots frozen
// when the product was selected; they are not re-read from the catalog.
type Line struct {
	Product  string
	Quantity int // 0 means not entered yet

	Price float64
	Stock int

	// MaxQuantity is the derived upper bound for Quantity, tightened to the
	// stock snapshot once a product is selected.
	MaxQuantity int

	State LineState
}

// deriveConstraints recomputes the quantity bound for a line state. An empty
// line carries no bound; once a product is bound the stock snapshot is the
// ceiling.
func deriveConstraints(state LineState, stock int) int {
	if state == LineEmpty {
		return 0
	}
	return stock
}
