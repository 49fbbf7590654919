package orderform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateCustomer(t *testing.T) {
	tests := []struct {
		name     string
		customer Customer
		field    string
		rule     string
	}{
		{"empty name", Customer{Name: "", Email: "ana@x.com"}, "customer.name", RuleRequired},
		{"short name", Customer{Name: "Al", Email: "ana@x.com"}, "customer.name", RuleMinLength},
		{"empty email", Customer{Name: "Ana", Email: ""}, "customer.email", RuleRequired},
		{"bad email", Customer{Name: "Ana", Email: "not-an-email"}, "customer.email", RuleEmailFormat},
		{"no tld", Customer{Name: "Ana", Email: "ana@x"}, "customer.email", RuleEmailFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validateCustomer(tt.customer)
			require.True(t, v.Has(tt.field, tt.rule), "expected %s/%s in %v", tt.field, tt.rule, v)
		})
	}

	require.Empty(t, validateCustomer(Customer{Name: "Ana", Email: "ana@x.com"}))
}

func TestValidateCustomerCollectsAllFailures(t *testing.T) {
	v := validateCustomer(Customer{})
	require.Len(t, v, 2)
	require.True(t, v.Has("customer.name", RuleRequired))
	require.True(t, v.Has("customer.email", RuleRequired))
}

func TestValidateLine(t *testing.T) {
	bound := Line{Product: "Tablet Air", Quantity: 2, Price: 449.99, Stock: 25, MaxQuantity: 25, State: LineQuantified}
	require.Empty(t, validateLine(0, bound))

	unselected := Line{State: LineEmpty}
	v := validateLine(0, unselected)
	require.True(t, v.Has("lines[0].product", RuleRequired))
	require.True(t, v.Has("lines[0].quantity", RuleRequired))

	negative := bound
	negative.Quantity = -1
	require.True(t, validateLine(0, negative).Has("lines[0].quantity", RuleMin))

	over := bound
	over.Quantity = 26
	require.True(t, validateLine(0, over).Has("lines[0].quantity", RuleExceedsStock))
}

func TestStockViolationClearsWhenLowered(t *testing.T) {
	ln := Line{Product: "Monitor 4K", Quantity: 20, Price: 349.99, Stock: 15, MaxQuantity: 15, State: LineQuantified}
	require.True(t, validateLine(3, ln).Has("lines[3].quantity", RuleExceedsStock))

	ln.Quantity = 15
	require.Empty(t, validateLine(3, ln))
}

func TestValidateLinesMinProducts(t *testing.T) {
	v := validateLines(nil)
	require.True(t, v.Has("lines", RuleMinProducts))
}

func TestValidateLinesMaxTotalQuantity(t *testing.T) {
	lines := []Line{
		{Product: "Laptop Gaming Pro", Quantity: 6, State: LineQuantified, MaxQuantity: 50},
		{Product: "Tablet Air", Quantity: 5, State: LineQuantified, MaxQuantity: 25},
	}
	require.True(t, validateLines(lines).Has("lines", RuleMaxTotalQuantity))

	lines[1].Quantity = 4
	require.False(t, validateLines(lines).HasRule(RuleMaxTotalQuantity))
}

func TestValidateLinesNoDuplicateProducts(t *testing.T) {
	lines := []Line{
		{Product: "Tablet Air", Quantity: 1, State: LineQuantified, MaxQuantity: 25},
		{Product: "Tablet Air", Quantity: 1, State: LineQuantified, MaxQuantity: 25},
	}
	require.True(t, validateLines(lines).Has("lines", RuleNoDuplicateProducts))
}

func TestViolationsErrClasses(t *testing.T) {
	require.NoError(t, Violations(nil).Err())

	structural := Violations{{Field: "customer.name", Rule: RuleRequired}}
	require.ErrorIs(t, structural.Err(), ErrFieldInvalid)
	require.NotErrorIs(t, structural.Err(), ErrCrossFieldInvalid)

	cross := Violations{{Field: "lines", Rule: RuleMinProducts}}
	require.ErrorIs(t, cross.Err(), ErrCrossFieldInvalid)

	both := append(structural, cross...)
	require.ErrorIs(t, both.Err(), ErrFieldInvalid)
	require.ErrorIs(t, both.Err(), ErrCrossFieldInvalid)
}

func TestValidateLinesIgnoresEmptyRefsForDuplicates(t *testing.T) {
	// Two unselected lines are flagged as missing products, not as
	// duplicates of each other.
	lines := []Line{
		{State: LineEmpty},
		{State: LineEmpty},
	}
	require.False(t, validateLines(lines).HasRule(RuleNoDuplicateProducts))
}
