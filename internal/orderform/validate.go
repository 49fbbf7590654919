package orderform

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrFieldInvalid      = errors.New("field invalid")
	ErrCrossFieldInvalid = errors.New("cross-field invalid")
)

// Rule names surfaced to callers. Structural rules apply to a single field,
// cross-field rules to the whole line sequence.
const (
	RuleRequired     = "required"
	RuleMinLength    = "min_length"
	RuleEmailFormat  = "email_format"
	RuleMin          = "min"
	RuleExceedsStock = "exceeds_stock"

	RuleMinProducts         = "min_products"
	RuleMaxTotalQuantity    = "max_total_quantity"
	RuleNoDuplicateProducts = "no_duplicate_products"
)

const (
	MinNameLength    = 3
	MaxTotalQuantity = 10
)

// emailRe requires a dotted domain, so bare hosts like a@b are rejected.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type FieldError struct {
	Field string
	Rule  string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Rule)
}

// Violations collects every failed rule so a caller can report all of them
// at once instead of stopping at the first.
type Violations []FieldError

func (v Violations) Has(field, rule string) bool {
	for _, e := range v {
		if e.Field == field && e.Rule == rule {
			return true
		}
	}
	return false
}

func (v Violations) HasRule(rule string) bool {
	for _, e := range v {
		if e.Rule == rule {
			return true
		}
	}
	return false
}

func (v Violations) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Err folds the violations into an error carrying the matching sentinel
// classes, or nil when there are none.
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}

	var classes []error
	structural, cross := false, false
	for _, e := range v {
		switch e.Rule {
		case RuleMinProducts, RuleMaxTotalQuantity, RuleNoDuplicateProducts:
			cross = true
		default:
			structural = true
		}
	}
	if structural {
		classes = append(classes, ErrFieldInvalid)
	}
	if cross {
		classes = append(classes, ErrCrossFieldInvalid)
	}

	return fmt.Errorf("%w: %s", errors.Join(classes...), v.Error())
}

type Customer struct {
	Name  string
	Email string
}

func validateCustomer(c Customer) Violations {
	var out Violations
	if c.Name == "" {
		out = append(out, FieldError{Field: "customer.name", Rule: RuleRequired})
	} else if len(c.Name) < MinNameLength {
		out = append(out, FieldError{Field: "customer.name", Rule: RuleMinLength})
	}
	if c.Email == "" {
		out = append(out, FieldError{Field: "customer.email", Rule: RuleRequired})
	} else if !emailRe.MatchString(c.Email) {
		out = append(out, FieldError{Field: "customer.email", Rule: RuleEmailFormat})
	}
	return out
}

func validateLine(i int, ln Line) Violations {
	var out Violations
	if ln.Product == "" {
		out = append(out, FieldError{Field: lineField(i, "product"), Rule: RuleRequired})
	}
	switch {
	case ln.Quantity == 0:
		out = append(out, FieldError{Field: lineField(i, "quantity"), Rule: RuleRequired})
	case ln.Quantity < 1:
		out = append(out, FieldError{Field: lineField(i, "quantity"), Rule: RuleMin})
	case ln.State != LineEmpty && ln.Quantity > ln.MaxQuantity:
		out = append(out, FieldError{Field: lineField(i, "quantity"), Rule: RuleExceedsStock})
	}
	return out
}

// validateLines runs the whole-order rules over the line sequence. Pure
// function of its input, re-evaluated after every line mutation.
func validateLines(lines []Line) Violations {
	var out Violations

	if len(lines) == 0 {
		out = append(out, FieldError{Field: "lines", Rule: RuleMinProducts})
		return out
	}

	total := 0
	for _, ln := range lines {
		total += ln.Quantity
	}
	if total > MaxTotalQuantity {
		out = append(out, FieldError{Field: "lines", Rule: RuleMaxTotalQuantity})
	}

	// Unselected lines are skipped here, structural validation already
	// flags them as missing.
	seen := make(map[string]bool, len(lines))
	for _, ln := range lines {
		if ln.Product == "" {
			continue
		}
		if seen[ln.Product] {
			out = append(out, FieldError{Field: "lines", Rule: RuleNoDuplicateProducts})
			break
		}
		seen[ln.Product] = true
	}

	return out
}

func lineField(i int, name string) string {
	return fmt.Sprintf("lines[%d].%s", i, name)
}
