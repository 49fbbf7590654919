package orderform

import (
	"context"
	"fmt"
	"sync"

	"github.com/avdeenko/orderdesk/internal/catalog"
	"github.com/avdeenko/orderdesk/internal/transport"
)

// LimitChecker is the asynchronous validity source for the customer email,
// implemented by ratelimit.Checker. It must fail open: remote trouble is a
// pass, not an error.
type LimitChecker interface {
	Check(ctx context.Context, email string) error
}

// Form is the in-memory order under entry: customer data plus an ordered
// line sequence, validated against a catalog snapshot taken at construction
// time. Mutations are serialized by an internal mutex so the form can be
// driven from handler goroutines; validation itself is pure.
//
// Synchronous (structural + cross-field) validity and the asynchronous
// rate-limit result are kept as two separate flags and combined only at
// submission, so a late-resolving check never clobbers field errors.
type Form struct {
	mu       sync.Mutex
	customer Customer
	lines    []*Line
	catalog  []transport.Product

	checker LimitChecker

	// limitOK is the email's asynchronous validity flag. It starts passing
	// and is only flipped by a resolved check; limitGen discards results of
	// checks superseded by a later email edit.
	limitOK  bool
	limitGen uint64
}

func New(catalog []transport.Product, checker LimitChecker) *Form {
	return &Form{
		catalog: catalog,
		checker: checker,
		limitOK: true,
	}
}

func (f *Form) SetCustomerName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customer.Name = name
}

// SetCustomerEmail records the email and resets the rate-limit flag: a new
// address is presumed fine until a check against it resolves. Any check
// still in flight for the previous address is superseded.
func (f *Form) SetCustomerEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customer.Email = email
	f.limitGen++
	f.limitOK = true
}

func (f *Form) Customer() Customer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.customer
}

// AddLine appends an empty line and returns its index.
func (f *Form) AddLine() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, &Line{State: LineEmpty})
	return len(f.lines) - 1
}

func (f *Form) RemoveLine(i int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= len(f.lines) {
		return fmt.Errorf("no line at index %d", i)
	}
	f.lines = append(f.lines[:i], f.lines[i+1:]...)
	return nil
}

// SelectProduct is the line binder: one synchronous, non-cascading snapshot
// update per selection change. A known name freezes price and stock on the
// line and tightens its quantity bound; an unknown name keeps the previous
// snapshots, leaving the stock check to flag the line once a quantity is
// entered.
func (f *Form) SelectProduct(i int, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ln, err := f.line(i)
	if err != nil {
		return err
	}

	ln.Product = name
	if p, ok := catalog.FindByName(f.catalog, name); ok {
		ln.Price = p.Price
		ln.Stock = p.Stock
	}
	if ln.State == LineEmpty && name != "" {
		ln.State = LineProductSelected
	}
	ln.MaxQuantity = deriveConstraints(ln.State, ln.Stock)
	return nil
}

func (f *Form) SetQuantity(i, q int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ln, err := f.line(i)
	if err != nil {
		return err
	}

	ln.Quantity = q
	if ln.State == LineProductSelected && q != 0 {
		ln.State = LineQuantified
	}
	return nil
}

// Lines returns a copy of the current line sequence.
func (f *Form) Lines() []Line {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyLines()
}

// Validate runs the structural and cross-field rules and collects every
// violation. It never consults the remote store.
func (f *Form) Validate() Violations {
	f.mu.Lock()
	cust := f.customer
	lines := f.copyLines()
	f.mu.Unlock()

	out := validateCustomer(cust)
	for i, ln := range lines {
		out = append(out, validateLine(i, ln)...)
	}
	out = append(out, validateLines(lines)...)
	return out
}

// RefreshOrderLimit kicks off the asynchronous history check for the current
// email and returns without waiting. The result lands on the email's
// validity flag when it resolves, unless a later email edit has superseded
// the check. Structural and cross-field validity are never blocked by it.
func (f *Form) RefreshOrderLimit(ctx context.Context) {
	f.mu.Lock()
	email := f.customer.Email
	gen := f.limitGen
	checker := f.checker
	f.mu.Unlock()

	if checker == nil {
		return
	}

	go func() {
		err := checker.Check(ctx, email)

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.limitGen != gen {
			// Superseded by a newer email edit, drop the stale result.
			return
		}
		f.limitOK = err == nil
	}()
}

// OrderLimitOK reports the email's asynchronous validity flag as of now.
// Eventually consistent: a pending check may still flip it.
func (f *Form) OrderLimitOK() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.limitOK
}

// CanSubmit combines the two validity sources with a logical AND.
func (f *Form) CanSubmit() bool {
	return len(f.Validate()) == 0 && f.OrderLimitOK()
}

func (f *Form) line(i int) (*Line, error) {
	if i < 0 || i >= len(f.lines) {
		return nil, fmt.Errorf("no line at index %d", i)
	}
	return f.lines[i], nil
}

func (f *Form) copyLines() []Line {
	out := make([]Line, len(f.lines))
	for i, ln := range f.lines {
		out[i] = *ln
	}
	return out
}
