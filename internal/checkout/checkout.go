package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/avdeenko/orderdesk/internal/logging"
	"github.com/avdeenko/orderdesk/internal/orderform"
	"github.com/avdeenko/orderdesk/internal/ratelimit"
	"github.com/avdeenko/orderdesk/internal/transport"
)

var (
	// ErrNotSubmittable gates submission on synchronous validity; the
	// collected violations ride along wrapped inside it.
	ErrNotSubmittable = errors.New("order not submittable")

	// ErrPersistenceFailed means the write to the store failed. The form is
	// left untouched so the user can resubmit; there is no automatic retry.
	ErrPersistenceFailed = errors.New("order persistence failed")
)

// Discount applied to the whole subtotal once it exceeds the threshold.
// All-or-nothing on the order, never per line, and the threshold is
// exclusive: a subtotal of exactly 1000 is not discounted.
var (
	discountThreshold = decimal.NewFromInt(1000)
	discountRate      = decimal.NewFromFloat(0.10)
)

// ComputeTotal sums price x quantity over the lines in decimal arithmetic
// and applies the volume discount when earned.
func ComputeTotal(lines []orderform.Line) float64 {
	subtotal := decimal.Zero
	for _, ln := range lines {
		lineTotal := decimal.NewFromFloat(ln.Price).Mul(decimal.NewFromInt(int64(ln.Quantity)))
		subtotal = subtotal.Add(lineTotal)
	}

	if subtotal.GreaterThan(discountThreshold) {
		subtotal = subtotal.Sub(subtotal.Mul(discountRate))
	}
	f, _ := subtotal.Float64()
	return f
}

// OrderCode builds the order identifier: uppercased first rune of the
// customer name, the last four runes of the email, then the submission
// instant in epoch milliseconds. Two submissions within the same millisecond
// for like-prefixed customers can collide; at this scale that is accepted.
func OrderCode(name, email string, now time.Time) string {
	prefix := ""
	for _, r := range name {
		prefix = string(unicode.ToUpper(r))
		break
	}

	suffix := email
	if r := []rune(email); len(r) > 4 {
		suffix = string(r[len(r)-4:])
	}

	return prefix + suffix + strconv.FormatInt(now.UnixMilli(), 10)
}

// Finalizer prices, codes and persists a fully valid order.
type Finalizer struct {
	baseURL    string
	httpClient *http.Client

	now func() time.Time
}

func NewFinalizer(storeURL string) *Finalizer {
	return &Finalizer{
		baseURL: storeURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		now: time.Now,
	}
}

// Submit checks all three validity sources at the moment of submission,
// then finalizes and persists the order with a single write. On success the
// stored order, as echoed by the store, is returned and the form should be
// discarded. On persistence failure the form keeps its state for a manual
// resubmit.
func (f *Finalizer) Submit(ctx context.Context, form *orderform.Form) (*transport.Order, error) {
	l := logging.FromContext(ctx).With("component", "checkout")

	if err := form.Validate().Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotSubmittable, err)
	}
	if !form.OrderLimitOK() {
		return nil, fmt.Errorf("%w: %w", ErrNotSubmittable, ratelimit.ErrOrderLimitExceeded)
	}

	cust := form.Customer()
	lines := form.Lines()
	now := f.now().UTC()

	order := transport.Order{
		CustomerName: cust.Name,
		Email:        cust.Email,
		Lines:        make([]transport.OrderLine, len(lines)),
		Total:        ComputeTotal(lines),
		OrderCode:    OrderCode(cust.Name, cust.Email, now),
		Timestamp:    now,
	}
	for i, ln := range lines {
		order.Lines[i] = transport.OrderLine{
			ProductID: ln.Product,
			Quantity:  ln.Quantity,
			Price:     ln.Price,
			Stock:     ln.Stock,
		}
	}

	stored, err := f.persist(ctx, order)
	if err != nil {
		l.Error("order_persist_failed", "order_code", order.OrderCode, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	l.Info("order_persisted", "order_code", stored.OrderCode, "total", stored.Total)
	return stored, nil
}

func (f *Finalizer) persist(ctx context.Context, order transport.Order) (*transport.Order, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store rejected order with status: %d", resp.StatusCode)
	}

	var stored transport.Order
	if err := json.NewDecoder(resp.Body).Decode(&stored); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &stored, nil
}
