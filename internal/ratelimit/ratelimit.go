package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avdeenko/orderdesk/internal/logging"
	"github.com/avdeenko/orderdesk/internal/transport"
)

var ErrOrderLimitExceeded = errors.New("order limit exceeded")

// DefaultLimit is the number of orders within the lookback window at which
// submission is rejected. The comparison is "count >= limit": earlier
// revisions of this rule disagreed between > and >=, so both the threshold
// and the operator live here rather than inline at the call site.
const (
	DefaultLimit  = 3
	DefaultWindow = 24 * time.Hour
)

// Checker queries order history for an email and rejects when recent volume
// meets the limit. Remote trouble of any kind passes the check (fail-open):
// availability wins over strictness here.
type Checker struct {
	baseURL    string
	httpClient *http.Client

	Limit  int
	Window time.Duration

	now func() time.Time
}

func NewChecker(storeURL string) *Checker {
	return &Checker{
		baseURL: storeURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		Limit:  DefaultLimit,
		Window: DefaultWindow,
		now:    time.Now,
	}
}

// Check resolves nil when the order limit is not hit. An empty email passes
// immediately; its emptiness is the structural validator's problem.
func (c *Checker) Check(ctx context.Context, email string) error {
	if email == "" {
		return nil
	}

	l := logging.FromContext(ctx).With("component", "ratelimit", "email", email)

	records, err := c.fetchHistory(ctx, email)
	if err != nil {
		l.Warn("order_history_fetch_failed", "reason", "passing check (fail-open)", "error", err)
		return nil
	}

	windowStart := c.now().Add(-c.Window)
	recent := 0
	for _, r := range records {
		if r.Timestamp.After(windowStart) {
			recent++
		}
	}

	if recent >= c.Limit {
		l.Info("order_limit_hit", "recent", recent, "limit", c.Limit)
		return fmt.Errorf("%w: %d orders in the last %s", ErrOrderLimitExceeded, recent, c.Window)
	}
	return nil
}

func (c *Checker) fetchHistory(ctx context.Context, email string) ([]transport.OrderHistoryRecord, error) {
	u := c.baseURL + "/orders?email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history fetch failed with status: %d", resp.StatusCode)
	}

	var records []transport.OrderHistoryRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return records, nil
}
