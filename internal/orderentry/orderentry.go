// Package orderentry wires the entry-side clients against one store URL so
// a front end constructs the whole pipeline from configuration in one call.
package orderentry

import (
	"context"

	"github.com/avdeenko/orderdesk/internal/catalog"
	"github.com/avdeenko/orderdesk/internal/checkout"
	"github.com/avdeenko/orderdesk/internal/config"
	"github.com/avdeenko/orderdesk/internal/orderform"
	"github.com/avdeenko/orderdesk/internal/ratelimit"
	"github.com/avdeenko/orderdesk/internal/transport"
)

type Engine struct {
	Catalog   *catalog.Client
	Checker   *ratelimit.Checker
	Finalizer *checkout.Finalizer
}

// New builds the engine from configuration. STORE_URL points every client
// at the order store; ORDER_LIMIT, when positive, overrides the default
// rate-limit threshold.
func New(cfg config.Config) *Engine {
	checker := ratelimit.NewChecker(cfg.StoreURL)
	if cfg.OrderLimit > 0 {
		checker.Limit = cfg.OrderLimit
	}

	return &Engine{
		Catalog:   catalog.NewClient(cfg.StoreURL),
		Checker:   checker,
		Finalizer: checkout.NewFinalizer(cfg.StoreURL),
	}
}

// NewForm fetches a catalog snapshot and opens a form over it. The snapshot
// is per form; a store outage yields the seed catalog, not an error.
func (e *Engine) NewForm(ctx context.Context) *orderform.Form {
	return orderform.New(e.Catalog.Fetch(ctx), e.Checker)
}

// Submit finalizes and persists the form through the engine's store.
func (e *Engine) Submit(ctx context.Context, form *orderform.Form) (*transport.Order, error) {
	return e.Finalizer.Submit(ctx, form)
}
