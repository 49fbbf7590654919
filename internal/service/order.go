package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/avdeenko/orderdesk/internal/logging"
	"github.com/avdeenko/orderdesk/internal/models"
	"github.com/avdeenko/orderdesk/internal/orderform"
	"github.com/avdeenko/orderdesk/internal/repo"
	"github.com/avdeenko/orderdesk/internal/transport"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrConflict   = errors.New("conflict")   // 409
)

// EventPublisher pushes domain events after successful writes.
type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, event any) error
}

// OrderIndexer makes a persisted order findable by the search endpoint.
type OrderIndexer interface {
	IndexOrder(ctx context.Context, order models.Order) error
}

// OrderService enforces the order invariants a second time on the server:
// the entry engine already validated the form, but the store does not trust
// its callers.
type OrderService struct {
	Repo     *repo.GormRepo
	Producer EventPublisher
	Indexer  OrderIndexer
}

func (s *OrderService) CreateOrder(ctx context.Context, req transport.Order) (*models.Order, error) {
	l := logging.FromContext(ctx).With("service", "order")

	if req.CustomerName == "" {
		return nil, fmt.Errorf("%w: customerName required", ErrValidation)
	}
	if req.Email == "" {
		return nil, fmt.Errorf("%w: email required", ErrValidation)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: products required", ErrValidation)
	}

	totalQty := 0
	seen := make(map[string]bool, len(req.Lines))
	items := make([]models.OrderItem, 0, len(req.Lines))
	for i := range req.Lines {
		ln := req.Lines[i]
		if ln.ProductID == "" {
			return nil, fmt.Errorf("%w: productId required", ErrValidation)
		}
		if ln.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
		}
		if ln.Quantity > ln.Stock {
			return nil, fmt.Errorf("%w: quantity exceeds stock for %s", ErrValidation, ln.ProductID)
		}
		if seen[ln.ProductID] {
			return nil, fmt.Errorf("%w: duplicate product %s", ErrValidation, ln.ProductID)
		}
		seen[ln.ProductID] = true
		totalQty += ln.Quantity

		items = append(items, models.OrderItem{
			ProductID: ln.ProductID,
			Quantity:  ln.Quantity,
			Price:     ln.Price,
			Stock:     ln.Stock,
		})
	}
	if totalQty > orderform.MaxTotalQuantity {
		return nil, fmt.Errorf("%w: total quantity must be <= %d", ErrValidation, orderform.MaxTotalQuantity)
	}

	order := &models.Order{
		ID:           uuid.New().String(),
		CustomerName: req.CustomerName,
		Email:        req.Email,
		OrderCode:    req.OrderCode,
		Total:        req.Total,
		Timestamp:    req.Timestamp.UTC(),
		Items:        items,
	}

	stored, err := s.Repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	// Event publishing and indexing are best-effort: the order is already
	// durable, so trouble here is logged and not surfaced.
	if s.Producer != nil {
		event := map[string]any{
			"type":       "order_created",
			"orderID":    stored.ID,
			"orderCode":  stored.OrderCode,
			"email":      stored.Email,
			"total":      stored.Total,
			"totalItems": len(stored.Items),
		}
		if err := s.Producer.PublishEvent(ctx, stored.ID, event); err != nil {
			l.Error("kafka_publish_failed", "orderID", stored.ID, "error", err)
		}
	}
	if s.Indexer != nil {
		if err := s.Indexer.IndexOrder(ctx, *stored); err != nil {
			l.Error("order_index_failed", "orderID", stored.ID, "error", err)
		}
	}

	return stored, nil
}
