package repo

import (
	"context"

	"github.com/avdeenko/orderdesk/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	// Items ride along in the same create so an order is never persisted
	// half-written.
	if err := r.DB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Order("timestamp DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrdersByEmail serves the history view behind the rate-limit check.
func (r *GormRepo) ListOrdersByEmail(ctx context.Context, email string) ([]models.Order, error) {
	var orders []models.Order
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("email = ?", email)
	if err := q.Order("timestamp DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// SearchOrders is the LIKE-based fallback used when elasticsearch is not
// configured or unavailable.
func (r *GormRepo) SearchOrders(ctx context.Context, term string) ([]models.Order, error) {
	like := "%" + term + "%"
	var orders []models.Order
	q := r.DB.WithContext(ctx).Preload("Items").
		Where("customer_name LIKE ? OR email LIKE ?", like, like)
	if err := q.Order("timestamp DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
