package repo

import (
	"context"

	"github.com/avdeenko/orderdesk/internal/models"
)

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// SeedProducts inserts the given products only when the table is empty, so
// a restarted server does not duplicate the seed set.
func (r *GormRepo) SeedProducts(ctx context.Context, products []models.Product) error {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return err
	}
	if total > 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&products).Error
}
