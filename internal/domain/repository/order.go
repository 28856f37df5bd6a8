package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderRepository persists the order aggregate with all its children.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	NumberExists(ctx context.Context, number string) (bool, error)
	// GetForUpdate loads the aggregate and holds a row lock until the transaction ends.
	GetForUpdate(ctx context.Context, number string) (*model.Order, error)
	Get(ctx context.Context, number string) (*model.Order, error)
	Save(ctx context.Context, order *model.Order) error
	// SelectBackordered returns locked completed orders waiting on stock, skipping rows held by others.
	SelectBackordered(ctx context.Context, limit int) ([]string, error)
}
