package usecase

import (
	"context"

	"github.com/polkiloo/storefront/internal/checkout"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// BackorderedOrders lists completed orders still waiting on stock.
func (u *OrderUseCase) BackorderedOrders(ctx context.Context, limit int) ([]string, error) {
	var numbers []string
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context, tx repository.Factory) error {
		var err error
		numbers, err = tx.Orders().SelectBackordered(ctx, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

// FulfillBackorders sells backordered units of the order whose stock arrived
// and returns how many were filled.
func (u *OrderUseCase) FulfillBackorders(ctx context.Context, number string) (int, error) {
	var filled int
	_, err := u.mutate(ctx, "FulfillBackorders", nil, number, func(ctx context.Context, _ repository.Factory, eng *checkout.Engine, o *model.Order) error {
		var err error
		filled, err = eng.FillBackorders(ctx, o)
		return err
	})
	if err != nil {
		return 0, err
	}
	return filled, nil
}
