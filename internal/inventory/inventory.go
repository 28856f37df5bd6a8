package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// Service allocates stock to orders through a stock repository.
type Service struct {
	stock  repository.StockRepository
	logger *slog.Logger
}

// New constructs inventory service bound to stock repository.
func New(stock repository.StockRepository, logger *slog.Logger) *Service {
	return &Service{stock: stock, logger: logger}
}

// OnHand returns current stock level for variant.
func (s *Service) OnHand(ctx context.Context, variantID int64) (int, error) {
	return s.stock.OnHand(ctx, variantID)
}

// AssignOpeningInventory sells units while stock lasts and backorders the rest.
func (s *Service) AssignOpeningInventory(ctx context.Context, order *model.Order) error {
	for i := range order.InventoryUnits {
		u := &order.InventoryUnits[i]
		if u.State != model.UnitOnHand && u.State != model.UnitBackordered {
			continue
		}
		sold, err := s.take(ctx, u.VariantID)
		if err != nil {
			return err
		}
		if sold {
			u.State = model.UnitSold
		} else {
			u.State = model.UnitBackordered
		}
	}
	return nil
}

// Restock returns sold units to stock. Backordered units never took stock.
func (s *Service) Restock(ctx context.Context, order *model.Order) error {
	for i := range order.InventoryUnits {
		u := &order.InventoryUnits[i]
		switch u.State {
		case model.UnitSold:
			if _, err := s.stock.Adjust(ctx, u.VariantID, 1); err != nil {
				return fmt.Errorf("restock variant %d: %w", u.VariantID, err)
			}
			u.State = model.UnitReturned
		case model.UnitBackordered, model.UnitOnHand:
			u.State = model.UnitReturned
		}
	}
	return nil
}

// FillBackorders sells backordered units for which stock is now available.
func (s *Service) FillBackorders(ctx context.Context, order *model.Order) (int, error) {
	filled := 0
	for i := range order.InventoryUnits {
		u := &order.InventoryUnits[i]
		if u.State != model.UnitBackordered {
			continue
		}
		sold, err := s.take(ctx, u.VariantID)
		if err != nil {
			return filled, err
		}
		if !sold {
			continue
		}
		u.State = model.UnitSold
		filled++
	}
	if filled > 0 {
		s.logger.InfoContext(ctx, "backorders filled", slog.String("order", order.Number), slog.Int("units", filled))
	}
	return filled, nil
}

func (s *Service) take(ctx context.Context, variantID int64) (bool, error) {
	onHand, err := s.stock.OnHand(ctx, variantID)
	if err != nil {
		return false, fmt.Errorf("stock for variant %d: %w", variantID, err)
	}
	if onHand <= 0 {
		return false, nil
	}
	if _, err := s.stock.Adjust(ctx, variantID, -1); err != nil {
		return false, fmt.Errorf("take variant %d: %w", variantID, err)
	}
	return true, nil
}
