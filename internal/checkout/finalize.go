package checkout

import (
	"context"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// Finalize commits the order: completion timestamp, inventory, locked optional
// adjustments, confirmation notice and audit record. Runs once.
func (e *Engine) Finalize(ctx context.Context, o *model.Order) (model.Notice, error) {
	if err := checkFinalizable(o); err != nil {
		return model.Notice{}, err
	}

	now := e.now()
	o.CompletedAt = &now

	if e.settings.TrackInventoryLevels {
		if err := e.inventory.AssignOpeningInventory(ctx, o); err != nil {
			return model.Notice{}, fmt.Errorf("assign opening inventory: %w", err)
		}
	}

	for i := range o.Adjustments {
		if o.Adjustments[i].Optional() {
			o.Adjustments[i].Locked = true
		}
	}

	notice, err := e.newNotice(o, model.NoticeConfirmation)
	if err != nil {
		return model.Notice{}, err
	}

	o.StateEvents = append(o.StateEvents, model.StateEvent{
		ID:            e.newID(),
		Name:          model.StateEventOrder,
		PreviousState: string(model.OrderStateCart),
		NextState:     string(model.OrderStateComplete),
		UserID:        o.UserID,
		CreatedAt:     now,
	})
	return notice, nil
}

// checkFinalizable holds the preconditions of Finalize so they can be checked
// before any payment is captured.
func checkFinalizable(o *model.Order) error {
	switch {
	case o.Completed():
		return &domainErrors.InvariantViolation{Op: "finalize", Detail: "order already completed"}
	case len(o.LineItems) == 0:
		return &domainErrors.InvariantViolation{Op: "finalize", Detail: "order has no line items"}
	case strings.TrimSpace(o.Email) == "":
		return &domainErrors.InvariantViolation{Op: "finalize", Detail: "order " + o.Number + " has no email"}
	case !unitsMatchCart(o):
		return &domainErrors.InvariantViolation{Op: "finalize", Detail: "inventory units do not match line items"}
	}
	return nil
}

// unitsMatchCart reports whether the live inventory units cover every line
// item quantity exactly.
func unitsMatchCart(o *model.Order) bool {
	pending := make(map[int64]int, len(o.LineItems))
	for _, li := range o.LineItems {
		pending[li.VariantID] += li.Quantity
	}
	for _, u := range o.InventoryUnits {
		if u.State != model.UnitReturned {
			pending[u.VariantID]--
		}
	}
	for _, n := range pending {
		if n != 0 {
			return false
		}
	}
	return true
}

func (e *Engine) newNotice(o *model.Order, kind model.NoticeKind) (model.Notice, error) {
	if strings.TrimSpace(o.Email) == "" {
		return model.Notice{}, &domainErrors.InvariantViolation{Op: string(kind) + " notice", Detail: "order " + o.Number + " has no email"}
	}
	return model.Notice{
		ID:          e.newID(),
		Kind:        kind,
		OrderNumber: o.Number,
		Email:       o.Email,
		Total:       o.Total,
		ItemCount:   o.ItemCount(),
		CreatedAt:   e.now(),
	}, nil
}
