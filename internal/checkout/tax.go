package checkout

import (
	"context"
	"fmt"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// RecomputeTax destroys unlocked tax adjustments and creates one per matching rate.
// Running it twice yields the same adjustments.
func (e *Engine) RecomputeTax(ctx context.Context, o *model.Order) error {
	kept := o.Adjustments[:0:0]
	for _, a := range o.Adjustments {
		if a.OriginatorType == model.OriginatorTaxRate && !a.Locked {
			continue
		}
		kept = append(kept, a)
	}

	rates, err := e.applicableRates(ctx, o)
	if err != nil {
		return err
	}

	now := e.now()
	for _, rate := range rates {
		if lockedTaxFor(kept, rate.ID) {
			continue
		}
		amount, ok := TaxAmount(rate, o)
		if !ok {
			continue
		}
		kept = append(kept, model.Adjustment{
			ID:             e.newID(),
			Amount:         amount,
			Label:          rate.Label(),
			OriginatorType: model.OriginatorTaxRate,
			OriginatorID:   rate.ID,
			Eligible:       true,
			Mandatory:      true,
			CreatedAt:      now,
		})
	}
	o.Adjustments = kept
	updateTotals(o)
	return nil
}

func (e *Engine) applicableRates(ctx context.Context, o *model.Order) ([]model.TaxRate, error) {
	addr := o.TaxAddress(e.settings.TaxUsingShipAddress)
	var matched []model.TaxRate
	if addr != nil {
		var err error
		matched, err = e.taxRates.Match(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("match tax rates: %w", err)
		}
	}
	if len(matched) > 0 || !e.settings.ShowPriceIncVAT {
		return matched, nil
	}

	all, err := e.taxRates.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tax rates: %w", err)
	}
	seen := make(map[int64]struct{}, len(matched))
	for _, r := range matched {
		seen[r.ID] = struct{}{}
	}
	for _, r := range all {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		if r.Zone.IncludesCountry(e.settings.DefaultCountryID) {
			seen[r.ID] = struct{}{}
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func lockedTaxFor(adjustments []model.Adjustment, rateID int64) bool {
	for _, a := range adjustments {
		if a.OriginatorType == model.OriginatorTaxRate && a.OriginatorID == rateID {
			return true
		}
	}
	return false
}
