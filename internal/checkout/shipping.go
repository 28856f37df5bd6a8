package checkout

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// RateOption is a priced shipping method offered for an order.
type RateOption struct {
	ID     int64
	Name   string
	Cost   decimal.Decimal
	Method model.ShippingMethod
}

// RateHash prices every method available for the ship address, cheapest first.
func (e *Engine) RateHash(ctx context.Context, o *model.Order) ([]RateOption, error) {
	if o.ShipAddress == nil {
		return nil, nil
	}
	methods, err := e.shipping.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shipping methods: %w", err)
	}

	var rates []RateOption
	for _, m := range methods {
		if !m.Zone.Include(o.ShipAddress) {
			continue
		}
		cost, ok := ShippingCost(m.Calculator, o)
		if !ok {
			continue
		}
		rates = append(rates, RateOption{ID: m.ID, Name: m.Name, Cost: cost, Method: m})
	}
	sort.SliceStable(rates, func(i, j int) bool {
		if !rates[i].Cost.Equal(rates[j].Cost) {
			return rates[i].Cost.LessThan(rates[j].Cost)
		}
		return rates[i].ID < rates[j].ID
	})
	return rates, nil
}

// Backordered reports whether any unit waits on stock. Always false without tracking.
func (e *Engine) Backordered(o *model.Order) bool {
	if !e.settings.TrackInventoryLevels {
		return false
	}
	for _, u := range o.InventoryUnits {
		if u.State == model.UnitBackordered {
			return true
		}
	}
	return false
}

// InsufficientStockLines lists line items whose quantity exceeds stock on hand.
func (e *Engine) InsufficientStockLines(ctx context.Context, o *model.Order) ([]model.LineItem, error) {
	if !e.settings.TrackInventoryLevels {
		return nil, nil
	}
	var short []model.LineItem
	for _, li := range o.LineItems {
		onHand, err := e.inventory.OnHand(ctx, li.VariantID)
		if err != nil {
			return nil, fmt.Errorf("stock for variant %d: %w", li.VariantID, err)
		}
		if onHand < li.Quantity {
			short = append(short, li)
		}
	}
	return short, nil
}

// ResetShipments discards shipments and their units and shipping charge once
// the cart of an uncompleted order changed. An order past delivery returns
// there so the next advance rebuilds shipments from the current line items.
func (e *Engine) ResetShipments(o *model.Order) bool {
	if o.Completed() || len(o.Shipments) == 0 {
		return false
	}
	o.Shipments = nil
	o.InventoryUnits = nil
	kept := o.Adjustments[:0]
	for _, a := range o.Adjustments {
		if a.OriginatorType != model.OriginatorShippingMethod {
			kept = append(kept, a)
		}
	}
	o.Adjustments = kept
	if o.State == model.OrderStatePayment || o.State == model.OrderStateConfirm {
		e.transition(o, model.OrderStateDelivery)
	}
	updateTotals(o)
	return true
}

// CreateShipment builds inventory units and one shipment per stock location,
// then charges the chosen method. It does nothing when shipments exist.
func (e *Engine) CreateShipment(ctx context.Context, o *model.Order, method RateOption) error {
	if len(o.Shipments) > 0 {
		return nil
	}

	available := make(map[int64]int)
	var locations []string
	byLocation := make(map[string][]model.InventoryUnit)
	for _, li := range o.LineItems {
		if _, seen := available[li.VariantID]; !seen && e.settings.TrackInventoryLevels {
			onHand, err := e.inventory.OnHand(ctx, li.VariantID)
			if err != nil {
				return fmt.Errorf("stock for variant %d: %w", li.VariantID, err)
			}
			available[li.VariantID] = onHand
		}
		if _, ok := byLocation[li.StockLocation]; !ok {
			locations = append(locations, li.StockLocation)
		}
		for i := 0; i < li.Quantity; i++ {
			state := model.UnitOnHand
			if e.settings.TrackInventoryLevels {
				if available[li.VariantID] > 0 {
					available[li.VariantID]--
				} else {
					state = model.UnitBackordered
				}
			}
			byLocation[li.StockLocation] = append(byLocation[li.StockLocation], model.InventoryUnit{
				ID:            e.newID(),
				VariantID:     li.VariantID,
				State:         state,
				StockLocation: li.StockLocation,
			})
		}
	}

	for _, loc := range locations {
		shipment := model.Shipment{
			ID:               e.newID(),
			Number:           model.GenerateNumber("H", 11),
			State:            model.ShipmentReady,
			ShippingMethodID: method.ID,
			StockLocation:    loc,
		}
		for _, u := range byLocation[loc] {
			u.ShipmentID = shipment.ID
			if u.State == model.UnitBackordered {
				shipment.State = model.ShipmentPending
			}
			o.InventoryUnits = append(o.InventoryUnits, u)
		}
		o.Shipments = append(o.Shipments, shipment)
	}
	if len(o.Shipments) > 0 {
		o.Shipments[0].Cost = method.Cost
	}

	o.ShippingMethodID = method.ID
	o.Adjustments = append(o.Adjustments, model.Adjustment{
		ID:             e.newID(),
		Amount:         method.Cost,
		Label:          method.Name,
		OriginatorType: model.OriginatorShippingMethod,
		OriginatorID:   method.ID,
		Eligible:       true,
		Mandatory:      true,
		CreatedAt:      e.now(),
	})
	updateTotals(o)
	return nil
}
