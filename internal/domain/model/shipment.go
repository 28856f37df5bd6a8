package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentStatus is the state of a single shipment.
type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "pending"
	ShipmentReady     ShipmentStatus = "ready"
	ShipmentShipped   ShipmentStatus = "shipped"
	ShipmentBackorder ShipmentStatus = "backorder"
)

// Shipment groups inventory units leaving one stock location.
type Shipment struct {
	ID               string
	Number           string
	State            ShipmentStatus
	ShippingMethodID int64
	Cost             decimal.Decimal
	StockLocation    string
	ShippedAt        *time.Time
}

// Clone returns a copy of the shipment.
func (s Shipment) Clone() Shipment {
	if s.ShippedAt != nil {
		t := *s.ShippedAt
		s.ShippedAt = &t
	}
	return s
}

// InventoryUnitState is the allocation state of one unit of stock.
type InventoryUnitState string

const (
	UnitOnHand      InventoryUnitState = "on_hand"
	UnitBackordered InventoryUnitState = "backordered"
	UnitSold        InventoryUnitState = "sold"
	UnitShipped     InventoryUnitState = "shipped"
	UnitReturned    InventoryUnitState = "returned"
)

// InventoryUnit is one physical unit allocated to an order.
type InventoryUnit struct {
	ID            string
	VariantID     int64
	ShipmentID    string
	State         InventoryUnitState
	StockLocation string
}

// UnitsForShipment returns units belonging to the shipment.
func (o *Order) UnitsForShipment(shipmentID string) []InventoryUnit {
	var units []InventoryUnit
	for _, u := range o.InventoryUnits {
		if u.ShipmentID == shipmentID {
			units = append(units, u)
		}
	}
	return units
}
