package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type orderRepository struct {
	q querier
}

const selectOrder = `SELECT o.id, o.number, o.state, o.payment_state, o.shipment_state, o.user_id, o.email,
       o.item_total, o.adjustment_total, o.payment_total, o.total, o.bill_address, o.ship_address,
       o.shipping_method_id, o.guest_token_hash, o.completed_at, o.created_at, o.updated_at,
       u.email, u.anonymous
FROM orders o JOIN users u ON u.id = o.user_id
WHERE o.number=$1`

func encodeAddress(a *model.Address) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func decodeAddress(raw []byte) (*model.Address, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var a model.Address
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	return &a, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (number, state, user_id, email, guest_token_hash, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING id`
	err := r.q.QueryRow(ctx, query, order.Number, order.State, order.UserID, order.Email,
		order.GuestTokenHash, order.CreatedAt, order.UpdatedAt).Scan(&order.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return r.saveChildren(ctx, order)
}

func (r *orderRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM orders WHERE number=$1)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, number).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *orderRepository) Get(ctx context.Context, number string) (*model.Order, error) {
	return r.load(ctx, selectOrder, number)
}

func (r *orderRepository) GetForUpdate(ctx context.Context, number string) (*model.Order, error) {
	return r.load(ctx, selectOrder+` FOR UPDATE OF o`, number)
}

func (r *orderRepository) load(ctx context.Context, query, number string) (*model.Order, error) {
	var (
		o          model.Order
		u          model.User
		bill, ship []byte
	)
	err := r.q.QueryRow(ctx, query, number).Scan(
		&o.ID, &o.Number, &o.State, &o.PaymentState, &o.ShipmentState, &o.UserID, &o.Email,
		&o.ItemTotal, &o.AdjustmentTotal, &o.PaymentTotal, &o.Total, &bill, &ship,
		&o.ShippingMethodID, &o.GuestTokenHash, &o.CompletedAt, &o.CreatedAt, &o.UpdatedAt,
		&u.Email, &u.Anonymous,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	u.ID = o.UserID
	o.User = &u
	if o.BillAddress, err = decodeAddress(bill); err != nil {
		return nil, err
	}
	if o.ShipAddress, err = decodeAddress(ship); err != nil {
		return nil, err
	}

	loaders := []func(context.Context, *model.Order) error{
		r.loadLineItems,
		r.loadPayments,
		r.loadShipments,
		r.loadAdjustments,
		r.loadInventoryUnits,
		r.loadStateEvents,
	}
	for _, load := range loaders {
		if err := load(ctx, &o); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

func (r *orderRepository) loadLineItems(ctx context.Context, o *model.Order) error {
	const query = `SELECT id, variant_id, quantity, price, tax_category_id, stock_location
                   FROM line_items WHERE order_id=$1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, o.ID)
	if err != nil {
		return fmt.Errorf("load line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var li model.LineItem
		if err := rows.Scan(&li.ID, &li.VariantID, &li.Quantity, &li.Price, &li.TaxCategoryID, &li.StockLocation); err != nil {
			return err
		}
		o.LineItems = append(o.LineItems, li)
	}
	return rows.Err()
}

func (r *orderRepository) loadPayments(ctx context.Context, o *model.Order) error {
	const query = `SELECT id, amount, state, payment_method_id, source, response_code, created_at
                   FROM payments WHERE order_id=$1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, o.ID)
	if err != nil {
		return fmt.Errorf("load payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p      model.Payment
			source []byte
		)
		if err := rows.Scan(&p.ID, &p.Amount, &p.State, &p.PaymentMethodID, &source, &p.ResponseCode, &p.CreatedAt); err != nil {
			return err
		}
		if len(source) > 0 {
			if err := json.Unmarshal(source, &p.Source); err != nil {
				return fmt.Errorf("decode payment source: %w", err)
			}
		}
		o.Payments = append(o.Payments, p)
	}
	return rows.Err()
}

func (r *orderRepository) loadShipments(ctx context.Context, o *model.Order) error {
	const query = `SELECT id, number, state, shipping_method_id, cost, stock_location, shipped_at
                   FROM shipments WHERE order_id=$1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, o.ID)
	if err != nil {
		return fmt.Errorf("load shipments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s model.Shipment
		if err := rows.Scan(&s.ID, &s.Number, &s.State, &s.ShippingMethodID, &s.Cost, &s.StockLocation, &s.ShippedAt); err != nil {
			return err
		}
		o.Shipments = append(o.Shipments, s)
	}
	return rows.Err()
}

func (r *orderRepository) loadAdjustments(ctx context.Context, o *model.Order) error {
	const query = `SELECT id, amount, label, originator_type, originator_id, eligible, mandatory, locked, created_at
                   FROM adjustments WHERE order_id=$1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, o.ID)
	if err != nil {
		return fmt.Errorf("load adjustments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a model.Adjustment
		if err := rows.Scan(&a.ID, &a.Amount, &a.Label, &a.OriginatorType, &a.OriginatorID,
			&a.Eligible, &a.Mandatory, &a.Locked, &a.CreatedAt); err != nil {
			return err
		}
		o.Adjustments = append(o.Adjustments, a)
	}
	return rows.Err()
}

func (r *orderRepository) loadInventoryUnits(ctx context.Context, o *model.Order) error {
	const query = `SELECT id, variant_id, shipment_id, state, stock_location
                   FROM inventory_units WHERE order_id=$1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, o.ID)
	if err != nil {
		return fmt.Errorf("load inventory units: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u model.InventoryUnit
		if err := rows.Scan(&u.ID, &u.VariantID, &u.ShipmentID, &u.State, &u.StockLocation); err != nil {
			return err
		}
		o.InventoryUnits = append(o.InventoryUnits, u)
	}
	return rows.Err()
}

func (r *orderRepository) loadStateEvents(ctx context.Context, o *model.Order) error {
	const query = `SELECT id, name, previous_state, next_state, user_id, created_at
                   FROM state_events WHERE order_id=$1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, o.ID)
	if err != nil {
		return fmt.Errorf("load state events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e model.StateEvent
		if err := rows.Scan(&e.ID, &e.Name, &e.PreviousState, &e.NextState, &e.UserID, &e.CreatedAt); err != nil {
			return err
		}
		o.StateEvents = append(o.StateEvents, e)
	}
	return rows.Err()
}

// Save writes the order row and reconciles every child table with the aggregate.
func (r *orderRepository) Save(ctx context.Context, o *model.Order) error {
	bill, err := encodeAddress(o.BillAddress)
	if err != nil {
		return err
	}
	ship, err := encodeAddress(o.ShipAddress)
	if err != nil {
		return err
	}

	const query = `UPDATE orders SET state=$2, payment_state=$3, shipment_state=$4, user_id=$5, email=$6,
                   item_total=$7, adjustment_total=$8, payment_total=$9, total=$10,
                   bill_address=$11, ship_address=$12, shipping_method_id=$13, guest_token_hash=$14,
                   completed_at=$15, updated_at=$16
                   WHERE id=$1`
	tag, err := r.q.Exec(ctx, query, o.ID, o.State, o.PaymentState, o.ShipmentState, o.UserID, o.Email,
		o.ItemTotal, o.AdjustmentTotal, o.PaymentTotal, o.Total,
		bill, ship, o.ShippingMethodID, o.GuestTokenHash,
		o.CompletedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return r.saveChildren(ctx, o)
}

func (r *orderRepository) saveChildren(ctx context.Context, o *model.Order) error {
	savers := []func(context.Context, *model.Order) error{
		r.saveLineItems,
		r.savePayments,
		r.saveShipments,
		r.saveAdjustments,
		r.saveInventoryUnits,
		r.saveStateEvents,
	}
	for _, save := range savers {
		if err := save(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

// prune deletes rows of table owned by the order that are no longer in ids.
func (r *orderRepository) prune(ctx context.Context, table string, orderID int64, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	query := `DELETE FROM ` + table + ` WHERE order_id=$1 AND NOT (id = ANY($2))`
	if _, err := r.q.Exec(ctx, query, orderID, ids); err != nil {
		return fmt.Errorf("prune %s: %w", table, err)
	}
	return nil
}

func (r *orderRepository) saveLineItems(ctx context.Context, o *model.Order) error {
	const query = `INSERT INTO line_items (id, order_id, position, variant_id, quantity, price, tax_category_id, stock_location)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                   ON CONFLICT (id) DO UPDATE SET position=EXCLUDED.position, quantity=EXCLUDED.quantity,
                   price=EXCLUDED.price, tax_category_id=EXCLUDED.tax_category_id`
	ids := make([]string, 0, len(o.LineItems))
	for i, li := range o.LineItems {
		ids = append(ids, li.ID)
		if _, err := r.q.Exec(ctx, query, li.ID, o.ID, i, li.VariantID, li.Quantity, li.Price,
			li.TaxCategoryID, li.StockLocation); err != nil {
			return fmt.Errorf("save line item: %w", err)
		}
	}
	return r.prune(ctx, "line_items", o.ID, ids)
}

func (r *orderRepository) savePayments(ctx context.Context, o *model.Order) error {
	const query = `INSERT INTO payments (id, order_id, position, amount, state, payment_method_id, source, response_code, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   ON CONFLICT (id) DO UPDATE SET position=EXCLUDED.position, amount=EXCLUDED.amount,
                   state=EXCLUDED.state, response_code=EXCLUDED.response_code`
	ids := make([]string, 0, len(o.Payments))
	for i, p := range o.Payments {
		ids = append(ids, p.ID)
		source, err := json.Marshal(p.Source)
		if err != nil {
			return fmt.Errorf("encode payment source: %w", err)
		}
		if _, err := r.q.Exec(ctx, query, p.ID, o.ID, i, p.Amount, p.State, p.PaymentMethodID,
			source, p.ResponseCode, p.CreatedAt); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}
	}
	return r.prune(ctx, "payments", o.ID, ids)
}

func (r *orderRepository) saveShipments(ctx context.Context, o *model.Order) error {
	const query = `INSERT INTO shipments (id, order_id, position, number, state, shipping_method_id, cost, stock_location, shipped_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   ON CONFLICT (id) DO UPDATE SET position=EXCLUDED.position, state=EXCLUDED.state,
                   shipping_method_id=EXCLUDED.shipping_method_id, cost=EXCLUDED.cost, shipped_at=EXCLUDED.shipped_at`
	ids := make([]string, 0, len(o.Shipments))
	for i, s := range o.Shipments {
		ids = append(ids, s.ID)
		if _, err := r.q.Exec(ctx, query, s.ID, o.ID, i, s.Number, s.State, s.ShippingMethodID,
			s.Cost, s.StockLocation, s.ShippedAt); err != nil {
			return fmt.Errorf("save shipment: %w", err)
		}
	}
	return r.prune(ctx, "shipments", o.ID, ids)
}

func (r *orderRepository) saveAdjustments(ctx context.Context, o *model.Order) error {
	const query = `INSERT INTO adjustments (id, order_id, position, amount, label, originator_type, originator_id,
                   eligible, mandatory, locked, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
                   ON CONFLICT (id) DO UPDATE SET position=EXCLUDED.position, amount=EXCLUDED.amount,
                   label=EXCLUDED.label, eligible=EXCLUDED.eligible, mandatory=EXCLUDED.mandatory,
                   locked=EXCLUDED.locked
                   WHERE NOT adjustments.locked`
	ids := make([]string, 0, len(o.Adjustments))
	for i, a := range o.Adjustments {
		ids = append(ids, a.ID)
		if _, err := r.q.Exec(ctx, query, a.ID, o.ID, i, a.Amount, a.Label, a.OriginatorType, a.OriginatorID,
			a.Eligible, a.Mandatory, a.Locked, a.CreatedAt); err != nil {
			return fmt.Errorf("save adjustment: %w", err)
		}
	}
	return r.prune(ctx, "adjustments", o.ID, ids)
}

func (r *orderRepository) saveInventoryUnits(ctx context.Context, o *model.Order) error {
	const query = `INSERT INTO inventory_units (id, order_id, position, variant_id, shipment_id, state, stock_location)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   ON CONFLICT (id) DO UPDATE SET position=EXCLUDED.position, shipment_id=EXCLUDED.shipment_id,
                   state=EXCLUDED.state`
	ids := make([]string, 0, len(o.InventoryUnits))
	for i, u := range o.InventoryUnits {
		ids = append(ids, u.ID)
		if _, err := r.q.Exec(ctx, query, u.ID, o.ID, i, u.VariantID, u.ShipmentID, u.State, u.StockLocation); err != nil {
			return fmt.Errorf("save inventory unit: %w", err)
		}
	}
	return r.prune(ctx, "inventory_units", o.ID, ids)
}

// saveStateEvents appends events; the audit trail is never rewritten.
func (r *orderRepository) saveStateEvents(ctx context.Context, o *model.Order) error {
	const query = `INSERT INTO state_events (id, order_id, name, previous_state, next_state, user_id, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   ON CONFLICT (id) DO NOTHING`
	for _, e := range o.StateEvents {
		if _, err := r.q.Exec(ctx, query, e.ID, o.ID, e.Name, e.PreviousState, e.NextState, e.UserID, e.CreatedAt); err != nil {
			return fmt.Errorf("save state event: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) SelectBackordered(ctx context.Context, limit int) ([]string, error) {
	const query = `SELECT number FROM orders
                   WHERE completed_at IS NOT NULL AND state = 'complete' AND shipment_state = 'backorder'
                   ORDER BY completed_at
                   LIMIT $1
                   FOR UPDATE SKIP LOCKED`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return numbers, nil
}
