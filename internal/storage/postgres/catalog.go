package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type variantRepository struct {
	q querier
}

func (r *variantRepository) Get(ctx context.Context, id int64) (*model.Variant, error) {
	const query = `SELECT id, sku, name, product_name, price, tax_category_id, stock_location, count_on_hand
                   FROM variants WHERE id=$1`
	var v model.Variant
	err := r.q.QueryRow(ctx, query, id).Scan(&v.ID, &v.SKU, &v.Name, &v.ProductName, &v.Price,
		&v.TaxCategoryID, &v.StockLocation, &v.CountOnHand)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

type stockRepository struct {
	q querier
}

func (r *stockRepository) OnHand(ctx context.Context, variantID int64) (int, error) {
	const query = `SELECT count_on_hand FROM variants WHERE id=$1`
	var n int
	if err := r.q.QueryRow(ctx, query, variantID).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrNotFound
		}
		return 0, err
	}
	return n, nil
}

func (r *stockRepository) Adjust(ctx context.Context, variantID int64, delta int) (int, error) {
	const query = `UPDATE variants SET count_on_hand = count_on_hand + $2 WHERE id=$1 RETURNING count_on_hand`
	var n int
	if err := r.q.QueryRow(ctx, query, variantID, delta).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrNotFound
		}
		return 0, err
	}
	return n, nil
}

const zoneColumns = `z.id, z.name, z.country_ids, z.state_ids`

func decodeCalculator(raw []byte) (model.CalculatorSpec, error) {
	var spec model.CalculatorSpec
	if len(raw) == 0 {
		return spec, nil
	}
	if err := json.Unmarshal(raw, &spec); err != nil {
		return spec, fmt.Errorf("decode calculator: %w", err)
	}
	return spec, nil
}

type taxRateRepository struct {
	q querier
}

const selectTaxRates = `SELECT t.id, t.amount, t.tax_category_id, t.calculator, t.description, ` + zoneColumns + `
                        FROM tax_rates t JOIN zones z ON z.id = t.zone_id`

func scanTaxRate(row pgx.Row) (model.TaxRate, error) {
	var (
		rate model.TaxRate
		calc []byte
	)
	err := row.Scan(&rate.ID, &rate.Amount, &rate.TaxCategoryID, &calc, &rate.Description,
		&rate.Zone.ID, &rate.Zone.Name, &rate.Zone.CountryIDs, &rate.Zone.StateIDs)
	if err != nil {
		return rate, err
	}
	rate.Calculator, err = decodeCalculator(calc)
	return rate, err
}

func (r *taxRateRepository) All(ctx context.Context) ([]model.TaxRate, error) {
	rows, err := r.q.Query(ctx, selectTaxRates+` ORDER BY t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.TaxRate
	for rows.Next() {
		rate, err := scanTaxRate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *taxRateRepository) Match(ctx context.Context, addr *model.Address) ([]model.TaxRate, error) {
	if addr == nil {
		return nil, nil
	}
	rates, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return model.MatchTaxRates(rates, addr), nil
}

func (r *taxRateRepository) Get(ctx context.Context, id int64) (*model.TaxRate, error) {
	rate, err := scanTaxRate(r.q.QueryRow(ctx, selectTaxRates+` WHERE t.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &rate, nil
}

type shippingMethodRepository struct {
	q querier
}

const selectShippingMethods = `SELECT s.id, s.name, s.calculator, ` + zoneColumns + `
                               FROM shipping_methods s JOIN zones z ON z.id = s.zone_id`

func scanShippingMethod(row pgx.Row) (model.ShippingMethod, error) {
	var (
		m    model.ShippingMethod
		calc []byte
	)
	err := row.Scan(&m.ID, &m.Name, &calc, &m.Zone.ID, &m.Zone.Name, &m.Zone.CountryIDs, &m.Zone.StateIDs)
	if err != nil {
		return m, err
	}
	m.Calculator, err = decodeCalculator(calc)
	return m, err
}

func (r *shippingMethodRepository) All(ctx context.Context) ([]model.ShippingMethod, error) {
	rows, err := r.q.Query(ctx, selectShippingMethods+` ORDER BY s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ShippingMethod
	for rows.Next() {
		m, err := scanShippingMethod(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *shippingMethodRepository) Get(ctx context.Context, id int64) (*model.ShippingMethod, error) {
	m, err := scanShippingMethod(r.q.QueryRow(ctx, selectShippingMethods+` WHERE s.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

type paymentMethodRepository struct {
	q querier
}

const selectPaymentMethods = `SELECT p.id, p.name, p.provider, p.active, p.supports_profiles,
                              z.id, z.name, z.country_ids, z.state_ids
                              FROM payment_methods p LEFT JOIN zones z ON z.id = p.zone_id`

func scanPaymentMethod(row pgx.Row) (model.PaymentMethod, error) {
	var (
		m          model.PaymentMethod
		zoneID     *int64
		zoneName   *string
		countryIDs []int64
		stateIDs   []int64
	)
	err := row.Scan(&m.ID, &m.Name, &m.Provider, &m.Active, &m.SupportsProfiles,
		&zoneID, &zoneName, &countryIDs, &stateIDs)
	if err != nil {
		return m, err
	}
	if zoneID != nil {
		m.ZoneID = *zoneID
		z := model.Zone{ID: *zoneID, CountryIDs: countryIDs, StateIDs: stateIDs}
		if zoneName != nil {
			z.Name = *zoneName
		}
		m.Zone = &z
	}
	return m, nil
}

func (r *paymentMethodRepository) All(ctx context.Context) ([]model.PaymentMethod, error) {
	rows, err := r.q.Query(ctx, selectPaymentMethods+` ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PaymentMethod
	for rows.Next() {
		m, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *paymentMethodRepository) Get(ctx context.Context, id int64) (*model.PaymentMethod, error) {
	m, err := scanPaymentMethod(r.q.QueryRow(ctx, selectPaymentMethods+` WHERE p.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
