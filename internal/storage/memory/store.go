// Package memory keeps the storefront data set in process memory.
//
// Transactions are serialized by a single mutex and roll back by restoring a
// snapshot taken when the transaction began.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// Catalog is the reference data a Store starts with.
type Catalog struct {
	Users           []model.User
	Variants        []model.Variant
	TaxRates        []model.TaxRate
	ShippingMethods []model.ShippingMethod
	PaymentMethods  []model.PaymentMethod
}

type state struct {
	users           map[int64]model.User
	orders          map[string]*model.Order
	variants        map[int64]model.Variant
	taxRates        []model.TaxRate
	shippingMethods []model.ShippingMethod
	paymentMethods  []model.PaymentMethod
	lastUserID      int64
	lastOrderID     int64
}

func (s *state) clone() *state {
	c := *s
	c.users = make(map[int64]model.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.orders = make(map[string]*model.Order, len(s.orders))
	for k, v := range s.orders {
		c.orders[k] = v.Clone()
	}
	c.variants = make(map[int64]model.Variant, len(s.variants))
	for k, v := range s.variants {
		c.variants[k] = v
	}
	return &c
}

// Store implements repository.Factory and repository.Transactor.
type Store struct {
	mu   sync.Mutex
	data *state
	now  func() time.Time
}

// New returns a store seeded with catalog.
func New(c Catalog) *Store {
	st := &state{
		users:           map[int64]model.User{},
		orders:          map[string]*model.Order{},
		variants:        map[int64]model.Variant{},
		taxRates:        append([]model.TaxRate(nil), c.TaxRates...),
		shippingMethods: append([]model.ShippingMethod(nil), c.ShippingMethods...),
		paymentMethods:  append([]model.PaymentMethod(nil), c.PaymentMethods...),
	}
	for _, u := range c.Users {
		st.users[u.ID] = u
		if u.ID > st.lastUserID {
			st.lastUserID = u.ID
		}
	}
	for _, v := range c.Variants {
		st.variants[v.ID] = v
	}
	return &Store{data: st, now: time.Now}
}

// WithinTransaction runs fn holding the store lock and restores the prior
// state when fn fails.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Factory) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			panic(p)
		}
		if err != nil {
			s.data = snapshot
		}
	}()

	return fn(ctx, factory{store: s, inTx: true})
}

// Order returns a copy of the stored order, for inspection in tests.
func (s *Store) Order(number string) (*model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.data.orders[number]
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// SetStock overwrites count on hand of a variant.
func (s *Store) SetStock(variantID int64, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.data.variants[variantID]
	v.CountOnHand = count
	s.data.variants[variantID] = v
}

func (s *Store) Users() repository.UserRepository { return factory{store: s}.Users() }

func (s *Store) Orders() repository.OrderRepository { return factory{store: s}.Orders() }

func (s *Store) Variants() repository.VariantRepository { return factory{store: s}.Variants() }

func (s *Store) Stock() repository.StockRepository { return factory{store: s}.Stock() }

func (s *Store) TaxRates() repository.TaxRateRepository { return factory{store: s}.TaxRates() }

func (s *Store) ShippingMethods() repository.ShippingMethodRepository {
	return factory{store: s}.ShippingMethods()
}

func (s *Store) PaymentMethods() repository.PaymentMethodRepository {
	return factory{store: s}.PaymentMethods()
}

// factory hands out repositories; inside a transaction the lock is already held.
type factory struct {
	store *Store
	inTx  bool
}

func (f factory) do(fn func(st *state) error) error {
	if !f.inTx {
		f.store.mu.Lock()
		defer f.store.mu.Unlock()
	}
	return fn(f.store.data)
}

func (f factory) Users() repository.UserRepository       { return users{f} }
func (f factory) Orders() repository.OrderRepository     { return orders{f} }
func (f factory) Variants() repository.VariantRepository { return variants{f} }
func (f factory) Stock() repository.StockRepository      { return stock{f} }
func (f factory) TaxRates() repository.TaxRateRepository { return taxRates{f} }
func (f factory) ShippingMethods() repository.ShippingMethodRepository {
	return shippingMethods{f}
}
func (f factory) PaymentMethods() repository.PaymentMethodRepository {
	return paymentMethods{f}
}

func sortByCompletion(list []*model.Order) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].CompletedAt.Before(*list[j].CompletedAt)
	})
}
