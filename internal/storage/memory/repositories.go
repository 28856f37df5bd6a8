package memory

import (
	"context"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type users struct{ f factory }

func (r users) CreateGuest(_ context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.f.do(func(st *state) error {
		st.lastUserID++
		u = model.User{ID: st.lastUserID, Email: email, Anonymous: true, CreatedAt: r.f.store.now()}
		st.users[u.ID] = u
		return nil
	})
	return &u, err
}

func (r users) GetByID(_ context.Context, id int64) (*model.User, error) {
	var u model.User
	err := r.f.do(func(st *state) error {
		found, ok := st.users[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		u = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type orders struct{ f factory }

func (r orders) Create(_ context.Context, o *model.Order) error {
	return r.f.do(func(st *state) error {
		if _, ok := st.orders[o.Number]; ok {
			return domainErrors.ErrAlreadyExists
		}
		if _, ok := st.users[o.UserID]; !ok {
			return domainErrors.ErrNotFound
		}
		st.lastOrderID++
		o.ID = st.lastOrderID
		st.orders[o.Number] = o.Clone()
		return nil
	})
}

func (r orders) NumberExists(_ context.Context, number string) (bool, error) {
	var exists bool
	err := r.f.do(func(st *state) error {
		_, exists = st.orders[number]
		return nil
	})
	return exists, err
}

func (r orders) get(number string) (*model.Order, error) {
	var o *model.Order
	err := r.f.do(func(st *state) error {
		found, ok := st.orders[number]
		if !ok {
			return domainErrors.ErrNotFound
		}
		o = found.Clone()
		if u, ok := st.users[o.UserID]; ok {
			o.User = &u
		}
		return nil
	})
	return o, err
}

func (r orders) Get(_ context.Context, number string) (*model.Order, error) {
	return r.get(number)
}

func (r orders) GetForUpdate(_ context.Context, number string) (*model.Order, error) {
	return r.get(number)
}

func (r orders) Save(_ context.Context, o *model.Order) error {
	return r.f.do(func(st *state) error {
		if _, ok := st.orders[o.Number]; !ok {
			return domainErrors.ErrNotFound
		}
		saved := o.Clone()
		saved.User = nil
		st.orders[o.Number] = saved
		return nil
	})
}

func (r orders) SelectBackordered(_ context.Context, limit int) ([]string, error) {
	var numbers []string
	err := r.f.do(func(st *state) error {
		var waiting []*model.Order
		for _, o := range st.orders {
			if o.Completed() && o.State == model.OrderStateComplete && o.ShipmentState == model.ShipmentStateBackorder {
				waiting = append(waiting, o)
			}
		}
		sortByCompletion(waiting)
		for i, o := range waiting {
			if i == limit {
				break
			}
			numbers = append(numbers, o.Number)
		}
		return nil
	})
	return numbers, err
}

type variants struct{ f factory }

func (r variants) Get(_ context.Context, id int64) (*model.Variant, error) {
	var v model.Variant
	err := r.f.do(func(st *state) error {
		found, ok := st.variants[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		v = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

type stock struct{ f factory }

func (r stock) OnHand(_ context.Context, variantID int64) (int, error) {
	var n int
	err := r.f.do(func(st *state) error {
		v, ok := st.variants[variantID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		n = v.CountOnHand
		return nil
	})
	return n, err
}

func (r stock) Adjust(_ context.Context, variantID int64, delta int) (int, error) {
	var n int
	err := r.f.do(func(st *state) error {
		v, ok := st.variants[variantID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		v.CountOnHand += delta
		st.variants[variantID] = v
		n = v.CountOnHand
		return nil
	})
	return n, err
}

type taxRates struct{ f factory }

func (r taxRates) All(_ context.Context) ([]model.TaxRate, error) {
	var rates []model.TaxRate
	err := r.f.do(func(st *state) error {
		rates = append(rates, st.taxRates...)
		return nil
	})
	return rates, err
}

func (r taxRates) Match(ctx context.Context, addr *model.Address) ([]model.TaxRate, error) {
	if addr == nil {
		return nil, nil
	}
	rates, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return model.MatchTaxRates(rates, addr), nil
}

func (r taxRates) Get(_ context.Context, id int64) (*model.TaxRate, error) {
	var rate *model.TaxRate
	err := r.f.do(func(st *state) error {
		for _, tr := range st.taxRates {
			if tr.ID == id {
				found := tr
				rate = &found
				return nil
			}
		}
		return domainErrors.ErrNotFound
	})
	return rate, err
}

type shippingMethods struct{ f factory }

func (r shippingMethods) All(_ context.Context) ([]model.ShippingMethod, error) {
	var methods []model.ShippingMethod
	err := r.f.do(func(st *state) error {
		methods = append(methods, st.shippingMethods...)
		return nil
	})
	return methods, err
}

func (r shippingMethods) Get(_ context.Context, id int64) (*model.ShippingMethod, error) {
	var method *model.ShippingMethod
	err := r.f.do(func(st *state) error {
		for _, m := range st.shippingMethods {
			if m.ID == id {
				found := m
				method = &found
				return nil
			}
		}
		return domainErrors.ErrNotFound
	})
	return method, err
}

type paymentMethods struct{ f factory }

func (r paymentMethods) All(_ context.Context) ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	err := r.f.do(func(st *state) error {
		methods = append(methods, st.paymentMethods...)
		return nil
	})
	return methods, err
}

func (r paymentMethods) Get(_ context.Context, id int64) (*model.PaymentMethod, error) {
	var method *model.PaymentMethod
	err := r.f.do(func(st *state) error {
		for _, m := range st.paymentMethods {
			if m.ID == id {
				found := m
				method = &found
				return nil
			}
		}
		return domainErrors.ErrNotFound
	})
	return method, err
}
