package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/polkiloo/storefront/internal/checkout"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/telemetry"
)

const (
	numberPrefix   = "R"
	numberDigits   = 9
	numberAttempts = 10
)

// ErrNumberUnavailable is returned when no unused order number was found.
var ErrNumberUnavailable = errors.New("could not allocate order number")

// CreatedOrder is a new order with the guest token handed out once.
type CreatedOrder struct {
	Order      *model.Order
	GuestToken string
}

// Create opens a cart. Without a user id a guest user is provisioned and a
// guest token is issued; registered users get their email copied to the order.
func (u *OrderUseCase) Create(ctx context.Context, actor Actor) (created *CreatedOrder, err error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderUseCase.Create")
	defer func() { telemetry.EndSpan(span, err) }()

	err = u.tx.WithinTransaction(ctx, func(ctx context.Context, tx repository.Factory) error {
		user, err := u.owner(ctx, tx, actor.UserID)
		if err != nil {
			return err
		}
		number, err := u.allocateNumber(ctx, tx.Orders())
		if err != nil {
			return err
		}

		o := model.NewOrder(number, u.now())
		o.UserID = user.ID
		o.User = user
		result := &CreatedOrder{Order: o}
		if user.Anonymous {
			token, hash, err := u.guests.Issue()
			if err != nil {
				return fmt.Errorf("issue guest token: %w", err)
			}
			o.GuestTokenHash = hash
			result.GuestToken = token
		} else {
			o.Email = user.Email
		}

		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}
		created = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("order.number", created.Order.Number))
	u.logger.InfoContext(ctx, "order created",
		slog.String("order", created.Order.Number),
		slog.Bool("guest", created.GuestToken != ""),
	)
	return created, nil
}

func (u *OrderUseCase) owner(ctx context.Context, tx repository.Factory, userID int64) (*model.User, error) {
	if userID == 0 {
		user, err := tx.Users().CreateGuest(ctx, strings.ReplaceAll(u.newID(), "-", "")+"@example.net")
		if err != nil {
			return nil, fmt.Errorf("create guest user: %w", err)
		}
		return user, nil
	}
	user, err := tx.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrForbidden
		}
		return nil, err
	}
	if user.Anonymous {
		return nil, domainErrors.ErrForbidden
	}
	return user, nil
}

func (u *OrderUseCase) allocateNumber(ctx context.Context, orders repository.OrderRepository) (string, error) {
	for i := 0; i < numberAttempts; i++ {
		number := model.GenerateNumber(numberPrefix, numberDigits)
		exists, err := orders.NumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", ErrNumberUnavailable
}

// Get returns the order visible to actor.
func (u *OrderUseCase) Get(ctx context.Context, actor Actor, number string) (*model.Order, error) {
	var order *model.Order
	err := u.read(ctx, "Get", actor, number, func(_ context.Context, _ repository.Factory, _ *checkout.Engine, o *model.Order) error {
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Products returns the distinct variants in the order's cart.
func (u *OrderUseCase) Products(ctx context.Context, actor Actor, number string) ([]model.Variant, error) {
	var products []model.Variant
	err := u.read(ctx, "Products", actor, number, func(ctx context.Context, tx repository.Factory, _ *checkout.Engine, o *model.Order) error {
		for _, id := range o.VariantIDs() {
			v, err := tx.Variants().Get(ctx, id)
			if err != nil {
				return fmt.Errorf("variant %d: %w", id, err)
			}
			products = append(products, *v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// AddLineItem puts quantity of variant in the cart, merging with an existing line.
func (u *OrderUseCase) AddLineItem(ctx context.Context, actor Actor, number string, variantID int64, quantity int) (*model.Order, error) {
	if quantity <= 0 {
		return nil, domainErrors.NewValidationError("quantity", "must be positive")
	}
	return u.mutate(ctx, "AddLineItem", &actor, number, func(ctx context.Context, tx repository.Factory, eng *checkout.Engine, o *model.Order) error {
		if err := editable(o); err != nil {
			return err
		}
		if li, ok := o.LineItemForVariant(variantID); ok {
			li.Quantity += quantity
			return cartChanged(ctx, eng, o)
		}
		v, err := tx.Variants().Get(ctx, variantID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				return &domainErrors.ValidationError{Field: "variant_id", Message: "does not exist", Err: err}
			}
			return err
		}
		o.LineItems = append(o.LineItems, model.LineItem{
			ID:            u.newID(),
			VariantID:     v.ID,
			Quantity:      quantity,
			Price:         v.Price,
			TaxCategoryID: v.TaxCategoryID,
			StockLocation: v.StockLocation,
		})
		return cartChanged(ctx, eng, o)
	})
}

// SetQuantity changes a line item quantity; zero removes the line.
func (u *OrderUseCase) SetQuantity(ctx context.Context, actor Actor, number, lineItemID string, quantity int) (*model.Order, error) {
	if quantity < 0 {
		return nil, domainErrors.NewValidationError("quantity", "must not be negative")
	}
	return u.mutate(ctx, "SetQuantity", &actor, number, func(ctx context.Context, _ repository.Factory, eng *checkout.Engine, o *model.Order) error {
		if err := editable(o); err != nil {
			return err
		}
		li, ok := o.LineItem(lineItemID)
		if !ok {
			return domainErrors.ErrNotFound
		}
		if quantity == 0 {
			o.RemoveLineItem(lineItemID)
		} else {
			li.Quantity = quantity
		}
		return cartChanged(ctx, eng, o)
	})
}

// Claim hands an uncompleted guest order to the registered user holding its
// guest token. An order owned by another registered user is never reassigned.
func (u *OrderUseCase) Claim(ctx context.Context, userID int64, number, guestToken string) (*model.Order, error) {
	if userID == 0 {
		return nil, domainErrors.ErrForbidden
	}
	return u.mutate(ctx, "Claim", nil, number, func(ctx context.Context, tx repository.Factory, _ *checkout.Engine, o *model.Order) error {
		if o.UserID == userID {
			return nil
		}
		if o.User != nil && !o.User.Anonymous {
			return domainErrors.ErrUserAlreadyAssigned
		}
		if err := u.guests.Verify(o.GuestTokenHash, guestToken); err != nil {
			return err
		}
		if o.Completed() {
			return fmt.Errorf("claim completed order %s: %w", o.Number, domainErrors.ErrInvalidTransition)
		}
		user, err := u.owner(ctx, tx, userID)
		if err != nil {
			return err
		}
		o.UserID = user.ID
		o.User = user
		if strings.TrimSpace(o.Email) == "" {
			o.Email = user.Email
		}
		o.GuestTokenHash = ""
		return nil
	})
}

// cartChanged drops shipments built for the previous cart and reconciles.
func cartChanged(ctx context.Context, eng *checkout.Engine, o *model.Order) error {
	eng.ResetShipments(o)
	return eng.Update(ctx, o)
}
