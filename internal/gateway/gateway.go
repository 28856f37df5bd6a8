package gateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Provider names accepted by configuration.
const (
	ProviderBogus       = "bogus"
	ProviderMercadoPago = "mercadopago"
)

var ErrUnknownProvider = errors.New("unknown payment gateway provider")

// Charge describes a single capture request.
type Charge struct {
	PaymentID   string
	OrderNumber string
	Email       string
	Amount      decimal.Decimal
	Method      model.PaymentMethod
	Source      model.PaymentSource
}

// Receipt is what the provider reported back. Reference may be set on failure too.
type Receipt struct {
	Reference    string
	ResponseCode string
}

// Gateway captures payments. Implementations must honour ctx cancellation.
type Gateway interface {
	Process(ctx context.Context, charge Charge) (Receipt, error)
}
