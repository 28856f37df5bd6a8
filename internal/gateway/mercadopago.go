package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")

const mercadoPagoApproved = "approved"

type paymentCreator interface {
	Create(ctx context.Context, request payment.Request) (*payment.Response, error)
}

// MercadoPago captures card token payments through the Mercado Pago API.
type MercadoPago struct {
	client paymentCreator
}

// NewMercadoPago builds the gateway from an access token.
func NewMercadoPago(accessToken string) (*MercadoPago, error) {
	if accessToken == "" {
		return nil, ErrMissingMercadoPagoAccessToken
	}
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPago{client: payment.NewClient(cfg)}, nil
}

// Process creates a payment; any status other than approved is a decline.
func (g *MercadoPago) Process(ctx context.Context, charge Charge) (Receipt, error) {
	amount, _ := charge.Amount.Float64()
	req := payment.Request{
		TransactionAmount: amount,
		Token:             charge.Source.Token,
		Installments:      1,
		PaymentMethodID:   charge.Method.Provider,
		ExternalReference: charge.OrderNumber,
		Description:       "Order " + charge.OrderNumber,
		Payer: &payment.PayerRequest{
			Email: charge.Email,
		},
	}

	resp, err := g.client.Create(ctx, req)
	if err != nil {
		return Receipt{}, fmt.Errorf("mercadopago create: %w", err)
	}

	receipt := Receipt{Reference: fmt.Sprintf("%d", resp.ID), ResponseCode: resp.Status}
	if resp.Status != mercadoPagoApproved {
		return receipt, fmt.Errorf("mercadopago status %q (%s): %w", resp.Status, resp.StatusDetail, domainErrors.ErrGatewayDeclined)
	}
	return receipt, nil
}
