package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// ProfilePrefix marks stored profile tokens issued by the bogus gateway.
const ProfilePrefix = "BGS-"

var bogusValidCards = map[string]struct{}{
	"1":                {},
	"4111111111111111": {},
	"4012888888881881": {},
	"4222222222222":    {},
}

// Bogus is a test gateway accepting a fixed set of card numbers.
type Bogus struct{}

// NewBogus constructs the test gateway.
func NewBogus() *Bogus {
	return &Bogus{}
}

// Process approves known test cards and BGS- profiles; everything else is declined.
func (b *Bogus) Process(ctx context.Context, charge Charge) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	reference := uuid.NewString()
	if charge.Amount.IsNegative() {
		return Receipt{Reference: reference, ResponseCode: "invalid_amount"},
			fmt.Errorf("bogus: negative amount %s: %w", charge.Amount, domainErrors.ErrGatewayDeclined)
	}

	if approved(charge.Source) {
		return Receipt{Reference: reference, ResponseCode: "12345"}, nil
	}
	return Receipt{Reference: reference, ResponseCode: "declined"},
		fmt.Errorf("bogus: card %s: %w", maskToken(charge.Source.Token), domainErrors.ErrGatewayDeclined)
}

func approved(src model.PaymentSource) bool {
	if src.Kind == model.SourceProfile {
		return strings.HasPrefix(src.Token, ProfilePrefix)
	}
	_, ok := bogusValidCards[strings.TrimSpace(src.Token)]
	return ok
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
