package auth

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

// GuestTokens issues the secret handed to anonymous shoppers for their order.
// Only the hash is stored on the order.
type GuestTokens interface {
	Issue() (token string, hash string, err error)
	Verify(hash string, token string) error
}

// BcryptGuestTokens hashes guest tokens with bcrypt.
type BcryptGuestTokens struct {
	cost int
}

// NewBcryptGuestTokens creates BcryptGuestTokens with provided cost.
func NewBcryptGuestTokens(cost int) *BcryptGuestTokens {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptGuestTokens{cost: cost}
}

// Issue returns a fresh random token together with its bcrypt hash.
func (g *BcryptGuestTokens) Issue() (string, string, error) {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	encoded, err := bcrypt.GenerateFromPassword([]byte(token), g.cost)
	if err != nil {
		return "", "", err
	}
	return token, string(encoded), nil
}

// Verify checks token against the stored hash.
func (g *BcryptGuestTokens) Verify(hash string, token string) error {
	if hash == "" || token == "" {
		return domainErrors.ErrInvalidGuestToken
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return domainErrors.ErrInvalidGuestToken
	}
	return err
}
