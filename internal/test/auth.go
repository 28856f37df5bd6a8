package test

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

// StrategyStub parses tokens via function overrides.
type StrategyStub struct {
	ParseFn func(string) (int64, error)
	NameVal string
}

// ParseToken delegates to ParseFn or accepts every token as user 1.
func (s StrategyStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// TokenParserStub implements middleware token parsing contract.
type TokenParserStub struct {
	ID      int64
	Err     error
	ParseFn func(string) (int64, error)
}

// ParseToken either delegates to override or returns predefined result.
func (s TokenParserStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if s.Err != nil {
		return 0, s.Err
	}
	return s.ID, nil
}

// IdentityToken mints an HS256 identity token for userID valid for an hour,
// as the account service would.
func IdentityToken(t testing.TB, secret string, userID int64) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign identity token: %v", err)
	}
	return token
}

var _ pkgAuth.Strategy = StrategyStub{}
