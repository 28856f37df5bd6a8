package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var issuedAt = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func userClaims(sub string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    "accounts",
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}
}

func TestJWTVerifierParsesSubject(t *testing.T) {
	v := NewJWTVerifier("secret", Options{Now: func() time.Time { return issuedAt }})
	userID, err := v.ParseToken(sign(t, jwt.SigningMethodHS256, []byte("secret"), userClaims("42")))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if userID != 42 {
		t.Fatalf("unexpected user id %d", userID)
	}
	if v.Name() != "jwt-hs256" {
		t.Fatalf("unexpected name %s", v.Name())
	}
}

func TestJWTVerifierRejects(t *testing.T) {
	now := func() time.Time { return issuedAt }
	noExpiry := userClaims("1")
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		opts  Options
		token func(t *testing.T) string
	}{
		{name: "garbage", token: func(*testing.T) string { return "***" }},
		{name: "other secret", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS256, []byte("other"), userClaims("1"))
		}},
		{name: "other algorithm", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS512, []byte("secret"), userClaims("1"))
		}},
		{name: "unsigned", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, userClaims("1"))
		}},
		{name: "expired", opts: Options{Now: func() time.Time { return issuedAt.Add(2 * time.Hour) }}, token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS256, []byte("secret"), userClaims("1"))
		}},
		{name: "no expiry", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS256, []byte("secret"), noExpiry)
		}},
		{name: "wrong issuer", opts: Options{Issuer: "billing", Now: now}, token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS256, []byte("secret"), userClaims("1"))
		}},
		{name: "non numeric subject", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS256, []byte("secret"), userClaims("guest"))
		}},
		{name: "zero subject", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS256, []byte("secret"), userClaims("0"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if opts.Now == nil {
				opts.Now = now
			}
			if _, err := NewJWTVerifier("secret", opts).ParseToken(tt.token(t)); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestJWTVerifierLeewayAndIssuer(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, []byte("secret"), userClaims("7"))
	late := func() time.Time { return issuedAt.Add(time.Hour + 30*time.Second) }

	v := NewJWTVerifier("secret", Options{Issuer: "accounts", Leeway: time.Minute, Now: late})
	if id, err := v.ParseToken(token); err != nil || id != 7 {
		t.Fatalf("expected token within leeway to pass, got %d %v", id, err)
	}
}
