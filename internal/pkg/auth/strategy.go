package auth

import "time"

// Strategy verifies identity tokens minted by the account service. The
// storefront never issues them.
type Strategy interface {
	ParseToken(token string) (int64, error)
	Name() string
}

// Options tunes identity token verification.
type Options struct {
	// Issuer, when set, must match the token's iss claim.
	Issuer string
	// Leeway tolerates clock skew on exp and nbf.
	Leeway time.Duration
	Now    func() time.Time
}
