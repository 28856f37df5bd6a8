// Package idempotency keeps responses of mutating requests so that a client
// retrying with the same Idempotency-Key receives the original outcome.
package idempotency

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyKey is returned for a blank idempotency key.
var ErrEmptyKey = errors.New("idempotency key is empty")

// StoredResponse is the replayable part of an HTTP response.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

// Store retains responses by key. Get returns nil, nil for an unknown key.
type Store interface {
	Get(ctx context.Context, key string) (*StoredResponse, error)
	Save(ctx context.Context, key string, response StoredResponse) error
}

// Key scopes a client supplied key to the request it was sent with.
func Key(method, path, clientKey string) (string, error) {
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		return "", ErrEmptyKey
	}
	return method + " " + path + " " + clientKey, nil
}
