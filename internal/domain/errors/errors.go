package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists       = errors.New("already exists")
	ErrNotFound            = errors.New("not found")
	ErrCheckoutNotAllowed  = errors.New("checkout not allowed")
	ErrNoShippingMethods   = errors.New("no shipping methods available")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrCannotCancel        = errors.New("order cannot be canceled")
	ErrForbidden           = errors.New("forbidden")
	ErrUserAlreadyAssigned = errors.New("order already belongs to a registered user")
	ErrInvalidGuestToken   = errors.New("invalid guest token")
	ErrGatewayDeclined     = errors.New("payment declined")
)

// ValidationError is a user-correctable problem; the order does not advance.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError builds ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// GatewayError reports a failed payment attempt.
type GatewayError struct {
	PaymentID string
	Reference string
	Timeout   bool
	Err       error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("gateway error on payment %s", e.PaymentID)
	if e.Reference != "" {
		msg += " (ref " + e.Reference + ")"
	}
	if e.Timeout {
		msg += ": timeout"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GatewayError) Unwrap() error { return e.Err }

// InvariantViolation is an internal consistency failure, never shown to customers.
type InvariantViolation struct {
	Op     string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violated in %s: %s", e.Op, e.Detail)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsGateway reports whether err is a GatewayError.
func IsGateway(err error) bool {
	var g *GatewayError
	return errors.As(err, &g)
}

// IsInvariant reports whether err is an InvariantViolation.
func IsInvariant(err error) bool {
	var v *InvariantViolation
	return errors.As(err, &v)
}
