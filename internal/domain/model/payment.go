package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a single payment.
type PaymentStatus string

const (
	PaymentCheckout   PaymentStatus = "checkout"
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentVoid       PaymentStatus = "void"
)

// SourceKind distinguishes card tokens from stored gateway profiles.
type SourceKind string

const (
	SourceCard    SourceKind = "card"
	SourceProfile SourceKind = "profile"
)

// PaymentSource carries what the gateway needs to charge.
type PaymentSource struct {
	Kind       SourceKind `json:"kind"`
	Token      string     `json:"token"`
	LastDigits string     `json:"last_digits,omitempty"`
}

// Payment is an amount charged through a payment method.
type Payment struct {
	ID              string
	Amount          decimal.Decimal
	State           PaymentStatus
	PaymentMethodID int64
	Source          PaymentSource
	ResponseCode    string
	CreatedAt       time.Time
}

// Clone returns a copy of the payment.
func (p Payment) Clone() Payment {
	return p
}

// Voidable reports whether the payment has not reached the gateway yet.
func (p Payment) Voidable() bool {
	return p.State == PaymentCheckout || p.State == PaymentPending
}
