package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings is the immutable storefront policy passed to every checkout operation.
type Settings struct {
	AllowCheckoutOnGatewayError bool
	TrackInventoryLevels        bool
	ShowPriceIncVAT             bool
	DefaultCountryID            int64
	TaxUsingShipAddress         bool
	GatewayTimeout              time.Duration
}

// NoticeKind distinguishes customer notices.
type NoticeKind string

const (
	NoticeConfirmation NoticeKind = "confirmation"
	NoticeCancellation NoticeKind = "cancellation"
)

// Notice is a customer notification built during finalization or cancellation.
type Notice struct {
	ID          string
	Kind        NoticeKind
	OrderNumber string
	Email       string
	Total       decimal.Decimal
	ItemCount   int
	CreatedAt   time.Time
}
