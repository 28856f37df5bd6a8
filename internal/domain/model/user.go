package model

import "time"

// User owns orders; anonymous users are provisioned for guest checkouts.
type User struct {
	ID        int64
	Email     string
	Anonymous bool
	CreatedAt time.Time
}

// StateEvent is an audit record of an order state transition.
type StateEvent struct {
	ID            string
	Name          string
	PreviousState string
	NextState     string
	UserID        int64
	CreatedAt     time.Time
}

// StateEventOrder names state events for the primary order state.
const StateEventOrder = "order"
