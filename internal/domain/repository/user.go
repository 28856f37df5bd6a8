package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// UserRepository describes persistence operations for users.
type UserRepository interface {
	CreateGuest(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}
