package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type userRepository struct {
	q querier
}

func (r *userRepository) CreateGuest(ctx context.Context, email string) (*model.User, error) {
	const query = `INSERT INTO users (email, anonymous) VALUES ($1, TRUE) RETURNING id, created_at`
	u := model.User{Email: email, Anonymous: true}
	if err := r.q.QueryRow(ctx, query, email).Scan(&u.ID, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, email, anonymous, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.q.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.Anonymous, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
