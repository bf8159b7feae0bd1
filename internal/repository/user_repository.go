package repository

import (
	"context"

	"app/internal/domain/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, bool, error)
	FindByGoogleID(ctx context.Context, googleID string) (model.User, bool, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	Update(ctx context.Context, u model.User) error
}
