package contracts

import (
	"context"

	"carealert-service/internal/app/models"
)

// UserRepository is the profile store: keyed lookup by identity id. Find
// methods return (nil, nil) when no document matches.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (userID string, err error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIdentityID(ctx context.Context, identityID string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteByIdentityID(ctx context.Context, identityID string) error
}
