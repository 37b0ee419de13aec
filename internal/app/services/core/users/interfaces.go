package users

import (
	"context"

	"carealert-service/internal/pkg/dto/responses"
)

type UserUsecase interface {
	GetProfile(ctx context.Context) (*responses.Profile, error)
}
