package auth

import (
	"context"

	"carealert-service/internal/pkg/dto/requests"
	"carealert-service/internal/pkg/dto/responses"
)

type AuthUsecase interface {
	Signup(ctx context.Context, role string, request *requests.Signup) (*responses.Signup, error)
	Login(ctx context.Context, request *requests.Login) (*responses.Login, error)
	Logout(ctx context.Context) error
}
