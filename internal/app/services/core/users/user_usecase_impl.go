package users

import (
	"context"
	"errors"

	"carealert-service/internal/app/contracts"
	"carealert-service/internal/pkg/dto/responses"
	"carealert-service/internal/pkg/exceptions"
)

type userUsecase struct {
	UserRepository contracts.UserRepository
	SessionService contracts.SessionService
	AuditUsecase   contracts.AuditUsecase
}

func NewUserUsecase(
	userRepository contracts.UserRepository,
	sessionService contracts.SessionService,
	auditUsecase contracts.AuditUsecase,
) UserUsecase {
	return &userUsecase{
		UserRepository: userRepository,
		SessionService: sessionService,
		AuditUsecase:   auditUsecase,
	}
}

func (uc *userUsecase) GetProfile(ctx context.Context) (*responses.Profile, error) {
	session := uc.SessionService.CurrentSession(ctx)
	if session == nil {
		return nil, exceptions.ErrTokenMissing(errors.New("profile access without session"))
	}

	user, err := uc.UserRepository.FindByIdentityID(ctx, session.IdentityID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, exceptions.ErrProfileMissing(errors.New("session identity has no profile document"))
	}

	uc.AuditUsecase.RecordDataAccess(ctx, "profile")

	return &responses.Profile{
		IdentityID: user.IdentityID,
		Email:      user.Email,
		FullName:   user.FullName,
		Role:       user.Role,
	}, nil
}
