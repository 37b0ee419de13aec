package auth

import (
	"context"
	"errors"
	"time"

	"carealert-service/internal/app/config"
	"carealert-service/internal/app/contracts"
	"carealert-service/internal/app/models"
	"carealert-service/internal/app/services/core/gates"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/dto/requests"
	"carealert-service/internal/pkg/dto/responses"
	"carealert-service/internal/pkg/exceptions"
	"carealert-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type authUsecase struct {
	IdentityProvider contracts.IdentityProvider
	UserRepository   contracts.UserRepository
	SessionService   contracts.SessionService
	AuditUsecase     contracts.AuditUsecase
	InternalConfig   *config.InternalConfig
}

func NewAuthUsecase(
	identityProvider contracts.IdentityProvider,
	userRepository contracts.UserRepository,
	sessionService contracts.SessionService,
	auditUsecase contracts.AuditUsecase,
	internalConfig *config.InternalConfig,
) AuthUsecase {
	return &authUsecase{
		IdentityProvider: identityProvider,
		UserRepository:   userRepository,
		SessionService:   sessionService,
		AuditUsecase:     auditUsecase,
		InternalConfig:   internalConfig,
	}
}

func (uc *authUsecase) Signup(ctx context.Context, role string, request *requests.Signup) (*responses.Signup, error) {
	if !utils.IsKnownRole(role) {
		return nil, exceptions.ErrUnknownRole(errors.New("signup role not in role set"))
	}

	// Check if email already exists
	existingUser, err := uc.UserRepository.FindByEmail(ctx, request.Email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, exceptions.ErrEmailAlreadyExist(errors.New("email taken"))
	}

	// Hash password
	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, exceptions.ErrHashPassword(err)
	}

	user := &models.User{
		IdentityID: uuid.NewString(),
		Email:      request.Email,
		FullName:   request.FullName,
		Password:   hashedPassword,
		Role:       role,
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	userID, err := uc.UserRepository.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	return &responses.Signup{
		UserID: userID,
		Role:   role,
	}, nil
}

func (uc *authUsecase) Login(ctx context.Context, request *requests.Login) (*responses.Login, error) {
	principal, err := uc.IdentityProvider.SignIn(ctx, request.Email, request.Password)
	if err != nil {
		return nil, err
	}

	user, err := uc.UserRepository.FindByIdentityID(ctx, principal.IdentityID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		uc.IdentityProvider.SignOut(ctx)
		return nil, exceptions.ErrProfileMissing(errors.New("authenticated identity has no profile"))
	}
	if !utils.IsKnownRole(user.Role) {
		uc.IdentityProvider.SignOut(ctx)
		return nil, exceptions.ErrProfileBadRole(errors.New("authenticated identity has unknown role"))
	}

	session := &models.Session{
		SessionID:  utils.GenerateSessionID(),
		IdentityID: user.IdentityID,
		Email:      user.Email,
		Role:       user.Role,
		ExpiresAt:  time.Now().Add(time.Duration(uc.InternalConfig.JWT.ExpTimeInHour) * time.Hour),
	}
	if session.Role == constvars.RoleTypePatient {
		session.PatientID = user.ID
	}

	if err := uc.SessionService.StoreSession(ctx, session); err != nil {
		return nil, err
	}

	token, err := utils.GenerateSessionJWT(session.SessionID, uc.InternalConfig.JWT.Secret, uc.InternalConfig.JWT.ExpTimeInHour)
	if err != nil {
		return nil, err
	}

	uc.AuditUsecase.Record(withSessionData(ctx, session), constvars.AuditActionLogin, map[string]interface{}{
		constvars.AuditDetailEmailKey: session.Email,
	})

	return &responses.Login{
		Token:         token,
		Role:          session.Role,
		DashboardPath: gates.DashboardPath(session.Role),
	}, nil
}

func (uc *authUsecase) Logout(ctx context.Context) error {
	session := uc.SessionService.CurrentSession(ctx)
	if session == nil {
		return exceptions.ErrTokenMissing(errors.New("logout without session"))
	}

	// Record while the session is still resolvable.
	uc.AuditUsecase.Record(ctx, constvars.AuditActionLogout, map[string]interface{}{
		constvars.AuditDetailEmailKey: session.Email,
	})

	if err := uc.SessionService.DeleteSession(ctx, session.SessionID); err != nil {
		return err
	}
	return uc.IdentityProvider.SignOut(ctx)
}

// withSessionData makes a freshly stored session visible to the audit logger
// before the request middleware has ever seen it.
func withSessionData(ctx context.Context, session *models.Session) context.Context {
	data, err := json.Marshal(session)
	if err != nil {
		return ctx
	}
	return context.WithValue(ctx, constvars.CONTEXT_SESSION_DATA_KEY, string(data))
}
