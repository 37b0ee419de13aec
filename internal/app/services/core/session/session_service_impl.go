package session

import (
	"context"
	"errors"
	"time"

	"carealert-service/internal/app/contracts"
	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
)

type sessionService struct {
	RedisRepository contracts.RedisRepository
	SessionStore    contracts.SessionStore
}

func NewSessionService(redisRepository contracts.RedisRepository, sessionStore contracts.SessionStore) contracts.SessionService {
	return &sessionService{
		RedisRepository: redisRepository,
		SessionStore:    sessionStore,
	}
}

func (svc *sessionService) CurrentSession(ctx context.Context) *models.Session {
	if sessionData, ok := ctx.Value(constvars.CONTEXT_SESSION_DATA_KEY).(string); ok && sessionData != "" {
		session, err := svc.ParseSessionData(ctx, sessionData)
		if err == nil {
			return session
		}
	}
	return svc.SessionStore.Current()
}

func (svc *sessionService) ParseSessionData(ctx context.Context, sessionData string) (*models.Session, error) {
	session := new(models.Session)
	err := json.Unmarshal([]byte(sessionData), session)
	if err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return session, nil
}

func (svc *sessionService) GetSessionData(ctx context.Context, sessionID string) (string, error) {
	sessionData, err := svc.RedisRepository.Get(ctx, sessionID)
	if err != nil {
		return "", exceptions.ErrTokenInvalid(err)
	}
	return sessionData, nil
}

func (svc *sessionService) StoreSession(ctx context.Context, session *models.Session) error {
	exp := time.Until(session.ExpiresAt)
	if exp <= 0 {
		return exceptions.ErrTokenInvalidOrExpired(errors.New("session already expired"))
	}
	return svc.RedisRepository.Set(ctx, session.SessionID, session, exp)
}

func (svc *sessionService) DeleteSession(ctx context.Context, sessionID string) error {
	return svc.RedisRepository.Delete(ctx, sessionID)
}
