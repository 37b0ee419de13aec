package contracts

import (
	"context"

	"carealert-service/internal/app/models"
)

// SessionStore holds the single live resolved session. The resolver is its
// only writer; gates, the subscription manager and the audit logger read it.
type SessionStore interface {
	Current() *models.Session
	Set(session *models.Session)
	Reset()
}

// SessionResolver turns identity provider events plus profile lookups into a
// SessionState stream. Run blocks until ctx is done.
type SessionResolver interface {
	Run(ctx context.Context)
	States() <-chan models.SessionState
}

type SessionService interface {
	// CurrentSession returns the resolved session visible to this call:
	// request-scoped session data when present, otherwise the live store.
	// Returns nil when nothing is resolved.
	CurrentSession(ctx context.Context) *models.Session
	ParseSessionData(ctx context.Context, sessionData string) (*models.Session, error)
	GetSessionData(ctx context.Context, sessionID string) (sessionData string, err error)
	StoreSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, sessionID string) error
}
