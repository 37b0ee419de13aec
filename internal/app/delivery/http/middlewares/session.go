package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/exceptions"
	"carealert-service/internal/pkg/utils"
)

const bearerPrefix = "Bearer "

// sessionState classifies one request the way the resolver classifies the
// live session: no token is signed out, a token whose session cannot be
// established is invalid, a cached session is resolved. The returned context
// carries the raw session data for downstream session reads.
func (m *Middlewares) sessionState(r *http.Request) (models.SessionState, context.Context) {
	ctx := r.Context()

	authHeader := r.Header.Get(constvars.HeaderAuthorization)
	if authHeader == "" {
		return models.SessionState{Status: models.SessionSignedOut}, ctx
	}
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return models.SessionState{Status: models.SessionInvalid}, ctx
	}

	sessionID, err := utils.ParseSessionJWT(strings.TrimPrefix(authHeader, bearerPrefix), m.InternalConfig.JWT.Secret)
	if err != nil {
		return models.SessionState{Status: models.SessionInvalid}, ctx
	}

	sessionData, err := m.SessionService.GetSessionData(ctx, sessionID)
	if err != nil || sessionData == "" {
		return models.SessionState{Status: models.SessionInvalid}, ctx
	}

	session, err := m.SessionService.ParseSessionData(ctx, sessionData)
	if err != nil {
		return models.SessionState{Status: models.SessionInvalid}, ctx
	}

	ctx = context.WithValue(ctx, constvars.CONTEXT_SESSION_DATA_KEY, sessionData)
	return models.SessionState{Status: models.SessionResolved, Session: session}, ctx
}

// Authenticate admits only requests carrying a resolvable session.
func (m *Middlewares) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, ctx := m.sessionState(r)
		switch state.Status {
		case models.SessionResolved:
			next.ServeHTTP(w, r.WithContext(ctx))
		case models.SessionSignedOut:
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenMissing(errors.New("no bearer token on request")))
		default:
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenInvalidOrExpired(errors.New("bearer token did not resolve to a session")))
		}
	})
}
