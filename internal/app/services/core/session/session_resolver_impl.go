package session

import (
	"context"
	"time"

	"carealert-service/internal/app/contracts"
	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/utils"

	"go.uber.org/zap"
)

const stateBufferSize = 16

type lookupResult struct {
	identityID string
	principal  *models.Principal
	user       *models.User
	err        error
}

// sessionResolver consumes identity change events and resolves each signed-in
// principal against the profile store. Profile lookups run concurrently with
// the event loop, so every result is checked against the latest identity id
// before it is applied; results for a superseded identity are discarded.
type sessionResolver struct {
	IdentityProvider contracts.IdentityProvider
	UserRepository   contracts.UserRepository
	SessionStore     contracts.SessionStore
	Log              *zap.Logger

	sessionTTL time.Duration
	states     chan models.SessionState
	results    chan lookupResult
}

func NewSessionResolver(
	identityProvider contracts.IdentityProvider,
	userRepository contracts.UserRepository,
	sessionStore contracts.SessionStore,
	logger *zap.Logger,
	sessionTTL time.Duration,
) contracts.SessionResolver {
	return &sessionResolver{
		IdentityProvider: identityProvider,
		UserRepository:   userRepository,
		SessionStore:     sessionStore,
		Log:              logger,
		sessionTTL:       sessionTTL,
		states:           make(chan models.SessionState, stateBufferSize),
		results:          make(chan lookupResult, stateBufferSize),
	}
}

func (r *sessionResolver) States() <-chan models.SessionState {
	return r.states
}

func (r *sessionResolver) Run(ctx context.Context) {
	defer close(r.states)

	r.emit(models.SessionState{Status: models.SessionLoading})

	// latestIdentityID governs which lookup result is still current. Empty
	// means signed out.
	var latestIdentityID string

	for {
		select {
		case <-ctx.Done():
			return
		case principal := <-r.IdentityProvider.SessionChanges():
			if principal == nil {
				latestIdentityID = ""
				r.SessionStore.Reset()
				r.emit(models.SessionState{Status: models.SessionSignedOut})
				continue
			}
			latestIdentityID = principal.IdentityID
			r.emit(models.SessionState{Status: models.SessionLoading})
			go r.lookup(ctx, principal)
		case result := <-r.results:
			if result.identityID != latestIdentityID {
				r.Log.Debug("SessionResolver discarding stale lookup result",
					zap.String(constvars.LoggingIdentityIDKey, result.identityID),
				)
				continue
			}
			r.apply(ctx, result)
		}
	}
}

func (r *sessionResolver) lookup(ctx context.Context, principal *models.Principal) {
	user, err := r.UserRepository.FindByIdentityID(ctx, principal.IdentityID)
	select {
	case r.results <- lookupResult{identityID: principal.IdentityID, principal: principal, user: user, err: err}:
	case <-ctx.Done():
	}
}

func (r *sessionResolver) apply(ctx context.Context, result lookupResult) {
	if result.err != nil {
		r.Log.Error("SessionResolver profile lookup failed",
			zap.String(constvars.LoggingIdentityIDKey, result.identityID),
			zap.Error(result.err),
		)
		r.invalidate(ctx, constvars.SessionInvalidMissingProfile)
		return
	}
	if result.user == nil {
		r.invalidate(ctx, constvars.SessionInvalidMissingProfile)
		return
	}
	if !utils.IsKnownRole(result.user.Role) {
		r.invalidate(ctx, constvars.SessionInvalidBadRole)
		return
	}

	session := &models.Session{
		SessionID:  utils.GenerateSessionID(),
		IdentityID: result.user.IdentityID,
		Email:      result.user.Email,
		Role:       result.user.Role,
		ExpiresAt:  time.Now().Add(r.sessionTTL),
	}
	if session.Role == constvars.RoleTypePatient {
		session.PatientID = result.user.ID
	}

	r.SessionStore.Set(session)
	r.emit(models.SessionState{Status: models.SessionResolved, Session: session})
	r.Log.Info("SessionResolver session resolved",
		zap.String(constvars.LoggingIdentityIDKey, session.IdentityID),
		zap.String(constvars.LoggingRoleKey, session.Role),
	)
}

// invalidate forces sign-out: a principal without a usable profile never
// holds a resolved session. The provider then emits a nil change event which
// settles the stream on SignedOut.
func (r *sessionResolver) invalidate(ctx context.Context, reason string) {
	r.SessionStore.Reset()
	r.emit(models.SessionState{Status: models.SessionInvalid, Reason: reason})
	if err := r.IdentityProvider.SignOut(ctx); err != nil {
		r.Log.Error("SessionResolver forced sign-out failed", zap.Error(err))
	}
}

func (r *sessionResolver) emit(state models.SessionState) {
	select {
	case r.states <- state:
	default:
		r.Log.Warn("SessionResolver state buffer full, dropping state",
			zap.String("status", state.Status.String()),
		)
	}
}
