package identity

import (
	"context"
	"errors"
	"sync"

	"carealert-service/internal/app/contracts"
	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/exceptions"
	"carealert-service/internal/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const changeBufferSize = 16

type identityProvider struct {
	UserRepository contracts.UserRepository
	Log            *zap.Logger

	changes chan *models.Principal

	mu            sync.Mutex
	limiters      map[string]*rate.Limiter
	ratePerMinute int
	burst         int
}

func NewIdentityProvider(userRepository contracts.UserRepository, logger *zap.Logger, signInAttemptsPerMinute, signInBurst int) contracts.IdentityProvider {
	return &identityProvider{
		UserRepository: userRepository,
		Log:            logger,
		changes:        make(chan *models.Principal, changeBufferSize),
		limiters:       make(map[string]*rate.Limiter),
		ratePerMinute:  signInAttemptsPerMinute,
		burst:          signInBurst,
	}
}

func (p *identityProvider) SignIn(ctx context.Context, email, password string) (*models.Principal, error) {
	requestID := utils.GetRequestID(ctx)
	p.Log.Info("IdentityProvider.SignIn called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	if !p.limiterFor(email).Allow() {
		return nil, exceptions.ErrSignInRateLimited(errors.New("too many sign-in attempts"))
	}

	user, err := p.UserRepository.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, exceptions.ErrInvalidEmailOrPassword(errors.New("no user for email"))
	}
	if user.Disabled {
		return nil, exceptions.ErrAccountDisabled(errors.New("account is disabled"))
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, exceptions.ErrInvalidEmailOrPassword(errors.New("password mismatch"))
	}

	principal := &models.Principal{
		IdentityID: user.IdentityID,
		Email:      user.Email,
	}
	p.publish(principal)

	p.Log.Info("IdentityProvider.SignIn succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingIdentityIDKey, principal.IdentityID),
	)
	return principal, nil
}

func (p *identityProvider) SignOut(ctx context.Context) error {
	requestID := utils.GetRequestID(ctx)
	p.Log.Info("IdentityProvider.SignOut called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	p.publish(nil)
	return nil
}

func (p *identityProvider) SessionChanges() <-chan *models.Principal {
	return p.changes
}

// publish never blocks a sign-in on a slow consumer; the resolver always
// re-reads the latest state anyway, so dropping a stale event is safe.
func (p *identityProvider) publish(principal *models.Principal) {
	select {
	case p.changes <- principal:
	default:
		p.Log.Warn("IdentityProvider change buffer full, dropping event")
	}
}

func (p *identityProvider) limiterFor(email string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	limiter, ok := p.limiters[email]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(float64(p.ratePerMinute)/60.0), p.burst)
		p.limiters[email] = limiter
	}
	return limiter
}
