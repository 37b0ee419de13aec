package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/exceptions"
	"carealert-service/internal/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubUserRepository struct {
	users map[string]*models.User
}

func (s *stubUserRepository) CreateUser(ctx context.Context, user *models.User) (string, error) {
	return "", nil
}

func (s *stubUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users[email], nil
}

func (s *stubUserRepository) FindByIdentityID(ctx context.Context, identityID string) (*models.User, error) {
	return nil, nil
}

func (s *stubUserRepository) UpdateUser(ctx context.Context, user *models.User) error { return nil }
func (s *stubUserRepository) DeleteByIdentityID(ctx context.Context, identityID string) error {
	return nil
}

func clientMessage(t *testing.T, err error) string {
	t.Helper()
	var customErr *exceptions.CustomError
	require.True(t, errors.As(err, &customErr), "expected a CustomError, got %v", err)
	return customErr.ClientMessage
}

func TestIdentityProviderSignIn(t *testing.T) {
	logger := zap.NewNop()

	hashed, err := utils.HashPassword("Sup3r$ecret")
	require.NoError(t, err)

	repo := &stubUserRepository{users: map[string]*models.User{
		"ok@x.y":       {IdentityID: "id-ok", Email: "ok@x.y", Password: hashed, Role: constvars.RoleTypePatient},
		"disabled@x.y": {IdentityID: "id-dis", Email: "disabled@x.y", Password: hashed, Disabled: true},
	}}

	newProvider := func() *identityProvider {
		return NewIdentityProvider(repo, logger, 60, 10).(*identityProvider)
	}

	t.Run("valid credentials yield a principal and a change event", func(t *testing.T) {
		provider := newProvider()

		principal, err := provider.SignIn(context.Background(), "ok@x.y", "Sup3r$ecret")
		require.NoError(t, err)
		assert.Equal(t, "id-ok", principal.IdentityID)
		assert.Equal(t, "ok@x.y", principal.Email)

		select {
		case event := <-provider.SessionChanges():
			require.NotNil(t, event)
			assert.Equal(t, "id-ok", event.IdentityID)
		case <-time.After(time.Second):
			t.Fatal("no change event published")
		}
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		provider := newProvider()

		_, errUnknown := provider.SignIn(context.Background(), "nobody@x.y", "whatever")
		_, errWrong := provider.SignIn(context.Background(), "ok@x.y", "not-the-password")

		require.Error(t, errUnknown)
		require.Error(t, errWrong)
		assert.Equal(t, constvars.ErrClientInvalidEmailOrPassword, clientMessage(t, errUnknown))
		assert.Equal(t, constvars.ErrClientInvalidEmailOrPassword, clientMessage(t, errWrong))
	})

	t.Run("disabled account is rejected before the password check", func(t *testing.T) {
		provider := newProvider()

		_, err := provider.SignIn(context.Background(), "disabled@x.y", "Sup3r$ecret")
		require.Error(t, err)
		assert.Equal(t, constvars.ErrClientAccountDisabled, clientMessage(t, err))
	})

	t.Run("rapid attempts for one email are rate limited", func(t *testing.T) {
		provider := NewIdentityProvider(repo, logger, 1, 2).(*identityProvider)

		_, _ = provider.SignIn(context.Background(), "ok@x.y", "bad")
		_, _ = provider.SignIn(context.Background(), "ok@x.y", "bad")
		_, err := provider.SignIn(context.Background(), "ok@x.y", "bad")

		require.Error(t, err)
		assert.Equal(t, constvars.ErrClientTooManyAttempts, clientMessage(t, err))
	})

	t.Run("rate limit is per email", func(t *testing.T) {
		provider := NewIdentityProvider(repo, logger, 1, 1).(*identityProvider)

		_, _ = provider.SignIn(context.Background(), "ok@x.y", "bad")
		_, err := provider.SignIn(context.Background(), "other@x.y", "bad")

		require.Error(t, err)
		assert.Equal(t, constvars.ErrClientInvalidEmailOrPassword, clientMessage(t, err))
	})

	t.Run("sign-out publishes a nil change event", func(t *testing.T) {
		provider := newProvider()

		require.NoError(t, provider.SignOut(context.Background()))

		select {
		case event := <-provider.SessionChanges():
			assert.Nil(t, event)
		case <-time.After(time.Second):
			t.Fatal("no change event published")
		}
	})
}
