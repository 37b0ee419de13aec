package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeIdentityProvider struct {
	changes chan *models.Principal

	mu           sync.Mutex
	signOutCalls int
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{changes: make(chan *models.Principal, 16)}
}

func (f *fakeIdentityProvider) SignIn(ctx context.Context, email, password string) (*models.Principal, error) {
	return nil, nil
}

func (f *fakeIdentityProvider) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signOutCalls++
	f.mu.Unlock()
	f.changes <- nil
	return nil
}

func (f *fakeIdentityProvider) SessionChanges() <-chan *models.Principal {
	return f.changes
}

func (f *fakeIdentityProvider) SignOutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOutCalls
}

// fakeUserRepository blocks FindByIdentityID until the matching gate is
// released, so tests control the ordering of concurrent lookups.
type fakeUserRepository struct {
	mu    sync.Mutex
	users map[string]*models.User
	gates map[string]chan struct{}
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		users: make(map[string]*models.User),
		gates: make(map[string]chan struct{}),
	}
}

func (f *fakeUserRepository) addUser(user *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.IdentityID] = user
}

func (f *fakeUserRepository) gate(identityID string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gates[identityID]
	if !ok {
		g = make(chan struct{}, 4)
		f.gates[identityID] = g
	}
	return g
}

func (f *fakeUserRepository) FindByIdentityID(ctx context.Context, identityID string) (*models.User, error) {
	f.mu.Lock()
	g := f.gates[identityID]
	f.mu.Unlock()
	if g != nil {
		select {
		case <-g:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[identityID], nil
}

func (f *fakeUserRepository) CreateUser(ctx context.Context, user *models.User) (string, error) {
	return "", nil
}
func (f *fakeUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}
func (f *fakeUserRepository) UpdateUser(ctx context.Context, user *models.User) error { return nil }
func (f *fakeUserRepository) DeleteByIdentityID(ctx context.Context, identityID string) error {
	return nil
}

func nextState(t *testing.T, states <-chan models.SessionState) models.SessionState {
	t.Helper()
	select {
	case state := <-states:
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session state")
		return models.SessionState{}
	}
}

func TestSessionResolver(t *testing.T) {
	logger := zap.NewNop()

	setup := func(t *testing.T) (*fakeIdentityProvider, *fakeUserRepository, *sessionStore, <-chan models.SessionState, context.CancelFunc) {
		provider := newFakeIdentityProvider()
		repo := newFakeUserRepository()
		store := NewSessionStore().(*sessionStore)
		resolver := NewSessionResolver(provider, repo, store, logger, time.Hour)

		ctx, cancel := context.WithCancel(context.Background())
		go resolver.Run(ctx)
		t.Cleanup(cancel)

		states := resolver.States()
		initial := nextState(t, states)
		require.Equal(t, models.SessionLoading, initial.Status)
		return provider, repo, store, states, cancel
	}

	t.Run("resolves a principal with a profile", func(t *testing.T) {
		provider, repo, store, states, _ := setup(t)
		repo.addUser(&models.User{ID: "u1", IdentityID: "id-a", Email: "a@x.y", Role: constvars.RoleTypeCaretaker})

		provider.changes <- &models.Principal{IdentityID: "id-a", Email: "a@x.y"}

		assert.Equal(t, models.SessionLoading, nextState(t, states).Status)
		resolved := nextState(t, states)
		require.Equal(t, models.SessionResolved, resolved.Status)
		require.NotNil(t, resolved.Session)
		assert.Equal(t, "id-a", resolved.Session.IdentityID)
		assert.Equal(t, constvars.RoleTypeCaretaker, resolved.Session.Role)
		assert.NotEmpty(t, resolved.Session.SessionID)

		current := store.Current()
		require.NotNil(t, current)
		assert.Equal(t, "id-a", current.IdentityID)
	})

	t.Run("patient session carries its patient id", func(t *testing.T) {
		provider, repo, store, states, _ := setup(t)
		repo.addUser(&models.User{ID: "u7", IdentityID: "id-p", Email: "p@x.y", Role: constvars.RoleTypePatient})

		provider.changes <- &models.Principal{IdentityID: "id-p", Email: "p@x.y"}

		assert.Equal(t, models.SessionLoading, nextState(t, states).Status)
		resolved := nextState(t, states)
		require.Equal(t, models.SessionResolved, resolved.Status)
		assert.Equal(t, "u7", resolved.Session.PatientID)
		assert.Equal(t, "u7", store.Current().PatientID)
	})

	t.Run("missing profile invalidates and forces sign-out", func(t *testing.T) {
		provider, _, store, states, _ := setup(t)

		provider.changes <- &models.Principal{IdentityID: "id-ghost", Email: "g@x.y"}

		assert.Equal(t, models.SessionLoading, nextState(t, states).Status)
		invalid := nextState(t, states)
		require.Equal(t, models.SessionInvalid, invalid.Status)
		assert.Equal(t, constvars.SessionInvalidMissingProfile, invalid.Reason)
		assert.Nil(t, invalid.Session)

		// Forced sign-out flows back as a nil change event.
		signedOut := nextState(t, states)
		assert.Equal(t, models.SessionSignedOut, signedOut.Status)
		assert.Nil(t, store.Current())
		assert.Equal(t, 1, provider.SignOutCount())
	})

	t.Run("unknown role invalidates and forces sign-out", func(t *testing.T) {
		provider, repo, store, states, _ := setup(t)
		repo.addUser(&models.User{ID: "u2", IdentityID: "id-b", Email: "b@x.y", Role: "superuser"})

		provider.changes <- &models.Principal{IdentityID: "id-b", Email: "b@x.y"}

		assert.Equal(t, models.SessionLoading, nextState(t, states).Status)
		invalid := nextState(t, states)
		require.Equal(t, models.SessionInvalid, invalid.Status)
		assert.Equal(t, constvars.SessionInvalidBadRole, invalid.Reason)

		signedOut := nextState(t, states)
		assert.Equal(t, models.SessionSignedOut, signedOut.Status)
		assert.Nil(t, store.Current())
	})

	t.Run("nil change event signs out and resets the store", func(t *testing.T) {
		provider, repo, store, states, _ := setup(t)
		repo.addUser(&models.User{ID: "u3", IdentityID: "id-c", Email: "c@x.y", Role: constvars.RoleTypeMedical})

		provider.changes <- &models.Principal{IdentityID: "id-c", Email: "c@x.y"}
		assert.Equal(t, models.SessionLoading, nextState(t, states).Status)
		require.Equal(t, models.SessionResolved, nextState(t, states).Status)

		provider.changes <- nil
		assert.Equal(t, models.SessionSignedOut, nextState(t, states).Status)
		assert.Nil(t, store.Current())
	})

	t.Run("stale lookup for a superseded identity is discarded", func(t *testing.T) {
		provider, repo, store, states, _ := setup(t)
		repo.addUser(&models.User{ID: "u4", IdentityID: "id-a", Email: "a@x.y", Role: constvars.RoleTypePatient})
		repo.addUser(&models.User{ID: "u5", IdentityID: "id-b", Email: "b@x.y", Role: constvars.RoleTypeMedical})
		gateA := repo.gate("id-a")
		gateB := repo.gate("id-b")

		provider.changes <- &models.Principal{IdentityID: "id-a", Email: "a@x.y"}
		assert.Equal(t, models.SessionLoading, nextState(t, states).Status)

		provider.changes <- &models.Principal{IdentityID: "id-b", Email: "b@x.y"}
		assert.Equal(t, models.SessionLoading, nextState(t, states).Status)

		// A's lookup finishes after B took over: its result must vanish.
		gateA <- struct{}{}
		gateB <- struct{}{}

		resolved := nextState(t, states)
		require.Equal(t, models.SessionResolved, resolved.Status)
		assert.Equal(t, "id-b", resolved.Session.IdentityID)
		assert.Equal(t, constvars.RoleTypeMedical, resolved.Session.Role)

		current := store.Current()
		require.NotNil(t, current)
		assert.Equal(t, "id-b", current.IdentityID)
	})
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()

	assert.Nil(t, store.Current())

	session := &models.Session{SessionID: "s1", IdentityID: "id-1", Role: constvars.RoleTypePatient}
	store.Set(session)
	assert.Equal(t, session, store.Current())

	store.Reset()
	assert.Nil(t, store.Current())
}
