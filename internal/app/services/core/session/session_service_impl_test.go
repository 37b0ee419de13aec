package session

import (
	"context"
	"testing"
	"time"

	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedisRepository struct {
	data map[string]string
}

func newFakeRedisRepository() *fakeRedisRepository {
	return &fakeRedisRepository{data: make(map[string]string)}
}

func (f *fakeRedisRepository) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeRedisRepository) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = string(raw)
	return nil
}

func (f *fakeRedisRepository) Get(ctx context.Context, key string) (string, error) {
	return f.data[key], nil
}

func TestSessionService(t *testing.T) {
	t.Run("stores and retrieves session data", func(t *testing.T) {
		redis := newFakeRedisRepository()
		store := NewSessionStore()
		svc := NewSessionService(redis, store)

		session := &models.Session{
			SessionID:  "sess-1",
			IdentityID: "id-1",
			Email:      "a@b.c",
			Role:       constvars.RoleTypePatient,
			ExpiresAt:  time.Now().Add(time.Hour),
		}
		require.NoError(t, svc.StoreSession(context.Background(), session))

		data, err := svc.GetSessionData(context.Background(), "sess-1")
		require.NoError(t, err)
		parsed, err := svc.ParseSessionData(context.Background(), data)
		require.NoError(t, err)
		assert.Equal(t, "id-1", parsed.IdentityID)
		assert.Equal(t, constvars.RoleTypePatient, parsed.Role)

		require.NoError(t, svc.DeleteSession(context.Background(), "sess-1"))
		data, err = svc.GetSessionData(context.Background(), "sess-1")
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("rejects storing an already expired session", func(t *testing.T) {
		svc := NewSessionService(newFakeRedisRepository(), NewSessionStore())

		session := &models.Session{SessionID: "sess-2", ExpiresAt: time.Now().Add(-time.Minute)}
		assert.Error(t, svc.StoreSession(context.Background(), session))
	})

	t.Run("CurrentSession prefers request-scoped session data", func(t *testing.T) {
		store := NewSessionStore()
		svc := NewSessionService(newFakeRedisRepository(), store)

		store.Set(&models.Session{SessionID: "live", IdentityID: "live-id"})

		ctxSession := &models.Session{SessionID: "scoped", IdentityID: "scoped-id"}
		raw, err := json.Marshal(ctxSession)
		require.NoError(t, err)
		ctx := context.WithValue(context.Background(), constvars.CONTEXT_SESSION_DATA_KEY, string(raw))

		current := svc.CurrentSession(ctx)
		require.NotNil(t, current)
		assert.Equal(t, "scoped-id", current.IdentityID)
	})

	t.Run("CurrentSession falls back to the live store", func(t *testing.T) {
		store := NewSessionStore()
		svc := NewSessionService(newFakeRedisRepository(), store)

		assert.Nil(t, svc.CurrentSession(context.Background()))

		store.Set(&models.Session{SessionID: "live", IdentityID: "live-id"})
		current := svc.CurrentSession(context.Background())
		require.NotNil(t, current)
		assert.Equal(t, "live-id", current.IdentityID)
	})
}
