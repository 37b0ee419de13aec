package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"carealert-service/internal/app/config"
	"carealert-service/internal/app/models"
	"carealert-service/internal/pkg/constvars"
	"carealert-service/internal/pkg/dto/requests"
	"carealert-service/internal/pkg/exceptions"
	"carealert-service/internal/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIdentityProvider struct {
	principal *models.Principal
	signInErr error

	mu           sync.Mutex
	signOutCalls int
}

func (s *stubIdentityProvider) SignIn(ctx context.Context, email, password string) (*models.Principal, error) {
	if s.signInErr != nil {
		return nil, s.signInErr
	}
	return s.principal, nil
}

func (s *stubIdentityProvider) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signOutCalls++
	return nil
}

func (s *stubIdentityProvider) SessionChanges() <-chan *models.Principal { return nil }

func (s *stubIdentityProvider) SignOutCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signOutCalls
}

type stubUserRepository struct {
	byEmail    map[string]*models.User
	byIdentity map[string]*models.User
	created    []*models.User
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{
		byEmail:    make(map[string]*models.User),
		byIdentity: make(map[string]*models.User),
	}
}

func (s *stubUserRepository) CreateUser(ctx context.Context, user *models.User) (string, error) {
	s.created = append(s.created, user)
	return "new-user-id", nil
}

func (s *stubUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.byEmail[email], nil
}

func (s *stubUserRepository) FindByIdentityID(ctx context.Context, identityID string) (*models.User, error) {
	return s.byIdentity[identityID], nil
}

func (s *stubUserRepository) UpdateUser(ctx context.Context, user *models.User) error { return nil }
func (s *stubUserRepository) DeleteByIdentityID(ctx context.Context, identityID string) error {
	return nil
}

type stubSessionService struct {
	current *models.Session
	stored  []*models.Session
	deleted []string
}

func (s *stubSessionService) CurrentSession(ctx context.Context) *models.Session { return s.current }
func (s *stubSessionService) ParseSessionData(ctx context.Context, sessionData string) (*models.Session, error) {
	return nil, nil
}
func (s *stubSessionService) GetSessionData(ctx context.Context, sessionID string) (string, error) {
	return "", nil
}
func (s *stubSessionService) StoreSession(ctx context.Context, session *models.Session) error {
	s.stored = append(s.stored, session)
	return nil
}
func (s *stubSessionService) DeleteSession(ctx context.Context, sessionID string) error {
	s.deleted = append(s.deleted, sessionID)
	return nil
}

type recordedAudit struct {
	action  string
	details map[string]interface{}
}

type stubAuditUsecase struct {
	records []recordedAudit
}

func (s *stubAuditUsecase) Record(ctx context.Context, action string, details map[string]interface{}) {
	s.records = append(s.records, recordedAudit{action: action, details: details})
}
func (s *stubAuditUsecase) RecordDeviceAction(ctx context.Context, action, deviceName string) {}
func (s *stubAuditUsecase) RecordDataAccess(ctx context.Context, resource string)             {}
func (s *stubAuditUsecase) RecordError(ctx context.Context, operation string, err error)      {}
func (s *stubAuditUsecase) ArchiveBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

func testInternalConfig() *config.InternalConfig {
	return &config.InternalConfig{
		JWT: config.JWT{Secret: "test-secret", ExpTimeInHour: 1},
	}
}

func clientMessage(t *testing.T, err error) string {
	t.Helper()
	var customErr *exceptions.CustomError
	require.True(t, errors.As(err, &customErr), "expected a CustomError, got %v", err)
	return customErr.ClientMessage
}

func TestAuthUsecaseSignup(t *testing.T) {
	request := &requests.Signup{
		Email:          "new@x.y",
		FullName:       "New User",
		Password:       "Sup3r$ecret",
		RetypePassword: "Sup3r$ecret",
	}

	t.Run("unknown role is rejected", func(t *testing.T) {
		uc := NewAuthUsecase(&stubIdentityProvider{}, newStubUserRepository(), &stubSessionService{}, &stubAuditUsecase{}, testInternalConfig())

		_, err := uc.Signup(context.Background(), "admin", request)
		require.Error(t, err)
		assert.Equal(t, constvars.ErrClientUnknownRole, clientMessage(t, err))
	})

	t.Run("existing email is rejected", func(t *testing.T) {
		repo := newStubUserRepository()
		repo.byEmail["new@x.y"] = &models.User{Email: "new@x.y"}
		uc := NewAuthUsecase(&stubIdentityProvider{}, repo, &stubSessionService{}, &stubAuditUsecase{}, testInternalConfig())

		_, err := uc.Signup(context.Background(), constvars.RoleTypePatient, request)
		require.Error(t, err)
		assert.Equal(t, constvars.ErrClientEmailAlreadyExists, clientMessage(t, err))
	})

	t.Run("creates a profile with a hashed password", func(t *testing.T) {
		repo := newStubUserRepository()
		uc := NewAuthUsecase(&stubIdentityProvider{}, repo, &stubSessionService{}, &stubAuditUsecase{}, testInternalConfig())

		response, err := uc.Signup(context.Background(), constvars.RoleTypeCaretaker, request)
		require.NoError(t, err)
		assert.Equal(t, "new-user-id", response.UserID)
		assert.Equal(t, constvars.RoleTypeCaretaker, response.Role)

		require.Len(t, repo.created, 1)
		created := repo.created[0]
		assert.NotEmpty(t, created.IdentityID)
		assert.NotEqual(t, request.Password, created.Password)
		assert.True(t, utils.CheckPasswordHash(request.Password, created.Password))
	})
}

func TestAuthUsecaseLogin(t *testing.T) {
	principal := &models.Principal{IdentityID: "id-1", Email: "u@x.y"}
	request := &requests.Login{Email: "u@x.y", Password: "Sup3r$ecret"}

	t.Run("resolves profile, stores session, returns dashboard path", func(t *testing.T) {
		repo := newStubUserRepository()
		repo.byIdentity["id-1"] = &models.User{ID: "u1", IdentityID: "id-1", Email: "u@x.y", Role: constvars.RoleTypePatient}
		sessions := &stubSessionService{}
		audit := &stubAuditUsecase{}
		uc := NewAuthUsecase(&stubIdentityProvider{principal: principal}, repo, sessions, audit, testInternalConfig())

		response, err := uc.Login(context.Background(), request)
		require.NoError(t, err)
		assert.Equal(t, constvars.RoleTypePatient, response.Role)
		assert.Equal(t, "/dashboard/patient", response.DashboardPath)

		require.Len(t, sessions.stored, 1)
		stored := sessions.stored[0]
		assert.Equal(t, "id-1", stored.IdentityID)
		assert.Equal(t, "u1", stored.PatientID)

		sessionID, err := utils.ParseSessionJWT(response.Token, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, stored.SessionID, sessionID)

		require.Len(t, audit.records, 1)
		assert.Equal(t, constvars.AuditActionLogin, audit.records[0].action)
	})

	t.Run("missing profile forces sign-out", func(t *testing.T) {
		provider := &stubIdentityProvider{principal: principal}
		uc := NewAuthUsecase(provider, newStubUserRepository(), &stubSessionService{}, &stubAuditUsecase{}, testInternalConfig())

		_, err := uc.Login(context.Background(), request)
		require.Error(t, err)
		assert.Equal(t, constvars.ErrClientNotAuthorized, clientMessage(t, err))
		assert.Equal(t, 1, provider.SignOutCount())
	})

	t.Run("unknown role forces sign-out", func(t *testing.T) {
		provider := &stubIdentityProvider{principal: principal}
		repo := newStubUserRepository()
		repo.byIdentity["id-1"] = &models.User{ID: "u1", IdentityID: "id-1", Role: "superuser"}
		uc := NewAuthUsecase(provider, repo, &stubSessionService{}, &stubAuditUsecase{}, testInternalConfig())

		_, err := uc.Login(context.Background(), request)
		require.Error(t, err)
		assert.Equal(t, 1, provider.SignOutCount())
	})

	t.Run("identity errors pass through untouched", func(t *testing.T) {
		signInErr := exceptions.ErrInvalidEmailOrPassword(errors.New("nope"))
		uc := NewAuthUsecase(&stubIdentityProvider{signInErr: signInErr}, newStubUserRepository(), &stubSessionService{}, &stubAuditUsecase{}, testInternalConfig())

		_, err := uc.Login(context.Background(), request)
		assert.Equal(t, signInErr, err)
	})
}

func TestAuthUsecaseLogout(t *testing.T) {
	t.Run("without a session fails", func(t *testing.T) {
		uc := NewAuthUsecase(&stubIdentityProvider{}, newStubUserRepository(), &stubSessionService{}, &stubAuditUsecase{}, testInternalConfig())

		err := uc.Logout(context.Background())
		require.Error(t, err)
	})

	t.Run("records, deletes the session and signs out", func(t *testing.T) {
		provider := &stubIdentityProvider{}
		sessions := &stubSessionService{current: &models.Session{SessionID: "sess-9", IdentityID: "id-9", Email: "u@x.y"}}
		audit := &stubAuditUsecase{}
		uc := NewAuthUsecase(provider, newStubUserRepository(), sessions, audit, testInternalConfig())

		require.NoError(t, uc.Logout(context.Background()))

		require.Len(t, audit.records, 1)
		assert.Equal(t, constvars.AuditActionLogout, audit.records[0].action)
		assert.Equal(t, []string{"sess-9"}, sessions.deleted)
		assert.Equal(t, 1, provider.SignOutCount())
	})
}
