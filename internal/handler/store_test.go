package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/user-identity-service/internal/config"
	"github.com/iliyamo/user-identity-service/internal/logging"
	"github.com/iliyamo/user-identity-service/internal/model"
	"github.com/iliyamo/user-identity-service/internal/repository"
	"github.com/iliyamo/user-identity-service/internal/service"
	"github.com/iliyamo/user-identity-service/internal/utils"
)

// memStore is a minimal in-memory UserStore backing the endpoint tests.
type memStore struct {
	users    map[uuid.UUID]*model.User
	profiles map[uuid.UUID]*model.UserProfile

	createErr error // overrides Create when set
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*model.User),
		profiles: make(map[uuid.UUID]*model.UserProfile),
	}
}

func (m *memStore) seed(t *testing.T, email, username, password, role string) *model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("seed hash error: %v", err)
	}
	u := &model.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(email),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	m.users[u.ID] = u
	m.profiles[u.ID] = &model.UserProfile{ID: uuid.New(), UserID: u.ID, FirstName: "First", LastName: "Last"}
	return u
}

func (m *memStore) Create(ctx context.Context, u *model.User, p *model.UserProfile) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.users {
		if existing.Email == strings.ToLower(u.Email) {
			return repository.ErrEmailExists
		}
		if existing.Username == u.Username {
			return repository.ErrUsernameExists
		}
	}
	cu, cp := *u, *p
	m.users[u.ID] = &cu
	m.profiles[u.ID] = &cp
	return nil
}

func (m *memStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			cu := *u
			return &cu, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cu := *u
			return &cu, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cu := *u
	return &cu, nil
}

func (m *memStore) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListWithProfiles(ctx context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		cu := *u
		if p, ok := m.profiles[u.ID]; ok {
			cp := *p
			cu.Profile = &cp
		}
		out = append(out, cu)
	}
	return out, nil
}

func (m *memStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *memStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *memStore) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	if u, ok := m.users[id]; ok {
		u.Username = username
	}
	return nil
}

func (m *memStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	if u, ok := m.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (m *memStore) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	if u, ok := m.users[id]; ok {
		u.Role = role
	}
	return nil
}

func (m *memStore) UpdateProfile(ctx context.Context, p *model.UserProfile) error {
	cp := *p
	m.profiles[p.UserID] = &cp
	return nil
}

func (m *memStore) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	if p, ok := m.profiles[userID]; ok {
		ts := at
		p.LastLoginDate = &ts
	}
	return nil
}

func (m *memStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	delete(m.profiles, id)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:   "test-secret",
		JWTIssuer:   "identity-service",
		JWTAudience: "identity-clients",
		BcryptCost:  bcrypt.MinCost,
	}
}

// newAuthHandler builds an AuthHandler over the store with event
// publishing disabled.
func newAuthHandler(store *memStore) *AuthHandler {
	svc := service.NewAuthService(store, testConfig(), logging.Discard())
	return &AuthHandler{Auth: svc, Log: logging.Discard()}
}

// newUserHandler builds a UserHandler over the store with event
// publishing disabled.
func newUserHandler(store *memStore) *UserHandler {
	svc := service.NewUserService(store, testConfig(), logging.Discard())
	return &UserHandler{Users: svc, Log: logging.Discard()}
}

// doJSON runs a handler through Echo with an optional JSON body and
// returns the recorded response.
func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

// asUser stamps the context the way JWTAuth would for the given user.
func asUser(u *model.User) func(echo.Context) {
	return func(c echo.Context) {
		c.Set("user_id", u.ID)
		c.Set("email", u.Email)
		c.Set("role", u.Role)
	}
}
