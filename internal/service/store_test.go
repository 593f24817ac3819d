package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/user-identity-service/internal/config"
	"github.com/iliyamo/user-identity-service/internal/logging"
	"github.com/iliyamo/user-identity-service/internal/model"
	"github.com/iliyamo/user-identity-service/internal/repository"
	"github.com/iliyamo/user-identity-service/internal/utils"
)

// fakeStore is an in-memory UserStore.  It enforces the same uniqueness
// the MySQL indexes would, returning the repository sentinels, and counts
// lookups so tests can assert that resolution short-circuits.
type fakeStore struct {
	users    map[uuid.UUID]*model.User
	profiles map[uuid.UUID]*model.UserProfile // keyed by user id

	createErr    error // overrides Create when set
	lastLoginErr error // overrides UpdateLastLogin when set

	lookups int // FindByEmail + FindByUsername calls
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uuid.UUID]*model.User),
		profiles: make(map[uuid.UUID]*model.UserProfile),
	}
}

// seed inserts a user + profile directly, bypassing validation, and
// returns the user.
func (f *fakeStore) seed(t *testing.T, email, username, password, role string) *model.User {
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
	f.users[u.ID] = u
	f.profiles[u.ID] = &model.UserProfile{ID: uuid.New(), UserID: u.ID, FirstName: "First", LastName: "Last"}
	return u
}

func (f *fakeStore) Create(ctx context.Context, u *model.User, p *model.UserProfile) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == strings.ToLower(u.Email) {
			return repository.ErrEmailExists
		}
		if existing.Username == u.Username {
			return repository.ErrUsernameExists
		}
	}
	cu, cp := *u, *p
	f.users[u.ID] = &cu
	f.profiles[u.ID] = &cp
	return nil
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.lookups++
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			cu := *u
			return &cu, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	f.lookups++
	for _, u := range f.users {
		if u.Username == username {
			cu := *u
			return &cu, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cu := *u
	return &cu, nil
}

func (f *fakeStore) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListWithProfiles(ctx context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		cu := *u
		if p, ok := f.profiles[u.ID]; ok {
			cp := *p
			cu.Profile = &cp
		}
		out = append(out, cu)
	}
	return out, nil
}

func (f *fakeStore) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	for _, u := range f.users {
		if u.ID != id && u.Username == username {
			return repository.ErrUsernameExists
		}
	}
	if u, ok := f.users[id]; ok {
		u.Username = username
	}
	return nil
}

func (f *fakeStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	if u, ok := f.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (f *fakeStore) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	if u, ok := f.users[id]; ok {
		u.Role = role
	}
	return nil
}

func (f *fakeStore) UpdateProfile(ctx context.Context, p *model.UserProfile) error {
	cp := *p
	f.profiles[p.UserID] = &cp
	return nil
}

func (f *fakeStore) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	if f.lastLoginErr != nil {
		return f.lastLoginErr
	}
	if p, ok := f.profiles[userID]; ok {
		t := at
		p.LastLoginDate = &t
	}
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	delete(f.profiles, id)
	return nil
}

// testConfig returns a config with the knobs the services read.
func testConfig() config.Config {
	return config.Config{
		JWTSecret:   "test-secret",
		JWTIssuer:   "identity-service",
		JWTAudience: "identity-clients",
		BcryptCost:  bcrypt.MinCost,
	}
}

func newAuthService(f *fakeStore) *AuthService {
	return NewAuthService(f, testConfig(), logging.Discard())
}

func newUserService(f *fakeStore) *UserService {
	return NewUserService(f, testConfig(), logging.Discard())
}
