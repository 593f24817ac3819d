package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/user-identity-service/internal/config"
	"github.com/iliyamo/user-identity-service/internal/logging"
	"github.com/iliyamo/user-identity-service/internal/model"
	"github.com/iliyamo/user-identity-service/internal/repository"
	"github.com/iliyamo/user-identity-service/internal/utils"
)

// AuthService orchestrates registration and login.
type AuthService struct {
	users       repository.UserStore
	log         *logging.Logger
	bcryptCost  int
	jwtSecret   string
	jwtIssuer   string
	jwtAudience string
}

func NewAuthService(users repository.UserStore, cfg config.Config, log *logging.Logger) *AuthService {
	return &AuthService{
		users:       users,
		log:         log,
		bcryptCost:  cfg.BcryptCost,
		jwtSecret:   cfg.JWTSecret,
		jwtIssuer:   cfg.JWTIssuer,
		jwtAudience: cfg.JWTAudience,
	}
}

// RegisterInput carries the registration fields as submitted.
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// requiredFields is the statically declared, ordered list of registration
// fields.  The first blank field rejects the request, naming that field.
var requiredFields = []struct {
	name string
	get  func(RegisterInput) string
}{
	{"email", func(in RegisterInput) string { return in.Email }},
	{"username", func(in RegisterInput) string { return in.Username }},
	{"password", func(in RegisterInput) string { return in.Password }},
	{"firstName", func(in RegisterInput) string { return in.FirstName }},
	{"lastName", func(in RegisterInput) string { return in.LastName }},
}

// Register runs the registration workflow: presence checks in declared
// order, semantic validation, uniqueness pre-checks (email before
// username), credential hashing, then one atomic insert of account and
// profile.  A uniqueness race lost at the database comes back as the same
// conflict error the pre-check would have produced.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	for _, f := range requiredFields {
		if strings.TrimSpace(f.get(in)) == "" {
			return nil, &ValidationError{Field: f.name, Message: f.name + " is required."}
		}
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	if !utils.IsValidEmail(email) {
		return nil, &ValidationError{Field: "email", Message: "Invalid email format."}
	}
	if utils.ContainsSpecialCharacters(username) {
		return nil, &ValidationError{Field: "username", Message: "Username can't contain special characters"}
	}
	if !utils.IsPasswordLongEnough(in.Password) {
		return nil, &ValidationError{Field: "password", Message: "Password must be at least 6 characters."}
	}

	// Advisory pre-checks; email first so conflict messages are
	// deterministic.  The unique indexes remain authoritative.
	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ConflictError{Field: "email", Message: "This email is already registered."}
	}
	taken, err = s.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ConflictError{Field: "username", Message: "Username already in use"}
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	profile := &model.UserProfile{
		ID:        uuid.New(),
		UserID:    user.ID,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}

	if err := s.users.Create(ctx, user, profile); err != nil {
		switch err {
		case repository.ErrEmailExists:
			return nil, &ConflictError{Field: "email", Message: "This email is already registered."}
		case repository.ErrUsernameExists:
			return nil, &ConflictError{Field: "username", Message: "Username already in use"}
		}
		return nil, err
	}
	user.Profile = profile

	s.log.Info("Register: user created", "user_id", user.ID.String(), "username", user.Username)
	return user, nil
}

// Login resolves the identifier, verifies the credential and issues an
// identity token.  The last-login timestamp is updated best-effort; a
// failure there is logged and does not block token issuance.
func (s *AuthService) Login(ctx context.Context, emailOrUsername, password string) (string, *model.User, error) {
	identifier := strings.TrimSpace(emailOrUsername)
	if identifier == "" {
		return "", nil, &ValidationError{Field: "emailOrUsername", Message: "emailOrUsername is required."}
	}
	if strings.TrimSpace(password) == "" {
		return "", nil, &ValidationError{Field: "password", Message: "password is required."}
	}

	user, err := s.resolveIdentifier(ctx, identifier)
	if err != nil {
		return "", nil, err
	}

	if !utils.VerifyPassword(user.PasswordHash, password) {
		return "", nil, &AuthError{Message: "Invalid password"}
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.log.Warn("Login: last-login update failed", "user_id", user.ID.String(), "err", err.Error())
	}

	token, _, err := utils.IssueToken(s.jwtSecret, s.jwtIssuer, s.jwtAudience, user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, err
	}

	s.log.Info("Login: user logged in", "user_id", user.ID.String())
	return token, user, nil
}

// resolveIdentifier decides whether the login identifier is an email or a
// username and looks up the matching account.  An identifier that parses
// as an email is always resolved as email, never attempted as username.
// An identifier with disallowed characters fails before any lookup.
func (s *AuthService) resolveIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	if utils.IsValidEmail(identifier) {
		user, err := s.users.FindByEmail(ctx, identifier)
		if err != nil {
			if err == repository.ErrNotFound {
				return nil, &AuthError{Message: "Invalid Email"}
			}
			return nil, err
		}
		return user, nil
	}
	if utils.ContainsSpecialCharacters(identifier) {
		return nil, &ValidationError{Field: "emailOrUsername", Message: "Username can't contain special characters"}
	}
	user, err := s.users.FindByUsername(ctx, identifier)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, &AuthError{Message: "Invalid Username"}
		}
		return nil, err
	}
	return user, nil
}
