package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/user-identity-service/internal/config"
	"github.com/iliyamo/user-identity-service/internal/logging"
	"github.com/iliyamo/user-identity-service/internal/model"
	"github.com/iliyamo/user-identity-service/internal/repository"
	"github.com/iliyamo/user-identity-service/internal/utils"
)

// UserService implements the admin and self-service account mutations.
// Callers arrive already authenticated; role enforcement happens in the
// routing middleware.
type UserService struct {
	users      repository.UserStore
	log        *logging.Logger
	bcryptCost int
}

func NewUserService(users repository.UserStore, cfg config.Config, log *logging.Logger) *UserService {
	return &UserService{users: users, log: log, bcryptCost: cfg.BcryptCost}
}

// ProfilePatch carries the optional profile fields of a PATCH request.
// Blank fields are left untouched.
type ProfilePatch struct {
	FirstName         string
	LastName          string
	ProfilePictureURL string
}

// ListUsers returns every account with its profile.
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.ListWithProfiles(ctx)
}

// DeleteUser removes an account; the profile is cascade-deleted with it.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			s.log.Info("DeleteUser: user not found", "user_id", id.String())
		}
		return notFound(err, "User not found.")
	}
	s.log.Info("DeleteUser: user deleted", "user_id", id.String())
	return nil
}

// AdminUpdateUser applies an admin patch to the account: a username
// rename (validated for charset and collisions) and/or a role change.
// Blank fields are ignored; a username equal to the current one is a
// no-op.
func (s *UserService) AdminUpdateUser(ctx context.Context, id uuid.UUID, username, role string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "User not found.")
	}

	username = strings.TrimSpace(username)
	if username != "" && username != user.Username {
		if utils.ContainsSpecialCharacters(username) {
			return &ValidationError{Field: "username", Message: "Username can't contain special characters"}
		}
		taken, err := s.users.UsernameExists(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return &ConflictError{Field: "username", Message: "Username already in use."}
		}
		if err := s.users.UpdateUsername(ctx, id, username); err != nil {
			if err == repository.ErrUsernameExists {
				return &ConflictError{Field: "username", Message: "Username already in use."}
			}
			return err
		}
	}

	if role = strings.TrimSpace(role); role != "" {
		if err := s.users.UpdateRole(ctx, id, role); err != nil {
			return err
		}
	}

	s.log.Info("AdminUpdateUser: admin updated user", "user_id", id.String())
	return nil
}

// AdminUpdateProfile applies an admin patch to a user's profile.  Both the
// user and the profile must exist.
func (s *UserService) AdminUpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return notFound(err, "User not found.")
	}
	if err := s.applyProfilePatch(ctx, id, patch); err != nil {
		return err
	}
	s.log.Info("AdminUpdateProfile: admin updated profile", "user_id", id.String())
	return nil
}

// ChangeUsername renames the calling user's account.  Charset and
// collision checks run before the account lookup, matching the
// registration ordering.
func (s *UserService) ChangeUsername(ctx context.Context, userID uuid.UUID, newUsername string) error {
	if utils.ContainsSpecialCharacters(newUsername) {
		return &ValidationError{Field: "username", Message: "Username can't contain special characters"}
	}
	taken, err := s.users.UsernameExists(ctx, newUsername)
	if err != nil {
		return err
	}
	if taken {
		return &ConflictError{Field: "username", Message: "Username already in use"}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return notFound(err, "User not found.")
	}
	if err := s.users.UpdateUsername(ctx, userID, newUsername); err != nil {
		if err == repository.ErrUsernameExists {
			return &ConflictError{Field: "username", Message: "Username already in use"}
		}
		return err
	}

	s.log.Info("ChangeUsername: user changed username",
		"user_id", userID.String(), "old", user.Username, "new", newUsername)
	return nil
}

// ChangePassword replaces the calling user's credential after applying the
// password policy.  The plaintext is hashed here and never leaves the call.
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" || !utils.IsPasswordLongEnough(newPassword) {
		return &ValidationError{Field: "password", Message: "Password must be at least 6 characters."}
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return notFound(err, "User not found.")
	}
	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}
	s.log.Info("ChangePassword: user changed password", "user_id", userID.String())
	return nil
}

// UpdateProfile applies a self-service patch to the calling user's
// profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfilePatch) error {
	if err := s.applyProfilePatch(ctx, userID, patch); err != nil {
		return err
	}
	s.log.Info("UpdateProfile: user updated profile", "user_id", userID.String())
	return nil
}

// notFound converts the repository's missing-row sentinel into a typed
// NotFoundError carrying the caller-facing message.
func notFound(err error, msg string) error {
	if err == repository.ErrNotFound {
		return &NotFoundError{Message: msg}
	}
	return err
}

// applyProfilePatch loads the profile and writes back only the non-blank
// fields of the patch.
func (s *UserService) applyProfilePatch(ctx context.Context, userID uuid.UUID, patch ProfilePatch) error {
	profile, err := s.users.FindProfileByUserID(ctx, userID)
	if err != nil {
		return notFound(err, "User profile not found.")
	}
	if v := strings.TrimSpace(patch.FirstName); v != "" {
		profile.FirstName = v
	}
	if v := strings.TrimSpace(patch.LastName); v != "" {
		profile.LastName = v
	}
	if v := strings.TrimSpace(patch.ProfilePictureURL); v != "" {
		profile.ProfilePictureURL = &v
	}
	return s.users.UpdateProfile(ctx, profile)
}
