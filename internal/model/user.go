package model

import (
	"time"

	"github.com/google/uuid"
)

// Role values stored in users.role.  The column is a free-form string so
// additional roles can appear without a migration; these two are the only
// ones the service assigns itself.
const (
	RoleUser  = "User"  // default role given at registration
	RoleAdmin = "Admin" // role required for the admin endpoints
)

// User represents an account record as stored in the `users` table.  Each
// field corresponds to a column.  The json tags are omitted because these
// structs are used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Fields:
//  ID             – primary key (UUID, CHAR(36)).
//  Email          – unique email address, stored lower-cased.
//  Username       – unique username, alphanumeric only.
//  PasswordHash   – bcrypt hashed password.
//  Role           – role name ("User" or "Admin").
//  IsActive       – whether the account is active.
//  EmailConfirmed – whether the email address has been confirmed.
//  CreatedAt      – timestamp of creation.
type User struct {
	ID             uuid.UUID // users.id
	Email          string    // users.email
	Username       string    // users.username
	PasswordHash   string    // users.password_hash
	Role           string    // users.role
	IsActive       bool      // users.is_active
	EmailConfirmed bool      // users.email_confirmed
	CreatedAt      time.Time // users.created_at

	// Profile is populated by queries that join user_profiles; nil when the
	// profile was not requested.
	Profile *UserProfile
}

// UserProfile models a row in the `user_profiles` table.  Every user owns
// exactly one profile, created in the same transaction as the user row and
// removed by the foreign-key cascade when the user is deleted.
//
// Fields:
//  ID                – primary key (UUID).
//  UserID            – owner of the profile (unique, FK to users.id).
//  FirstName         – given name.
//  LastName          – family name.
//  ProfilePictureURL – optional picture reference (nullable).
//  LastLoginDate     – last successful login (nullable, best-effort).
type UserProfile struct {
	ID                uuid.UUID  // user_profiles.id
	UserID            uuid.UUID  // user_profiles.user_id
	FirstName         string     // user_profiles.first_name
	LastName          string     // user_profiles.last_name
	ProfilePictureURL *string    // user_profiles.profile_picture_url (nullable)
	LastLoginDate     *time.Time // user_profiles.last_login_date (nullable)
}
