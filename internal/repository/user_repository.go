package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/iliyamo/user-identity-service/internal/model"
)

// UserStore is the storage contract the services depend on.  The MySQL
// implementation below owns transactional atomicity; tests substitute a
// fake.
type UserStore interface {
	// Create persists a user and its profile as a single atomic unit.
	Create(ctx context.Context, u *model.User, p *model.UserProfile) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error)
	ListWithProfiles(ctx context.Context) ([]model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	UpdateProfile(ctx context.Context, p *model.UserProfile) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	// Delete removes the user row; the profile goes with it via the
	// foreign-key cascade.
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepo is the MySQL implementation of UserStore.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,username,password_hash,role,is_active,email_confirmed,created_at"

// mapDuplicate converts a MySQL duplicate-key error (1062) into the
// matching sentinel by inspecting which unique index was hit.  This is how
// a uniqueness race lost at the database wins back a clean conflict
// response instead of a generic internal error.
func mapDuplicate(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		switch {
		case strings.Contains(me.Message, "uq_users_email"):
			return ErrEmailExists
		case strings.Contains(me.Message, "uq_users_username"):
			return ErrUsernameExists
		}
	}
	return err
}

// Create inserts the user and profile rows in one transaction.  A partial
// write (user without profile) is never observable.
func (r *UserRepo) Create(ctx context.Context, u *model.User, p *model.UserProfile) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO users (id, email, username, password_hash, role, is_active, email_confirmed, created_at) VALUES (?,?,?,?,?,?,?,?)",
		u.ID.String(), strings.ToLower(u.Email), u.Username, u.PasswordHash, u.Role, u.IsActive, u.EmailConfirmed, u.CreatedAt); err != nil {
		return mapDuplicate(err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO user_profiles (id, user_id, first_name, last_name, profile_picture_url, last_login_date) VALUES (?,?,?,?,?,?)",
		p.ID.String(), p.UserID.String(), p.FirstName, p.LastName, p.ProfilePictureURL, p.LastLoginDate); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *UserRepo) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var id string
	err := row.Scan(&id, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.EmailConfirmed, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail fetches a user by normalized email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// FindByUsername fetches a user by exact username match.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id.String()))
}

// FindProfileByUserID fetches the profile belonging to a user.
func (r *UserRepo) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	var p model.UserProfile
	var id, uid string
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,first_name,last_name,profile_picture_url,last_login_date FROM user_profiles WHERE user_id=? LIMIT 1",
		userID.String()).Scan(&id, &uid, &p.FirstName, &p.LastName, &p.ProfilePictureURL, &p.LastLoginDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if p.UserID, err = uuid.Parse(uid); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListWithProfiles returns all users with their profiles joined in.  Users
// whose profile row is somehow missing are still listed, with Profile nil.
func (r *UserRepo) ListWithProfiles(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.email, u.username, u.password_hash, u.role, u.is_active, u.email_confirmed, u.created_at,
		       p.id, p.first_name, p.last_name, p.profile_picture_url, p.last_login_date
		FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id
		ORDER BY u.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var uid string
		var pid, first, last sql.NullString
		var pic sql.NullString
		var lastLogin sql.NullTime
		if err := rows.Scan(&uid, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.EmailConfirmed, &u.CreatedAt,
			&pid, &first, &last, &pic, &lastLogin); err != nil {
			return nil, err
		}
		if u.ID, err = uuid.Parse(uid); err != nil {
			return nil, err
		}
		if pid.Valid {
			p := model.UserProfile{
				UserID:    u.ID,
				FirstName: first.String,
				LastName:  last.String,
			}
			if p.ID, err = uuid.Parse(pid.String); err != nil {
				return nil, err
			}
			if pic.Valid {
				v := pic.String
				p.ProfilePictureURL = &v
			}
			if lastLogin.Valid {
				t := lastLogin.Time
				p.LastLoginDate = &t
			}
			u.Profile = &p
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// EmailExists reports whether any account already holds the email.  This
// check is advisory; the unique index is authoritative.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE email=? LIMIT 1", email).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// UsernameExists reports whether any account already holds the username.
func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE username=? LIMIT 1", username).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// UpdateUsername renames the account.  A concurrent rename to the same
// name loses against the unique index and comes back as ErrUsernameExists.
// Callers locate the account first, so a zero-row update is not treated as
// missing here (MySQL reports changed rows, not matched rows).
func (r *UserRepo) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET username=? WHERE id=?", username, id.String())
	return mapDuplicate(err)
}

// UpdatePasswordHash replaces the stored credential hash.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id.String())
	return err
}

// UpdateRole sets the account's role tag.
func (r *UserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", role, id.String())
	return err
}

// UpdateProfile writes the mutable profile fields back.
func (r *UserRepo) UpdateProfile(ctx context.Context, p *model.UserProfile) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE user_profiles SET first_name=?, last_name=?, profile_picture_url=? WHERE id=?",
		p.FirstName, p.LastName, p.ProfilePictureURL, p.ID.String())
	return err
}

// UpdateLastLogin stamps the profile's last-login timestamp.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE user_profiles SET last_login_date=? WHERE user_id=?", at, userID.String())
	return err
}

// Delete removes the user; the profile row follows via ON DELETE CASCADE.
// Deleting a user that does not exist yields ErrNotFound.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
