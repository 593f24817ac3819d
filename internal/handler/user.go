package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-identity-service/internal/logging"
	"github.com/iliyamo/user-identity-service/internal/middleware"
	"github.com/iliyamo/user-identity-service/internal/model"
	"github.com/iliyamo/user-identity-service/internal/queue"
	"github.com/iliyamo/user-identity-service/internal/service"
)

// UserHandler bundles dependencies for the admin and self-service user
// endpoints.
type UserHandler struct {
	Users *service.UserService
	Log   *logging.Logger

	// PublishDeleted is called best-effort after an admin deletion; nil
	// disables event publishing (tests).
	PublishDeleted func(ctx context.Context, ev queue.UserDeletedEvent)
}

func NewUserHandler(users *service.UserService, log *logging.Logger) *UserHandler {
	return &UserHandler{
		Users: users,
		Log:   log,
		PublishDeleted: func(ctx context.Context, ev queue.UserDeletedEvent) {
			_ = queue.PublishUserDeleted(ctx, ev)
		},
	}
}

// ----- DTOs -----

type userProfileDto struct {
	ID                string     `json:"id"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	ProfilePictureURL *string    `json:"profilePictureUrl"`
	LastLoginDate     *time.Time `json:"lastLoginDate"`
}

type userDto struct {
	ID             string          `json:"id"`
	Email          string          `json:"email"`
	Username       string          `json:"username"`
	Role           string          `json:"role"`
	IsActive       bool            `json:"isActive"`
	EmailConfirmed bool            `json:"emailConfirmed"`
	CreatedAt      time.Time       `json:"createdAt"`
	Profile        *userProfileDto `json:"profile"`
}

type adminUserPatch struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type profilePatch struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	ProfilePictureURL string `json:"profilePictureUrl"`
}

func toUserDto(u model.User) userDto {
	dto := userDto{
		ID:             u.ID.String(),
		Email:          u.Email,
		Username:       u.Username,
		Role:           u.Role,
		IsActive:       u.IsActive,
		EmailConfirmed: u.EmailConfirmed,
		CreatedAt:      u.CreatedAt,
	}
	if u.Profile != nil {
		dto.Profile = &userProfileDto{
			ID:                u.Profile.ID.String(),
			FirstName:         u.Profile.FirstName,
			LastName:          u.Profile.LastName,
			ProfilePictureURL: u.Profile.ProfilePictureURL,
			LastLoginDate:     u.Profile.LastLoginDate,
		}
	}
	return dto
}

// pathID parses the :id route parameter.  An unparseable id behaves like a
// missing user.
func pathID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

// ----- Admin endpoints -----

// GetAllUsers returns every account with its profile.
func (h *UserHandler) GetAllUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListUsers(ctx)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	dtos := make([]userDto, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toUserDto(u))
	}
	return c.JSON(http.StatusOK, dtos)
}

// DeleteUser removes an account and its profile.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.DeleteUser(ctx, id); err != nil {
		return writeError(c, h.Log, err)
	}

	if h.PublishDeleted != nil {
		go h.PublishDeleted(context.Background(), queue.UserDeletedEvent{
			UserID:    id.String(),
			DeletedAt: time.Now().UTC(),
		})
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminUpdateUser patches username and/or role of any account.
func (h *UserHandler) AdminUpdateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found."})
	}
	var req adminUserPatch
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.AdminUpdateUser(ctx, id, req.Username, req.Role); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminUpdateProfile patches the profile of any account.
func (h *UserHandler) AdminUpdateProfile(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found."})
	}
	var req profilePatch
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.AdminUpdateProfile(ctx, id, service.ProfilePatch{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		ProfilePictureURL: req.ProfilePictureURL,
	}); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- Self-service endpoints -----

// ChangeUsername renames the calling user's account.  The new username
// travels in the path, as in the original API.
func (h *UserHandler) ChangeUsername(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.ChangeUsername(ctx, userID, c.Param("newUsername")); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangePassword replaces the calling user's password.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.ChangePassword(ctx, userID, c.Param("newPassword")); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateProfile patches the calling user's profile.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profilePatch
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, userID, service.ProfilePatch{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		ProfilePictureURL: req.ProfilePictureURL,
	}); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
