package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-identity-service/internal/logging"
	"github.com/iliyamo/user-identity-service/internal/queue"
	"github.com/iliyamo/user-identity-service/internal/service"
)

// AuthHandler bundles dependencies for the registration and login
// endpoints.
type AuthHandler struct {
	Auth *service.AuthService
	Log  *logging.Logger

	// PublishRegistered is called best-effort after a successful
	// registration; nil disables event publishing (tests).
	PublishRegistered func(ctx context.Context, ev queue.UserRegisteredEvent)
}

func NewAuthHandler(auth *service.AuthService, log *logging.Logger) *AuthHandler {
	return &AuthHandler{
		Auth: auth,
		Log:  log,
		PublishRegistered: func(ctx context.Context, ev queue.UserRegisteredEvent) {
			_ = queue.PublishUserRegistered(ctx, ev)
		},
	}
}

// ----- DTOs -----

type registerReq struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginReq struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

// Register: validate, check uniqueness, hash the credential and persist
// account + profile atomically.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Auth.Register(ctx, service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}

	if h.PublishRegistered != nil {
		go h.PublishRegistered(context.Background(), queue.UserRegisteredEvent{
			UserID:       user.ID.String(),
			Email:        user.Email,
			Username:     user.Username,
			RegisteredAt: user.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully Registered"})
}

// Login: resolve the identifier, verify the password and return a signed
// identity token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token, _, err := h.Auth.Login(ctx, req.EmailOrUsername, req.Password)
	if err != nil {
		return writeError(c, h.Log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token})
}
