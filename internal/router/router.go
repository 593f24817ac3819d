package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/user-identity-service/internal/config"
	"github.com/iliyamo/user-identity-service/internal/handler"
	"github.com/iliyamo/user-identity-service/internal/middleware"
	"github.com/iliyamo/user-identity-service/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the identity API.  Registration and login are
// unauthenticated; everything under /api/user requires a valid identity
// token, with the admin operations additionally gated on the Admin role
// and the self-service operations on the User role.  The admin user
// listing sits behind the Redis response cache when a client is
// available.
func RegisterAPI(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, cfg config.Config, rdb *redis.Client) {
	e.POST("/api/login/register", a.Register)
	e.POST("/api/login", a.Login)

	user := e.Group("/api/user")
	user.Use(middleware.JWTAuth(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience))

	admin := user.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.GET("", u.GetAllUsers, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	admin.DELETE("/:id", u.DeleteUser)
	admin.PATCH("/:id/admin-user", u.AdminUpdateUser)
	admin.PATCH("/:id/admin-profile", u.AdminUpdateProfile)

	self := user.Group("", middleware.RequireRole(model.RoleUser))
	self.PATCH("/username/:newUsername", u.ChangeUsername)
	self.PATCH("/password/:newPassword", u.ChangePassword)
	self.PATCH("/profile", u.UpdateProfile)
}
