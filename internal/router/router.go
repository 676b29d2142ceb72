// Package router wires HTTP routes to their handlers. The split matters:
// registration, login and password generation are public; every vault route
// sits behind the bearer-token gate.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/altinm/password-vault/internal/handler"
	"github.com/altinm/password-vault/internal/middleware"
)

// Register mounts all application routes on the provided Echo instance.
func Register(e *echo.Echo, a *handler.AuthHandler, v *handler.VaultHandler, jwtSecret string, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Public: no identity required.
	e.POST("/auth/register", a.Register)
	e.POST("/auth/login", a.Login)
	e.POST("/password/generate", handler.GeneratePassword)

	// Protected: the gate resolves the bearer token and injects the owner
	// identity every vault operation is scoped to. A nil *redis.Client must
	// stay a nil interface, or the gate would call through it.
	var revocations middleware.RevocationChecker
	if rdb != nil {
		revocations = rdb
	}
	g := e.Group("")
	g.Use(middleware.Auth(jwtSecret, revocations))
	g.POST("/auth/logout", a.Logout)
	g.POST("/password/save", v.Save)
	g.GET("/passwords", v.List)
	g.GET("/passwords/:id", v.GetOne)
	g.PUT("/passwords/:id", v.Update)
	g.DELETE("/passwords/:id", v.Delete)
}
