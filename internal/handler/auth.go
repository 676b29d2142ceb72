package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/altinm/password-vault/internal/config"
	"github.com/altinm/password-vault/internal/middleware"
	"github.com/altinm/password-vault/internal/repository"
	"github.com/altinm/password-vault/internal/utils"
)

// RevocationStore is the slice of the Redis API logout needs to denylist a
// token hash. *redis.Client satisfies it.
type RevocationStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// AuthHandler bundles dependencies for the auth endpoints. Revocations may
// be nil; logout then degrades to letting tokens age out.
type AuthHandler struct {
	Cfg         config.Config
	Users       *repository.UserRepo
	Revocations RevocationStore
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, rdb *redis.Client) *AuthHandler {
	h := &AuthHandler{Cfg: cfg, Users: u}
	if rdb != nil {
		h.Revocations = rdb
	}
	return h
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

type authResp struct {
	Token string   `json:"token"`
	User  userPart `json:"user"`
}

// Register creates a user and returns a session token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || strings.TrimSpace(req.Password) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}
	if utf8.RuneCountInString(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "user with this email already exists"})
		}
		return c.JSON(storeErrStatus(err), echo.Map{"error": "create user failed"})
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	return c.JSON(http.StatusCreated, authResp{
		Token: token.Token,
		User:  userPart{ID: uid, Email: req.Email},
	})
}

// Login verifies credentials and returns a fresh session token. An unknown
// email and a wrong password produce byte-identical responses so the
// endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(storeErrStatus(err), echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		Token: token.Token,
		User:  userPart{ID: u.ID, Email: u.Email},
	})
}

// Logout revokes the presented token by denylisting its hash until the
// token would have expired anyway. Runs behind the auth gate, so the token
// is already verified; without Redis this is a no-op and the token simply
// ages out.
func (h *AuthHandler) Logout(c echo.Context) error {
	if h.Revocations != nil {
		raw := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		// Re-parse only to read the expiry: the denylist entry lives exactly
		// as long as the token it blocks, no shorter and no longer.
		if _, exp, err := utils.ParseAccessTokenClaims(h.Cfg.JWTSecret, raw); err == nil {
			if ttl := time.Until(exp); ttl > 0 {
				_ = h.Revocations.Set(c.Request().Context(), middleware.RevocationKey(raw), "1", ttl).Err()
			}
		}
	}
	return c.NoContent(http.StatusNoContent)
}
