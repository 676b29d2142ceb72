package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altinm/password-vault/internal/utils"
)

const testSecret = "gate-test-secret"

// fakeRevocations is an in-memory revocation list.
type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if f.revoked[k] {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func runGate(t *testing.T, authHeader string, rdb RevocationChecker) (*httptest.ResponseRecorder, bool, uint64) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/passwords", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var reached bool
	var uid uint64
	next := func(c echo.Context) error {
		reached = true
		uid, _ = c.Get("user_id").(uint64)
		return c.NoContent(http.StatusOK)
	}
	require.NoError(t, Auth(testSecret, rdb)(next)(c))
	return rec, reached, uid
}

func TestAuthMissingHeader(t *testing.T) {
	rec, reached, _ := runGate(t, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuthWrongScheme(t *testing.T) {
	rec, reached, _ := runGate(t, "Basic dXNlcjpwYXNz", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuthGarbageToken(t *testing.T) {
	rec, reached, _ := runGate(t, "Bearer garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}

func TestAuthValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 42, 7)
	require.NoError(t, err)

	rec, reached, uid := runGate(t, "Bearer "+at.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
	assert.Equal(t, uint64(42), uid)
}

func TestAuthForeignSignature(t *testing.T) {
	at, err := utils.NewAccessToken("some-other-secret", 42, 7)
	require.NoError(t, err)

	rec, reached, _ := runGate(t, "Bearer "+at.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuthRevokedToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 42, 7)
	require.NoError(t, err)
	rdb := &fakeRevocations{revoked: map[string]bool{RevocationKey(at.Token): true}}

	rec, reached, _ := runGate(t, "Bearer "+at.Token, rdb)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)

	// Same body as any other verification failure: revocation must not be
	// distinguishable from the outside.
	garbage, _, _ := runGate(t, "Bearer garbage", rdb)
	assert.Equal(t, garbage.Body.String(), rec.Body.String())
}

func TestAuthUnrevokedTokenPasses(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 42, 7)
	require.NoError(t, err)
	rdb := &fakeRevocations{revoked: map[string]bool{}}

	rec, reached, uid := runGate(t, "Bearer "+at.Token, rdb)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
	assert.Equal(t, uint64(42), uid)
}

func TestAuthRevocationLookupFailureFallsThrough(t *testing.T) {
	// A Redis outage must not lock out holders of valid tokens.
	at, err := utils.NewAccessToken(testSecret, 42, 7)
	require.NoError(t, err)
	rdb := &fakeRevocations{err: errors.New("connection refused")}

	rec, reached, _ := runGate(t, "Bearer "+at.Token, rdb)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}
