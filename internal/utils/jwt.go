package utils // helpers for session token creation, verification and hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification:
// malformed, expired, wrong signature, or missing the subject claim. Callers
// must not distinguish between these cases in responses.
var ErrInvalidToken = errors.New("invalid or expired token")

// AccessToken is a signed session token together with its expiry. The Token
// field is the serialized JWT placed in the Authorization header.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken signs an HS256 JWT binding the user ID as the subject
// claim. ttlDays controls the expiry; tokens are stateless and only die by
// expiring (or by an explicit revocation-list entry, see middleware).
func NewAccessToken(secret string, userID uint64, ttlDays int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry and returns the user ID
// from the subject claim. The signing method is pinned to HMAC so a token
// signed with a different algorithm is rejected.
func ParseAccessToken(secret, raw string) (uint64, error) {
	id, _, err := ParseAccessTokenClaims(secret, raw)
	return id, err
}

// ParseAccessTokenClaims is ParseAccessToken plus the token's expiry, for
// callers that need the remaining lifetime (the revocation list sizes its
// TTL from it). Tokens without an exp claim are rejected outright.
func ParseAccessTokenClaims(secret, raw string) (uint64, time.Time, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, time.Time{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, time.Time{}, ErrInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, time.Time{}, ErrInvalidToken
	}
	switch sub := claims["sub"].(type) {
	case float64:
		// JSON numbers decode as float64.
		return uint64(sub), exp.Time, nil
	case string:
		id, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return 0, time.Time{}, ErrInvalidToken
		}
		return id, exp.Time, nil
	default:
		return 0, time.Time{}, ErrInvalidToken
	}
}

// HashToken returns the SHA-256 hex digest of a raw token. The revocation
// list stores only hashes so a leaked list cannot be replayed as sessions.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
