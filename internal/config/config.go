// Package config loads application configuration from environment variables.
// Missing required values are fatal at startup: the server never runs
// without its encryption key, signing secret, or store address.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/altinm/password-vault/internal/crypto"
)

// Config holds all runtime configuration values. VaultKey is the decoded
// 32-byte master key; it is loaded once here and passed to components at
// construction time, never refetched per call.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign session tokens
	VaultKey     []byte // 32-byte AES-256 key for vault secrets
	TokenTTLDays int    // session token time-to-live in days
	BcryptCost   int    // bcrypt cost for password hashing
}

// Load reads configuration from the environment (after merging a .env file
// when present) and returns a Config. Required variables are enforced by
// must(); a malformed vault key is as fatal as a missing one.
func Load() Config {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	key, err := crypto.ParseKey(must("VAULT_ENCRYPTION_KEY"))
	if err != nil {
		log.Fatalf("VAULT_ENCRYPTION_KEY: %v", err)
	}

	return Config{
		Env:          getenv("APP_ENV", "dev"),
		Port:         getenv("APP_PORT", "8080"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"),
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		VaultKey:     key,
		TokenTTLDays: getenvInt("TOKEN_TTL_DAYS", 7),
		BcryptCost:   getenvInt("BCRYPT_COST", 10),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the variable's value or a default when unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvInt is like getenv but parses an integer; a malformed value is fatal.
func getenvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
