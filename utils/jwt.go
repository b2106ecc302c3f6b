package utils

import (
	"log"
	"os"
)

var (
	JWTSecretKey      string
	JWTExpirationTime int64 // seconds
)

// InitJWT loads the token signing configuration from the environment. The
// secret is mandatory outside tests; expiry defaults to 24 hours.
func InitJWT() {
	if os.Getenv("GO_ENV") == "test" && os.Getenv("JWT_SECRET_KEY") == "" {
		os.Setenv("JWT_SECRET_KEY", "test_secret_key")
	}

	JWTSecretKey = os.Getenv("JWT_SECRET_KEY")
	if JWTSecretKey == "" {
		log.Fatal("JWT Secret Key not set")
	}

	JWTExpirationTime = GetEnvAsInt64("JWT_EXPIRATION_TIME", 24*60*60)
}
