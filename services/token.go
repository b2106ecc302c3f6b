package services

import (
	"errors"
	"fmt"
	"time"

	"main/utils"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "taskflow"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenClaims is the verified payload of an identity token. The token is a
// capability, not the source of truth: callers re-check the user and session
// against the live stores on every use.
type TokenClaims struct {
	UserID    string
	SessionID string
	IssuedAt  time.Time
}

// GenerateToken signs a token embedding the user id and, when present, the
// session id created at login. Expiry comes from JWT_EXPIRATION_TIME
// (default 24h).
func GenerateToken(userID, sessionID string) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"user_id": userID,
		"iss":     tokenIssuer,
		"iat":     now.Unix(),
		"exp":     now.Add(time.Duration(utils.JWTExpirationTime) * time.Second).Unix(),
	}
	if sessionID != "" {
		claims["session_id"] = sessionID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(utils.JWTSecretKey))
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

// VerifyToken checks the signature and expiry and returns the claims.
// It is stateless: session and user liveness are the caller's job.
func VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(utils.JWTSecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}

	if iss, ok := claims["iss"].(string); ok && iss != tokenIssuer {
		return nil, ErrInvalidToken
	}

	result := &TokenClaims{UserID: userID}
	if sessionID, ok := claims["session_id"].(string); ok {
		result.SessionID = sessionID
	}
	if iat, ok := claims["iat"].(float64); ok {
		result.IssuedAt = time.Unix(int64(iat), 0)
	}

	return result, nil
}
