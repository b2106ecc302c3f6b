package middleware

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"main/model"
	"main/repository"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// Stable error kinds surfaced in the response envelope's "error" field.
const (
	ErrKindAuthRequired    = "Authentication required"
	ErrKindInvalidToken    = "Invalid token"
	ErrKindTokenExpired    = "Token expired"
	ErrKindAccountDisabled = "Account disabled"
)

// Context keys set by the auth middleware.
const (
	CtxUser      = "user"
	CtxUserID    = "user_id"
	CtxSessionID = "session_id"
	CtxToken     = "token"
)

// extractToken pulls the bearer token from the Authorization header, falling
// back to the ?token= query parameter.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

// AuthRequired verifies the bearer token, re-validates the user against the
// store, refreshes session activity, and attaches the identity to the
// request context. The token is never trusted as session state on its own.
func AuthRequired(users *repository.UserStore, sessions *repository.SessionRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			utils.Unauthorized(c, ErrKindAuthRequired, "No token provided")
			c.Abort()
			return
		}

		claims, err := services.VerifyToken(token)
		if err != nil {
			TrackError("auth")
			if errors.Is(err, services.ErrTokenExpired) {
				utils.Unauthorized(c, ErrKindTokenExpired, "Please login again")
			} else {
				utils.Unauthorized(c, ErrKindInvalidToken, "Token verification failed")
			}
			c.Abort()
			return
		}

		user := users.FindByID(claims.UserID)
		if user == nil {
			utils.Unauthorized(c, ErrKindInvalidToken, "User not found")
			c.Abort()
			return
		}
		if !user.IsActive {
			utils.Unauthorized(c, ErrKindAccountDisabled, "Your account has been deactivated")
			c.Abort()
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxUserID, user.UserID)
		c.Set(CtxToken, token)

		if claims.SessionID != "" {
			sessions.UpdateActivity(claims.SessionID)
			c.Set(CtxSessionID, claims.SessionID)
		}

		c.Next()
	}
}

// AuthOptional attaches the identity when a valid token is presented but
// never rejects the request. Endpoints behind it behave differently for
// anonymous and identified callers.
func AuthOptional(users *repository.UserStore, sessions *repository.SessionRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := services.VerifyToken(token)
		if err != nil {
			c.Next()
			return
		}

		user := users.FindByID(claims.UserID)
		if user == nil || !user.IsActive {
			c.Next()
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxUserID, user.UserID)
		c.Set(CtxToken, token)

		if claims.SessionID != "" {
			sessions.UpdateActivity(claims.SessionID)
			c.Set(CtxSessionID, claims.SessionID)
		}

		c.Next()
	}
}

// RequireRole rejects callers whose role is not in the allowed set. Run it
// after AuthRequired.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(CtxUserID)
		if !exists || userID == "" {
			utils.Unauthorized(c, ErrKindAuthRequired, "No token provided")
			c.Abort()
			return
		}

		user := CurrentUser(c)
		for _, role := range roles {
			if user != nil && user.Role == role {
				c.Next()
				return
			}
		}

		utils.Forbidden(c, "Required role: "+strings.Join(roles, " or "))
		c.Abort()
	}
}

// RateLimit gates the endpoint per identity: the authenticated user id when
// present, the caller IP otherwise. Place it after any auth middleware so
// authenticated callers are throttled by user, not address.
func RateLimit(limiter *services.RateLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.GetString(CtxUserID)
		if identity == "" {
			identity = c.ClientIP()
		}

		if !limiter.Allow(identity, limit, window) {
			retryAfter := int(math.Ceil(window.Seconds()))
			RateLimitRejections.WithLabelValues(c.FullPath()).Inc()
			utils.TooManyRequests(c, "Rate limit exceeded. Try again in "+strconv.Itoa(retryAfter)+" seconds", retryAfter)
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser returns the user attached by the auth middleware, or nil.
func CurrentUser(c *gin.Context) *model.User {
	if v, exists := c.Get(CtxUser); exists {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}
