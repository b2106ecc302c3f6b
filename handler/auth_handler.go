package handler

import (
	"errors"
	"time"

	"main/dto"
	"main/middleware"
	"main/repository"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
)

// AuthHandler owns the signup/login/logout flow: user store for identity,
// session registry for login instances.
type AuthHandler struct {
	Users    *repository.UserStore
	Sessions *repository.SessionRegistry
}

func NewAuthHandler(users *repository.UserStore, sessions *repository.SessionRegistry) *AuthHandler {
	return &AuthHandler{Users: users, Sessions: sessions}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.TrackAuthAttempt("failure", "signup")
		utils.BadRequest(c, "Email, password (min 6 characters) and name are required")
		return
	}

	user, err := h.Users.CreateUser(req.Email, req.Password, req.Name, "")
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			middleware.TrackAuthAttempt("failure", "signup")
			utils.Conflict(c, "User with this email already exists")
			return
		}
		middleware.TrackError("auth")
		utils.InternalError(c, "Registration failed")
		return
	}

	session := h.Sessions.CreateSession(user.UserID, map[string]string{
		"signup_date": time.Now().Format(time.RFC3339),
		"user_agent":  c.Request.UserAgent(),
		"device":      utils.DeviceSummary(c.Request.UserAgent()),
	})

	token, err := services.GenerateToken(user.UserID, session.SessionID)
	if err != nil {
		middleware.TrackError("auth")
		utils.InternalError(c, "Failed to generate token")
		return
	}

	middleware.TrackAuthAttempt("success", "signup")
	middleware.UpdateActiveSessions(float64(h.Sessions.Stats().ActiveSessions))

	utils.Created(c, "User registered successfully", gin.H{
		"user":      dto.ToUserResponse(user),
		"token":     token,
		"sessionId": session.SessionID,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.TrackAuthAttempt("failure", "login")
		utils.BadRequest(c, "Email and password are required")
		return
	}

	user := h.Users.FindByEmail(req.Email)
	if user == nil {
		middleware.TrackAuthAttempt("failure", "login")
		utils.Unauthorized(c, middleware.ErrKindInvalidToken, "Invalid email or password")
		return
	}

	if !h.Users.VerifyPassword(user.UserID, req.Password) {
		middleware.TrackAuthAttempt("failure", "login")
		utils.Unauthorized(c, middleware.ErrKindInvalidToken, "Invalid email or password")
		return
	}

	if !user.IsActive {
		middleware.TrackAuthAttempt("failure", "login")
		utils.Forbidden(c, "Account is deactivated, please contact administrator")
		return
	}

	if user.TwoFactorEnabled {
		if req.TwoFactorCode == "" {
			middleware.TrackAuthAttempt("pending", "2fa")
			utils.Success(c, gin.H{
				"requires_2fa": true,
				"message":      "2FA code required",
			})
			return
		}
		if !totp.Validate(req.TwoFactorCode, user.TwoFactorSecret) {
			middleware.TrackAuthAttempt("failure", "2fa")
			utils.Unauthorized(c, middleware.ErrKindInvalidToken, "Invalid 2FA code")
			return
		}
	}

	session := h.Sessions.CreateSession(user.UserID, map[string]string{
		"login_date": time.Now().Format(time.RFC3339),
		"user_agent": c.Request.UserAgent(),
		"device":     utils.DeviceSummary(c.Request.UserAgent()),
		"ip":         c.ClientIP(),
	})

	token, err := services.GenerateToken(user.UserID, session.SessionID)
	if err != nil {
		middleware.TrackError("auth")
		utils.InternalError(c, "Failed to generate token")
		return
	}

	middleware.TrackAuthAttempt("success", "login")
	middleware.UpdateActiveSessions(float64(h.Sessions.Stats().ActiveSessions))

	utils.SuccessMessage(c, "Login successful", gin.H{
		"user":      dto.ToUserResponse(user),
		"token":     token,
		"sessionId": session.SessionID,
		"expiresIn": (time.Duration(utils.JWTExpirationTime) * time.Second).String(),
	})
}

// Logout terminates the session embedded in the presented token. The token
// itself stays verifiable until expiry; the dead session makes it useless for
// anything session-bound.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID := c.GetString(middleware.CtxSessionID); sessionID != "" {
		h.Sessions.TerminateSession(sessionID)
		middleware.UpdateActiveSessions(float64(h.Sessions.Stats().ActiveSessions))
	}

	utils.SuccessMessage(c, "Logged out successfully", nil)
}
