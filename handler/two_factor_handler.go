package handler

import (
	"main/dto"
	"main/middleware"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
)

// Setup2FA generates a fresh TOTP secret and provisioning URL. The secret is
// not stored yet; the client proves possession via Enable2FA.
func (h *AuthHandler) Setup2FA(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.Unauthorized(c, middleware.ErrKindAuthRequired, "No token provided")
		return
	}

	if user.TwoFactorEnabled {
		utils.BadRequest(c, "2FA is already enabled")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "taskflow",
		AccountName: user.Email,
	})
	if err != nil {
		middleware.TrackError("auth")
		utils.InternalError(c, "Failed to generate 2FA secret")
		return
	}

	utils.Success(c, gin.H{
		"secret":           key.Secret(),
		"provisioning_url": key.URL(),
	})
}

// Enable2FA turns the second factor on after the client proves it holds the
// secret by submitting a valid code.
func (h *AuthHandler) Enable2FA(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.Unauthorized(c, middleware.ErrKindAuthRequired, "No token provided")
		return
	}

	if user.TwoFactorEnabled {
		utils.BadRequest(c, "2FA is already enabled")
		return
	}

	var req dto.TwoFactorEnableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Secret and code are required")
		return
	}

	if !totp.Validate(req.Code, req.Secret) {
		utils.BadRequest(c, "Invalid 2FA code")
		return
	}

	if err := h.Users.SetTwoFactor(user.UserID, true, req.Secret); err != nil {
		middleware.TrackError("auth")
		utils.InternalError(c, "Failed to enable 2FA")
		return
	}

	utils.SuccessMessage(c, "2FA enabled successfully", nil)
}

func (h *AuthHandler) Disable2FA(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.Unauthorized(c, middleware.ErrKindAuthRequired, "No token provided")
		return
	}

	if !user.TwoFactorEnabled {
		utils.BadRequest(c, "2FA is not enabled")
		return
	}

	var req dto.TwoFactorDisableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Code is required")
		return
	}

	if !totp.Validate(req.Code, user.TwoFactorSecret) {
		utils.Unauthorized(c, middleware.ErrKindInvalidToken, "Invalid 2FA code")
		return
	}

	if err := h.Users.SetTwoFactor(user.UserID, false, ""); err != nil {
		middleware.TrackError("auth")
		utils.InternalError(c, "Failed to disable 2FA")
		return
	}

	utils.SuccessMessage(c, "2FA disabled", nil)
}
