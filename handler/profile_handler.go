package handler

import (
	"main/dto"
	"main/middleware"
	"main/repository"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// Me returns the caller's profile plus a summary of their login activity.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.Unauthorized(c, middleware.ErrKindAuthRequired, "No token provided")
		return
	}

	sessions := h.Sessions.GetUserActiveSessions(user.UserID)

	utils.Success(c, gin.H{
		"user":           dto.ToUserResponse(user),
		"activeSessions": len(sessions),
		"currentSession": c.GetString(middleware.CtxSessionID),
	})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.Unauthorized(c, middleware.ErrKindAuthRequired, "No token provided")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	update := repository.UserUpdate{
		JiraConfig:   req.JiraConfig,
		TrelloConfig: req.TrelloConfig,
	}
	if req.Name != "" {
		update.Name = &req.Name
	}

	updated, err := h.Users.UpdateUser(user.UserID, update)
	if err != nil {
		middleware.TrackError("user")
		utils.InternalError(c, "Update failed")
		return
	}

	utils.SuccessMessage(c, "Profile updated successfully", gin.H{
		"user": dto.ToUserResponse(updated),
	})
}

// ChangePassword verifies the current password, stores the new hash, then
// terminates every session for the user so all devices must log in again.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.Unauthorized(c, middleware.ErrKindAuthRequired, "No token provided")
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Current password and new password (min 6 characters) are required")
		return
	}

	if !h.Users.VerifyPassword(user.UserID, req.CurrentPassword) {
		middleware.TrackAuthAttempt("failure", "password_change")
		utils.Unauthorized(c, middleware.ErrKindInvalidToken, "Current password is incorrect")
		return
	}

	if err := h.Users.UpdatePassword(user.UserID, req.NewPassword); err != nil {
		middleware.TrackError("user")
		utils.InternalError(c, "Password change failed")
		return
	}

	h.Sessions.TerminateUserSessions(user.UserID)
	middleware.UpdateActiveSessions(float64(h.Sessions.Stats().ActiveSessions))
	middleware.TrackAuthAttempt("success", "password_change")

	utils.SuccessMessage(c, "Password changed successfully. Please login again.", nil)
}
