package handler

import (
	"main/dto"
	"main/middleware"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// GetSessions lists the caller's active sessions as client-safe snapshots.
func (h *AuthHandler) GetSessions(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	if userID == "" {
		utils.Unauthorized(c, middleware.ErrKindAuthRequired, "No token provided")
		return
	}

	sessions := h.Sessions.GetUserActiveSessions(userID)

	utils.Success(c, gin.H{
		"sessions":       dto.ToSessionResponses(sessions),
		"currentSession": c.GetString(middleware.CtxSessionID),
	})
}

// TerminateSession ends one of the caller's own sessions. A foreign session
// id is reported as not found rather than forbidden, so session ids cannot
// be probed for existence.
func (h *AuthHandler) TerminateSession(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	if userID == "" {
		utils.Unauthorized(c, middleware.ErrKindAuthRequired, "No token provided")
		return
	}

	sessionID := c.Param("sessionId")
	session := h.Sessions.GetSession(sessionID)

	if session == nil || session.UserID != userID {
		utils.NotFound(c, "Session not found")
		return
	}

	h.Sessions.TerminateSession(sessionID)
	middleware.UpdateActiveSessions(float64(h.Sessions.Stats().ActiveSessions))

	utils.SuccessMessage(c, "Session terminated successfully", nil)
}
