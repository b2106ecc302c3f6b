package handler

import (
	"main/dto"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// ListUsers returns every user plus store counters. Admin role only; the
// route is wired behind middleware.RequireRole(model.RoleAdmin).
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users := h.Users.FindAll()

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.ToUserResponse(user))
	}

	utils.Success(c, gin.H{
		"users": responses,
		"stats": h.Users.Stats(),
	})
}
