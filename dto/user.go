package dto

import (
	"time"

	"main/model"
)

// UserResponse is the sanitized user shape returned to clients. Password and
// 2FA material never leave the store.
type UserResponse struct {
	UserID           string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Role             string    `json:"role"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	IsActive         bool      `json:"is_active"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	HasJiraConfig    bool      `json:"has_jira_config"`
	HasTrelloConfig  bool      `json:"has_trello_config"`
}

func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		UserID:           user.UserID,
		Email:            user.Email,
		Name:             user.Name,
		Role:             user.Role,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
		IsActive:         user.IsActive,
		TwoFactorEnabled: user.TwoFactorEnabled,
		HasJiraConfig:    user.JiraConfig != nil,
		HasTrelloConfig:  user.TrelloConfig != nil,
	}
}
