package dto

import "main/model"

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,password"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required"`
	TwoFactorCode string `json:"two_factor_code"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,password"`
}

type UpdateProfileRequest struct {
	Name         string              `json:"name"`
	JiraConfig   *model.JiraConfig   `json:"jira_config"`
	TrelloConfig *model.TrelloConfig `json:"trello_config"`
}

type TwoFactorEnableRequest struct {
	Secret string `json:"secret" binding:"required"`
	Code   string `json:"code" binding:"required"`
}

type TwoFactorDisableRequest struct {
	Code string `json:"code" binding:"required"`
}

type ExtractTasksRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}
