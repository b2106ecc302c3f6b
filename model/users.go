package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type JiraConfig struct {
	Domain     string `json:"domain"`
	Email      string `json:"email"`
	APIToken   string `json:"api_token"`
	ProjectKey string `json:"project_key"`
}

type TrelloConfig struct {
	APIKey   string `json:"api_key"`
	APIToken string `json:"api_token"`
	BoardID  string `json:"board_id"`
	ListID   string `json:"list_id,omitempty"`
}

type User struct {
	UserID           string        `json:"user_id"`
	Email            string        `json:"email"`
	Name             string        `json:"name"`
	Password         string        `json:"-"` // salted argon2 hash, never serialized
	Role             string        `json:"role"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	IsActive         bool          `json:"is_active"`
	TwoFactorEnabled bool          `json:"two_factor_enabled"`
	TwoFactorSecret  string        `json:"-"`
	JiraConfig       *JiraConfig   `json:"-"`
	TrelloConfig     *TrelloConfig `json:"-"`
}
