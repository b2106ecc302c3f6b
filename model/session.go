package model

import "time"

// Session is one authenticated login instance. A session outlives any single
// websocket connection; SocketID is set only while a connection is bound.
type Session struct {
	SessionID    string            `json:"session_id"`
	UserID       string            `json:"user_id"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActivity time.Time         `json:"last_activity"`
	EndedAt      *time.Time        `json:"ended_at,omitempty"`
	IsActive     bool              `json:"is_active"`
	SocketID     string            `json:"socket_id,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}
