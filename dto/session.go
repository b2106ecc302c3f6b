package dto

import (
	"time"

	"main/model"
)

// SessionResponse is the session snapshot returned to clients. IsConnected is
// derived from the socket binding; the socket id itself stays internal.
type SessionResponse struct {
	SessionID    string            `json:"session_id"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActivity time.Time         `json:"last_activity"`
	IsConnected  bool              `json:"is_connected"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

func ToSessionResponse(session *model.Session) SessionResponse {
	return SessionResponse{
		SessionID:    session.SessionID,
		CreatedAt:    session.CreatedAt,
		LastActivity: session.LastActivity,
		IsConnected:  session.SocketID != "",
		Metadata:     session.Metadata,
	}
}

func ToSessionResponses(sessions []*model.Session) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, ToSessionResponse(session))
	}
	return out
}
