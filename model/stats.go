package model

// RegistryStats is a point-in-time snapshot of the session registry.
type RegistryStats struct {
	TotalSessions  int `json:"total_sessions"`
	ActiveSessions int `json:"active_sessions"`
	ConnectedUsers int `json:"connected_users"`
	SocketBindings int `json:"socket_bindings"`
	TotalUsers     int `json:"total_users"`
}

type UserStats struct {
	TotalUsers  int `json:"total_users"`
	ActiveUsers int `json:"active_users"`
}
