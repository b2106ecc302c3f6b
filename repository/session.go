package repository

import (
	"sort"
	"sync"
	"time"

	"main/model"

	"github.com/google/uuid"
)

// SessionRegistry is the authoritative in-memory store of sessions. It owns
// the session table and both secondary indices (user -> session ids,
// socket -> user id); nothing else mutates them. All operations are safe for
// concurrent use from HTTP handlers, the websocket hub, and the sweeper.
//
// Construct one instance at startup with NewSessionRegistry and pass it to
// dependents. Sessions do not survive a process restart.
type SessionRegistry struct {
	mu           sync.RWMutex
	sessions     map[string]*model.Session
	userSessions map[string]map[string]struct{}
	socketUsers  map[string]string
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions:     make(map[string]*model.Session),
		userSessions: make(map[string]map[string]struct{}),
		socketUsers:  make(map[string]string),
	}
}

// CreateSession inserts a new active session for userID and indexes it under
// the user. The metadata bag is stored as supplied (user agent, login time).
func (r *SessionRegistry) CreateSession(userID string, metadata map[string]string) *model.Session {
	now := time.Now()
	session := &model.Session{
		SessionID:    uuid.New().String(),
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
		IsActive:     true,
		Metadata:     metadata,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.SessionID] = session
	if r.userSessions[userID] == nil {
		r.userSessions[userID] = make(map[string]struct{})
	}
	r.userSessions[userID][session.SessionID] = struct{}{}

	return copySession(session)
}

// GetSession returns a snapshot of the session, or nil if unknown.
func (r *SessionRegistry) GetSession(sessionID string) *model.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	return copySession(session)
}

// UpdateActivity refreshes the session's last-activity timestamp. Unknown or
// terminated sessions are left untouched.
func (r *SessionRegistry) UpdateActivity(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[sessionID]; ok && session.IsActive {
		session.LastActivity = time.Now()
	}
}

// LinkSocket binds a websocket connection to a session and records the
// socket -> user entry in the reverse index. A socket already bound to
// another session is moved; a session already holding another socket drops
// it. Linking an unknown or terminated session is refused — termination wins
// the terminate/link race, so a late link on a dead session is dropped.
func (r *SessionRegistry) LinkSocket(sessionID, socketID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok || !session.IsActive {
		return false
	}

	// The socket may be bound to a different session from a previous
	// authenticate; detach it so it never resolves to two sessions.
	r.unlinkSocketLocked(socketID)

	if session.SocketID != "" && session.SocketID != socketID {
		delete(r.socketUsers, session.SocketID)
	}

	session.SocketID = socketID
	session.LastActivity = time.Now()
	r.socketUsers[socketID] = session.UserID
	return true
}

// UnlinkSocket removes the reverse index entry and clears the socket from
// whichever session holds it. Safe to call for sockets that were never linked.
func (r *SessionRegistry) UnlinkSocket(socketID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unlinkSocketLocked(socketID)
}

func (r *SessionRegistry) unlinkSocketLocked(socketID string) {
	userID, ok := r.socketUsers[socketID]
	if !ok {
		return
	}
	delete(r.socketUsers, socketID)

	for sessionID := range r.userSessions[userID] {
		if session, ok := r.sessions[sessionID]; ok && session.SocketID == socketID {
			session.SocketID = ""
		}
	}
}

// TerminateSession marks the session inactive, stamps its end time, removes
// it from the user index, and unbinds any live socket. Terminating an unknown
// or already-terminated session is a no-op. The record itself is retained for
// the lifetime of the process so stats keep counting it.
func (r *SessionRegistry) TerminateSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terminateSessionLocked(sessionID)
}

func (r *SessionRegistry) terminateSessionLocked(sessionID string) {
	session, ok := r.sessions[sessionID]
	if !ok || !session.IsActive {
		return
	}

	now := time.Now()
	session.IsActive = false
	session.EndedAt = &now

	if set, ok := r.userSessions[session.UserID]; ok {
		delete(set, sessionID)
	}

	if session.SocketID != "" {
		delete(r.socketUsers, session.SocketID)
		session.SocketID = ""
	}
}

// TerminateUserSessions terminates every session indexed under the user and
// drops the index entry. Used after a password change to force fresh logins.
func (r *SessionRegistry) TerminateUserSessions(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for sessionID := range r.userSessions[userID] {
		r.terminateSessionLocked(sessionID)
	}
	delete(r.userSessions, userID)
}

// GetUserActiveSessions returns snapshots of the user's active sessions,
// most recently active first.
func (r *SessionRegistry) GetUserActiveSessions(userID string) []*model.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []*model.Session
	for sessionID := range r.userSessions[userID] {
		if session, ok := r.sessions[sessionID]; ok && session.IsActive {
			sessions = append(sessions, copySession(session))
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastActivity.After(sessions[j].LastActivity)
	})

	return sessions
}

// GetActiveUsers returns the ids of users with at least one session holding a
// live socket. This is "currently connected", not "holds a valid token".
func (r *SessionRegistry) GetActiveUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeUsersLocked()
}

// CountConnectedUsers reports how many distinct users hold a live socket.
func (r *SessionRegistry) CountConnectedUsers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.activeUsersLocked())
}

func (r *SessionRegistry) activeUsersLocked() []string {
	seen := make(map[string]struct{})
	var users []string
	for _, session := range r.sessions {
		if session.IsActive && session.SocketID != "" {
			if _, ok := seen[session.UserID]; !ok {
				seen[session.UserID] = struct{}{}
				users = append(users, session.UserID)
			}
		}
	}
	return users
}

// CleanupExpired terminates every active session idle for longer than ttl and
// reports how many it reaped. Called by the expiration sweeper, but safe to
// run concurrently with regular traffic.
func (r *SessionRegistry) CleanupExpired(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	reaped := 0
	for sessionID, session := range r.sessions {
		if session.IsActive && session.LastActivity.Before(cutoff) {
			r.terminateSessionLocked(sessionID)
			reaped++
		}
	}
	return reaped
}

// Stats returns a consistent snapshot of registry counters.
func (r *SessionRegistry) Stats() model.RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := 0
	for _, session := range r.sessions {
		if session.IsActive {
			active++
		}
	}

	return model.RegistryStats{
		TotalSessions:  len(r.sessions),
		ActiveSessions: active,
		ConnectedUsers: len(r.activeUsersLocked()),
		SocketBindings: len(r.socketUsers),
		TotalUsers:     len(r.userSessions),
	}
}

func copySession(s *model.Session) *model.Session {
	clone := *s
	if s.Metadata != nil {
		clone.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}
