package repository

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"main/model"
	"main/services"

	"github.com/google/uuid"
)

// UserStore is the in-memory user table, keyed by id with an email index.
// The session registry references users by id only and trusts the fields it
// is handed; user lifecycle lives here.
type UserStore struct {
	mu           sync.RWMutex
	users        map[string]*model.User
	usersByEmail map[string]*model.User
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:        make(map[string]*model.User),
		usersByEmail: make(map[string]*model.User),
	}
}

// CreateUser hashes the password and inserts the user. The email must be
// unique; role defaults to "user" when empty.
func (s *UserStore) CreateUser(email, password, name, role string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if role == "" {
		role = model.RoleUser
	}

	hashed, err := services.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[email]; exists {
		return nil, ErrEmailTaken
	}

	now := time.Now()
	user := &model.User{
		UserID:    uuid.New().String(),
		Email:     email,
		Name:      name,
		Password:  hashed,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
		IsActive:  true,
	}

	s.users[user.UserID] = user
	s.usersByEmail[email] = user

	return copyUser(user), nil
}

// ErrEmailTaken is returned by CreateUser for duplicate registrations.
var ErrEmailTaken = fmt.Errorf("user with this email already exists")

// FindByID returns a snapshot of the user, or nil if unknown.
func (s *UserStore) FindByID(userID string) *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil
	}
	return copyUser(user)
}

func (s *UserStore) FindByEmail(email string) *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil
	}
	return copyUser(user)
}

// UserUpdate carries the updatable profile fields; nil means leave alone.
type UserUpdate struct {
	Name         *string
	IsActive     *bool
	JiraConfig   *model.JiraConfig
	TrelloConfig *model.TrelloConfig
	ClearJira    bool
	ClearTrello  bool
}

func (s *UserStore) UpdateUser(userID string, update UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}
	if update.JiraConfig != nil {
		user.JiraConfig = update.JiraConfig
	} else if update.ClearJira {
		user.JiraConfig = nil
	}
	if update.TrelloConfig != nil {
		user.TrelloConfig = update.TrelloConfig
	} else if update.ClearTrello {
		user.TrelloConfig = nil
	}
	user.UpdatedAt = time.Now()

	return copyUser(user), nil
}

// UpdatePassword replaces the stored hash. The caller verifies the current
// password and terminates the user's other sessions.
func (s *UserStore) UpdatePassword(userID, newPassword string) error {
	hashed, err := services.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}

	user.Password = hashed
	user.UpdatedAt = time.Now()
	return nil
}

// VerifyPassword checks a plain-text password against the stored hash.
func (s *UserStore) VerifyPassword(userID, password string) bool {
	s.mu.RLock()
	user, ok := s.users[userID]
	var stored string
	if ok {
		stored = user.Password
	}
	s.mu.RUnlock()

	if !ok || stored == "" {
		return false
	}
	match, err := services.VerifyPassword(stored, password)
	return err == nil && match
}

// SetTwoFactor enables or disables the TOTP second factor. Disabling wipes
// the stored secret.
func (s *UserStore) SetTwoFactor(userID string, enabled bool, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}

	user.TwoFactorEnabled = enabled
	if enabled {
		user.TwoFactorSecret = secret
	} else {
		user.TwoFactorSecret = ""
	}
	user.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) DeleteUser(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}

	delete(s.users, userID)
	delete(s.usersByEmail, user.Email)
	return nil
}

// FindAll returns snapshots of every user, for the admin listing.
func (s *UserStore) FindAll() []*model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, copyUser(user))
	}
	return users
}

func (s *UserStore) Stats() model.UserStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := 0
	for _, user := range s.users {
		if user.IsActive {
			active++
		}
	}
	return model.UserStats{TotalUsers: len(s.users), ActiveUsers: active}
}

func copyUser(u *model.User) *model.User {
	clone := *u
	if u.JiraConfig != nil {
		jira := *u.JiraConfig
		clone.JiraConfig = &jira
	}
	if u.TrelloConfig != nil {
		trello := *u.TrelloConfig
		clone.TrelloConfig = &trello
	}
	return &clone
}
