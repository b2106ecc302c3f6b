package repository

import (
	"errors"
	"testing"

	"main/model"
)

func TestCreateUserAndLookup(t *testing.T) {
	store := NewUserStore()

	user, err := store.CreateUser("Alice@Example.com", "hunter22!", "Alice", "")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if user.Role != model.RoleUser {
		t.Errorf("expected default role %q, got %q", model.RoleUser, user.Role)
	}
	if !user.IsActive {
		t.Error("new user should be active")
	}
	if user.Password == "hunter22!" || user.Password == "" {
		t.Error("password must be stored hashed")
	}

	// Email lookup is case-insensitive.
	if found := store.FindByEmail("alice@example.com"); found == nil || found.UserID != user.UserID {
		t.Error("FindByEmail failed for normalized address")
	}
	if found := store.FindByID(user.UserID); found == nil {
		t.Error("FindByID failed")
	}
	if store.FindByID("nope") != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := NewUserStore()

	if _, err := store.CreateUser("a@b.com", "secret1!", "A", ""); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := store.CreateUser("a@b.com", "secret2!", "B", "")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	store := NewUserStore()
	user, _ := store.CreateUser("a@b.com", "secret1!", "A", "")

	if !store.VerifyPassword(user.UserID, "secret1!") {
		t.Error("correct password rejected")
	}
	if store.VerifyPassword(user.UserID, "wrong") {
		t.Error("wrong password accepted")
	}
	if store.VerifyPassword("no-such-user", "secret1!") {
		t.Error("unknown user accepted")
	}
}

func TestUpdatePasswordInvalidatesOldOne(t *testing.T) {
	store := NewUserStore()
	user, _ := store.CreateUser("a@b.com", "secret1!", "A", "")

	if err := store.UpdatePassword(user.UserID, "newpass9!"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	if store.VerifyPassword(user.UserID, "secret1!") {
		t.Error("old password still accepted")
	}
	if !store.VerifyPassword(user.UserID, "newpass9!") {
		t.Error("new password rejected")
	}
}

func TestUpdateUserFields(t *testing.T) {
	store := NewUserStore()
	user, _ := store.CreateUser("a@b.com", "secret1!", "A", "")

	name := "Alice Cooper"
	updated, err := store.UpdateUser(user.UserID, UserUpdate{
		Name:       &name,
		JiraConfig: &model.JiraConfig{Domain: "acme.atlassian.net", Email: "a@b.com", APIToken: "tok", ProjectKey: "ACME"},
	})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if updated.Name != name || updated.JiraConfig == nil {
		t.Errorf("update not applied: %+v", updated)
	}

	// Snapshots must not alias store state.
	updated.JiraConfig.Domain = "mutated"
	if store.FindByID(user.UserID).JiraConfig.Domain != "acme.atlassian.net" {
		t.Error("returned snapshot aliases internal state")
	}
}

func TestStats(t *testing.T) {
	store := NewUserStore()
	a, _ := store.CreateUser("a@b.com", "secret1!", "A", "")
	store.CreateUser("b@b.com", "secret1!", "B", "")

	inactive := false
	store.UpdateUser(a.UserID, UserUpdate{IsActive: &inactive})

	stats := store.Stats()
	if stats.TotalUsers != 2 || stats.ActiveUsers != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
