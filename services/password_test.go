package services

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.Contains(hash, "$") {
		t.Fatalf("hash %q missing salt separator", hash)
	}

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !ok {
		t.Error("correct password did not verify")
	}

	ok, err = VerifyPassword(hash, "wrong password")
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if ok {
		t.Error("wrong password verified")
	}
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, _ := HashPassword("secret1!")
	second, _ := HashPassword("secret1!")
	if first == second {
		t.Error("two hashes of the same password must use different salts")
	}
}

func TestVerifyPasswordMalformedStored(t *testing.T) {
	for _, stored := range []string{"", "no-separator", "a$b$c", "!!$!!"} {
		if ok, err := VerifyPassword(stored, "anything"); err == nil && ok {
			t.Errorf("VerifyPassword(%q) verified a malformed record", stored)
		}
	}
}
