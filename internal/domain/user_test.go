// File: internal/domain/user_test.go
package domain

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	u := &User{Username: "alice"}

	if err := u.HashPassword("a-strong-password"); err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if u.Password == "a-strong-password" {
		t.Fatal("password must not be stored in plain text")
	}

	if err := u.CheckPassword("a-strong-password"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := u.CheckPassword("wrong-password"); err == nil {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordRejectsShortPasswords(t *testing.T) {
	u := &User{Username: "bob"}
	if err := u.HashPassword("short"); err == nil {
		t.Fatal("expected an error for a password under the minimum length")
	}
}

func TestHasEmergencyContact(t *testing.T) {
	u := &User{}
	if u.HasEmergencyContact() {
		t.Error("empty contact should report false")
	}

	u.EmergencyContactName = "Sam"
	if u.HasEmergencyContact() {
		t.Error("name without phone should report false")
	}

	u.EmergencyContactPhone = "+15550001111"
	if !u.HasEmergencyContact() {
		t.Error("name and phone should report true")
	}
}

func TestRoleModelMapping(t *testing.T) {
	if RoleUser.ModelRole() != "user" {
		t.Errorf("user role maps to %q", RoleUser.ModelRole())
	}
	if RoleAssistant.ModelRole() != "model" {
		t.Errorf("assistant role maps to %q", RoleAssistant.ModelRole())
	}
	if !RoleUser.Valid() || !RoleAssistant.Valid() {
		t.Error("canonical roles should be valid")
	}
	if Role("system").Valid() {
		t.Error("unknown role should be invalid")
	}
}
