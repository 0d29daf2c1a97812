// File: internal/auth/jwt_test.go
package auth

import "testing"

var secret = []byte("unit-test-secret")

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateJWT(42, secret)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	userID, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user ID 42, got %d", userID)
	}
}

func TestGenerateJWTRejectsZeroUserID(t *testing.T) {
	if _, err := GenerateJWT(0, secret); err == nil {
		t.Fatal("expected an error for a zero user ID")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT(7, secret)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ValidateToken(token, []byte("different-secret")); err == nil {
		t.Fatal("expected validation to fail with the wrong secret")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not.a.token", secret); err == nil {
		t.Fatal("expected validation to fail for malformed input")
	}
}
