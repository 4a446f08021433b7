package middleware

import (
	"testing"
	"time"

	"schooladmin_go/config"
	"schooladmin_go/models"
)

func init() {
	config.AppConfig = &config.Config{
		JWTSecret:    "test-secret-at-least-16-chars",
		JWTExpiresIn: time.Hour,
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	user := &models.User{
		BaseModel: models.BaseModel{ID: 42},
		Username:  "guardian1",
		Roles:     []models.Role{{Name: "guardian"}},
	}

	tokenString, err := GenerateToken(user, 0, []uint{7, 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseToken(tokenString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "guardian1" {
		t.Fatalf("unexpected identity claims: %+v", claims)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "guardian" {
		t.Fatalf("unexpected roles: %v", claims.Roles)
	}
	if len(claims.Wards) != 2 || claims.Wards[0] != 7 || claims.Wards[1] != 9 {
		t.Fatalf("unexpected wards: %v", claims.Wards)
	}
	if claims.StudentID != 0 {
		t.Fatalf("expected no student profile, got %d", claims.StudentID)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseToken("not-a-token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	user := &models.User{BaseModel: models.BaseModel{ID: 1}, Username: "admin"}

	tokenString, err := GenerateToken(user, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orig := config.AppConfig.JWTSecret
	config.AppConfig.JWTSecret = "another-secret-16-chars-long"
	defer func() { config.AppConfig.JWTSecret = orig }()

	if _, err := ParseToken(tokenString); err == nil {
		t.Fatalf("expected signature verification failure")
	}
}

func TestClaimsHasRole(t *testing.T) {
	claims := &Claims{Roles: []string{"teacher", "finance"}}

	tests := []struct {
		role string
		want bool
	}{
		{role: "teacher", want: true},
		{role: "finance", want: true},
		{role: "admin", want: false},
		{role: "", want: false},
	}

	for _, tc := range tests {
		if got := claims.HasRole(tc.role); got != tc.want {
			t.Fatalf("HasRole(%q) = %v, want %v", tc.role, got, tc.want)
		}
	}
}
