package validation

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "test @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "exactly 8 characters",
			password: "12345678",
			wantErr:  false,
		},
		{
			name:     "too short",
			password: "1234567",
			wantErr:  true,
		},
		{
			name:     "empty",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{
			name:     "valid username",
			username: "anna",
			wantErr:  false,
		},
		{
			name:     "two characters",
			username: "ab",
			wantErr:  false,
		},
		{
			name:     "one character",
			username: "a",
			wantErr:  true,
		},
		{
			name:     "only whitespace",
			username: "   ",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFamilyName(t *testing.T) {
	tests := []struct {
		name       string
		familyName string
		wantErr    bool
	}{
		{
			name:       "valid name",
			familyName: "The Andersens",
			wantErr:    false,
		},
		{
			name:       "minimum length",
			familyName: "Vi",
			wantErr:    false,
		},
		{
			name:       "maximum length",
			familyName: strings.Repeat("a", 50),
			wantErr:    false,
		},
		{
			name:       "too short",
			familyName: "V",
			wantErr:    true,
		},
		{
			name:       "too long",
			familyName: strings.Repeat("a", 51),
			wantErr:    true,
		},
		{
			name:       "whitespace only",
			familyName: "     ",
			wantErr:    true,
		},
		{
			name:       "whitespace trimmed before length check",
			familyName: "  Vi  ",
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFamilyName(tt.familyName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFamilyName(%q) error = %v, wantErr %v", tt.familyName, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTaskTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{
			name:    "valid title",
			title:   "Take out the trash",
			wantErr: false,
		},
		{
			name:    "exactly 28 characters",
			title:   strings.Repeat("x", 28),
			wantErr: false,
		},
		{
			name:    "29 characters",
			title:   strings.Repeat("x", 29),
			wantErr: true,
		},
		{
			name:    "empty",
			title:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			title:   "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaskTitle(tt.title)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTaskTitle(%q) error = %v, wantErr %v", tt.title, err, tt.wantErr)
			}
		})
	}
}
