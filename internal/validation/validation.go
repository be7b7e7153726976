package validation

import (
	"fmt"
	"regexp"
	"strings"

	"familietask/internal/apperr"
	"familietask/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func invalid(field, message string) error {
	return apperr.New(apperr.KindValidation, fmt.Sprintf("%s: %s", field, message))
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email", "email is required")
	}
	if !emailRegex.MatchString(email) {
		return invalid("email", "invalid email format")
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return invalid("password", "password is required")
	}
	if len(password) < 8 {
		return invalid("password", "password must be at least 8 characters")
	}
	return nil
}

// ValidateUsername checks if a username is valid
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return invalid("username", "username is required")
	}
	if len(username) < 2 {
		return invalid("username", "username must be at least 2 characters")
	}
	return nil
}

// ValidateFamilyName checks the 2-50 character family name rule
func ValidateFamilyName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 50 {
		return invalid("familyName", "family name must be between 2 and 50 characters")
	}
	return nil
}

// ValidateTaskTitle checks the non-empty, max-28-character title rule
func ValidateTaskTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return invalid("title", "task title is required")
	}
	if len(title) > models.MaxTitleLength {
		return invalid("title", fmt.Sprintf("task title must be at most %d characters", models.MaxTitleLength))
	}
	return nil
}
