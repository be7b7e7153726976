package service

import (
	"fmt"
	"strings"
	"time"

	"familietask/internal/apperr"
	"familietask/internal/models"
	"familietask/internal/repository"
	"familietask/internal/security"
	"familietask/internal/validation"
)

// AuthService handles registration, login and session lifecycle
type AuthService struct {
	userRepo *repository.UserRepository
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Register creates a new user account
func (s *AuthService) Register(username, email, password string) (*models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindConflict, "email is already registered")
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The unique index classifies the race where two registrations with
	// the same email slip past the existence check.
	user, err := s.userRepo.CreateUser(username, email, passwordHash)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(strings.TrimSpace(email))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	// Same message for unknown email and wrong password
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, apperr.New(apperr.KindAuthRequired, "invalid email or password")
	}

	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(models.SessionDuration)

	session, err := s.userRepo.CreateSession(sessionID, user.ID, expiresAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, user, nil
}

// ValidateSession checks a session, slides its expiry forward and
// returns the session with its user. Expired sessions are removed on
// touch.
func (s *AuthService) ValidateSession(sessionID string) (*models.Session, *models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, nil, apperr.New(apperr.KindAuthRequired, "session not found")
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, nil, apperr.New(apperr.KindAuthRequired, "session expired")
	}

	// Sliding expiry: every authenticated request pushes the window
	session.ExpiresAt = time.Now().Add(models.SessionDuration)
	if err := s.userRepo.TouchSession(sessionID, session.ExpiresAt); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, apperr.New(apperr.KindAuthRequired, "session not found")
	}

	return session, user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions and returns the count
func (s *AuthService) CleanupExpiredSessions() (int64, error) {
	count, err := s.userRepo.DeleteExpiredSessions()
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return count, nil
}
