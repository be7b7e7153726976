package repository

import (
	"database/sql"
	"fmt"
	"time"

	"familietask/internal/apperr"
	"familietask/internal/database"
	"familietask/internal/models"
)

// UserRepository handles database operations for users and their sessions
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user record
func (r *UserRepository) CreateUser(username, email, passwordHash string) (*models.User, error) {
	query := "INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, username, email, passwordHash)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return nil, apperr.Wrap(apperr.KindConflict, "email is already registered", err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}, nil
}

// GetUserByEmail retrieves a user by email, or nil if none exists
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := "SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?"
	return r.scanUser(r.db.QueryRow(query, email))
}

// GetUserByID retrieves a user by ID, or nil if none exists
func (r *UserRepository) GetUserByID(userID int64) (*models.User, error) {
	query := "SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?"
	return r.scanUser(r.db.QueryRow(query, userID))
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CreateSession inserts a new session row
func (r *UserRepository) CreateSession(sessionID string, userID int64, expiresAt time.Time) (*models.Session, error) {
	query := "INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, sessionID, userID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.Session{
		ID:        sessionID,
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}, nil
}

// GetSession retrieves a session by ID, or nil if none exists
func (r *UserRepository) GetSession(sessionID string) (*models.Session, error) {
	query := "SELECT id, user_id, active_family_id, created_at, expires_at FROM sessions WHERE id = ?"
	session := &models.Session{}
	var activeFamilyID sql.NullInt64
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID, &session.UserID, &activeFamilyID, &session.CreatedAt, &session.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if activeFamilyID.Valid {
		session.ActiveFamilyID = &activeFamilyID.Int64
	}
	return session, nil
}

// TouchSession pushes a session's expiry forward (sliding expiry)
func (r *UserRepository) TouchSession(sessionID string, expiresAt time.Time) error {
	query := "UPDATE sessions SET expires_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, expiresAt, sessionID); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// SetActiveFamily overwrites the session's active-family selector
func (r *UserRepository) SetActiveFamily(sessionID string, familyID int64) error {
	query := "UPDATE sessions SET active_family_id = ? WHERE id = ?"
	if _, err := r.db.Exec(query, familyID, sessionID); err != nil {
		return fmt.Errorf("failed to set active family: %w", err)
	}
	return nil
}

// DeleteSession removes a session row
func (r *UserRepository) DeleteSession(sessionID string) error {
	query := "DELETE FROM sessions WHERE id = ?"
	if _, err := r.db.Exec(query, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions past their expiry and returns
// how many were deleted.
func (r *UserRepository) DeleteExpiredSessions() (int64, error) {
	query := "DELETE FROM sessions WHERE expires_at < ?"
	result, err := r.db.Exec(query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return count, nil
}
