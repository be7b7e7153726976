package repository

import (
	"database/sql"
	"fmt"
	"time"

	"familietask/internal/apperr"
	"familietask/internal/database"
	"familietask/internal/models"
)

// JoinRequestRepository handles database operations for join requests
type JoinRequestRepository struct {
	db *database.DB
}

// NewJoinRequestRepository creates a new join request repository
func NewJoinRequestRepository(db *database.DB) *JoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

// PendingExists checks for an open request for this (family, user) pair
func (r *JoinRequestRepository) PendingExists(familyID, userID int64) (bool, error) {
	query := "SELECT COUNT(*) FROM join_requests WHERE family_id = ? AND user_id = ? AND status = ?"
	var count int
	if err := r.db.QueryRow(query, familyID, userID, models.JoinRequestPending).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}
	return count > 0, nil
}

// Create inserts a pending join request
func (r *JoinRequestRepository) Create(familyID, userID int64, expiresAt time.Time) (*models.JoinRequest, error) {
	query := "INSERT INTO join_requests (family_id, user_id, status, expires_at) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, familyID, userID, models.JoinRequestPending, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}

	return &models.JoinRequest{
		ID:          id,
		FamilyID:    familyID,
		UserID:      userID,
		Status:      models.JoinRequestPending,
		RequestedAt: time.Now(),
		ExpiresAt:   expiresAt,
	}, nil
}

// ListPendingForApprover returns all pending requests for families where
// the approver holds an owner or admin role, newest first.
func (r *JoinRequestRepository) ListPendingForApprover(approverID int64) ([]models.JoinRequestInfo, error) {
	query := `
		SELECT jr.id, jr.family_id, f.name, u.id, u.username, u.email, jr.requested_at, jr.expires_at
		FROM join_requests jr
		INNER JOIN families f ON f.id = jr.family_id
		INNER JOIN users u ON u.id = jr.user_id
		INNER JOIN family_members fm ON fm.family_id = jr.family_id AND fm.user_id = ?
		WHERE jr.status = ? AND fm.role IN (?, ?)
		ORDER BY jr.requested_at DESC
	`
	rows, err := r.db.Query(query, approverID, models.JoinRequestPending, models.RoleOwner, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to query join requests: %w", err)
	}
	defer rows.Close()

	var requests []models.JoinRequestInfo
	for rows.Next() {
		var info models.JoinRequestInfo
		if err := rows.Scan(
			&info.RequestID, &info.FamilyID, &info.FamilyName,
			&info.RequesterID, &info.RequesterUsername, &info.RequesterEmail,
			&info.RequestedAt, &info.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan join request: %w", err)
		}
		requests = append(requests, info)
	}

	return requests, rows.Err()
}

// Respond resolves a pending request in a single transaction: the
// request, its status and the approver's role are checked together, and
// the membership insert (on accept) commits atomically with the status
// update. Failures inside the transaction carry a pre-classified kind.
func (r *JoinRequestRepository) Respond(approverID, requestID int64, accept bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT jr.family_id, jr.user_id, jr.status, fm.role
		FROM join_requests jr
		LEFT JOIN family_members fm ON fm.family_id = jr.family_id AND fm.user_id = ?
		WHERE jr.id = ?
	`
	var familyID, requesterID int64
	var status string
	var role sql.NullString
	err = tx.QueryRow(query, approverID, requestID).Scan(&familyID, &requesterID, &status, &role)
	if err == sql.ErrNoRows {
		return apperr.New(apperr.KindNotFound, "join request not found")
	}
	if err != nil {
		return fmt.Errorf("failed to load join request: %w", err)
	}

	if status != models.JoinRequestPending {
		return apperr.New(apperr.KindConflict, "join request has already been resolved")
	}
	if !role.Valid || !models.CanApprove(role.String) {
		return apperr.New(apperr.KindForbidden, "only a family owner or admin can respond to join requests")
	}

	newStatus := models.JoinRequestRejected
	if accept {
		newStatus = models.JoinRequestApproved

		// The requester may have joined through another request in the
		// meantime; membership stays untouched but the request is still
		// marked approved.
		var count int
		memberQuery := "SELECT COUNT(*) FROM family_members WHERE family_id = ? AND user_id = ?"
		if err := tx.QueryRow(memberQuery, familyID, requesterID).Scan(&count); err != nil {
			return fmt.Errorf("failed to check membership: %w", err)
		}
		if count == 0 {
			insertQuery := "INSERT INTO family_members (family_id, user_id, role) VALUES (?, ?, ?)"
			if _, err := tx.Exec(insertQuery, familyID, requesterID, models.RoleStandard); err != nil {
				return fmt.Errorf("failed to add member: %w", err)
			}
		}
	}

	updateQuery := "UPDATE join_requests SET status = ? WHERE id = ?"
	if _, err := tx.Exec(updateQuery, newStatus, requestID); err != nil {
		return fmt.Errorf("failed to update join request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpired removes pending and rejected requests past their expiry
// and returns how many were deleted. Approved requests are kept.
func (r *JoinRequestRepository) DeleteExpired(now time.Time) (int64, error) {
	query := "DELETE FROM join_requests WHERE status IN (?, ?) AND expires_at < ?"
	result, err := r.db.Exec(query, models.JoinRequestPending, models.JoinRequestRejected, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired join requests: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return count, nil
}
