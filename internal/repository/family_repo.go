package repository

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"familietask/internal/database"
	"familietask/internal/models"
)

// JoinCodeLength is the fixed width of a family join code.
const JoinCodeLength = 12

// ErrJoinCodeTaken signals that a family insert lost the race for a
// join code; the caller should retry with a fresh code.
var ErrJoinCodeTaken = errors.New("join code already in use")

// FamilyRepository handles database operations for families and memberships
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// GenerateJoinCode produces a random fixed-width uppercase hex code.
// Uniqueness is not checked here; the caller retries against the
// unique index on families.join_code.
func GenerateJoinCode() (string, error) {
	bytes := make([]byte, JoinCodeLength/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(bytes)), nil
}

// CodeExists checks whether any family already holds a join code
func (r *FamilyRepository) CodeExists(code string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM families WHERE join_code = ?"
	if err := r.db.QueryRow(query, strings.ToUpper(code)).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check join code: %w", err)
	}
	return count > 0, nil
}

// CreateFamily inserts a family and its owner membership in one
// transaction; failure of either aborts both. A join-code collision
// surfaces as ErrJoinCodeTaken so the caller can retry.
func (r *FamilyRepository) CreateFamily(name string, ownerID int64, joinCode string) (*models.Family, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO families (name, owner_id, join_code) VALUES (?, ?, ?)"
	familyID, err := tx.ExecReturningID(query, name, ownerID, joinCode)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", ErrJoinCodeTaken, err)
		}
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	query = "INSERT INTO family_members (family_id, user_id, role) VALUES (?, ?, ?)"
	if _, err := tx.Exec(query, familyID, ownerID, models.RoleOwner); err != nil {
		return nil, fmt.Errorf("failed to add owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Family{
		ID:             familyID,
		Name:           name,
		OwnerID:        ownerID,
		JoinCode:       joinCode,
		LastCodeUpdate: time.Now(),
		CreatedAt:      time.Now(),
	}, nil
}

// GetFamilyByID retrieves a family by ID, or nil if none exists
func (r *FamilyRepository) GetFamilyByID(familyID int64) (*models.Family, error) {
	query := "SELECT id, name, owner_id, join_code, last_code_update, created_at FROM families WHERE id = ?"
	return r.scanFamily(r.db.QueryRow(query, familyID))
}

// GetFamilyByCode retrieves a family by join code (case-insensitive),
// or nil if none exists. Codes are stored uppercase.
func (r *FamilyRepository) GetFamilyByCode(code string) (*models.Family, error) {
	query := "SELECT id, name, owner_id, join_code, last_code_update, created_at FROM families WHERE join_code = ?"
	return r.scanFamily(r.db.QueryRow(query, strings.ToUpper(strings.TrimSpace(code))))
}

func (r *FamilyRepository) scanFamily(row *sql.Row) (*models.Family, error) {
	family := &models.Family{}
	err := row.Scan(
		&family.ID, &family.Name, &family.OwnerID,
		&family.JoinCode, &family.LastCodeUpdate, &family.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return family, nil
}

// GetUserFamilies retrieves all families a user belongs to
func (r *FamilyRepository) GetUserFamilies(userID int64) ([]models.Family, error) {
	query := `
		SELECT f.id, f.name, f.owner_id, f.join_code, f.last_code_update, f.created_at
		FROM families f
		INNER JOIN family_members fm ON f.id = fm.family_id
		WHERE fm.user_id = ?
		ORDER BY f.created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	var families []models.Family
	for rows.Next() {
		var family models.Family
		if err := rows.Scan(
			&family.ID, &family.Name, &family.OwnerID,
			&family.JoinCode, &family.LastCodeUpdate, &family.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, family)
	}

	return families, rows.Err()
}

// RoleOf returns the user's role in a family, or "" if not a member
func (r *FamilyRepository) RoleOf(userID, familyID int64) (string, error) {
	query := "SELECT role FROM family_members WHERE user_id = ? AND family_id = ?"
	var role string
	err := r.db.QueryRow(query, userID, familyID).Scan(&role)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

// IsFamilyMember checks if a user is a member of a family
func (r *FamilyRepository) IsFamilyMember(userID, familyID int64) (bool, error) {
	role, err := r.RoleOf(userID, familyID)
	if err != nil {
		return false, err
	}
	return role != "", nil
}

// AddMember adds a user to a family with the given role
func (r *FamilyRepository) AddMember(familyID, userID int64, role string) error {
	query := "INSERT INTO family_members (family_id, user_id, role) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, familyID, userID, role); err != nil {
		return fmt.Errorf("failed to add family member: %w", err)
	}
	return nil
}

// GetFamilyMembers retrieves all members of a family with their account details
func (r *FamilyRepository) GetFamilyMembers(familyID int64) ([]models.MemberInfo, error) {
	query := `
		SELECT u.id, u.username, u.email, fm.role, fm.joined_at
		FROM family_members fm
		INNER JOIN users u ON fm.user_id = u.id
		WHERE fm.family_id = ?
		ORDER BY fm.joined_at ASC
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	var members []models.MemberInfo
	for rows.Next() {
		var m models.MemberInfo
		if err := rows.Scan(&m.UserID, &m.Username, &m.Email, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}
