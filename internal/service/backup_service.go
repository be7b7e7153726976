package service

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"familietask/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	Users        []UserBackup        `json:"users"`
	Families     []FamilyBackup      `json:"families"`
	JoinRequests []JoinRequestBackup `json:"join_requests"`
	Tasks        []TaskBackup        `json:"tasks"`
	Points       []PointsBackup      `json:"points"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// FamilyBackup represents a family record with its memberships
type FamilyBackup struct {
	ID             int64                `json:"id"`
	Name           string               `json:"name"`
	OwnerID        int64                `json:"owner_id"`
	JoinCode       string               `json:"join_code"`
	LastCodeUpdate time.Time            `json:"last_code_update"`
	CreatedAt      time.Time            `json:"created_at"`
	Members        []FamilyMemberBackup `json:"members"`
}

// FamilyMemberBackup represents a family member record
type FamilyMemberBackup struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// JoinRequestBackup represents a join request record
type JoinRequestBackup struct {
	ID          int64     `json:"id"`
	FamilyID    int64     `json:"family_id"`
	UserID      int64     `json:"user_id"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requested_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TaskBackup represents a task with its single assignment
type TaskBackup struct {
	ID           int64      `json:"id"`
	FamilyID     int64      `json:"family_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Difficulty   string     `json:"difficulty"`
	PointsReward int        `json:"points_reward"`
	CreatedBy    int64      `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	Deadline     *time.Time `json:"deadline"`
	AssigneeID   *int64     `json:"assignee_id"`
	Status       string     `json:"status"`
	AssignedDate time.Time  `json:"assigned_date"`
}

// PointsBackup represents a points ledger entry
type PointsBackup struct {
	UserID   int64 `json:"user_id"`
	FamilyID int64 `json:"family_id"`
	Points   int   `json:"points"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportFamilies(backup); err != nil {
		return fmt.Errorf("failed to export families: %w", err)
	}
	if err := s.exportJoinRequests(backup); err != nil {
		return fmt.Errorf("failed to export join requests: %w", err)
	}
	if err := s.exportTasks(backup); err != nil {
		return fmt.Errorf("failed to export tasks: %w", err)
	}
	if err := s.exportPoints(backup); err != nil {
		return fmt.Errorf("failed to export points: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Database exported successfully to %s", outputPath)
	log.Printf("Exported: %d users, %d families, %d join requests, %d tasks, %d points entries",
		len(backup.Users), len(backup.Families), len(backup.JoinRequests),
		len(backup.Tasks), len(backup.Points))

	return nil
}

// Import restores a database from a backup file. Rows are inserted in
// dependency order; sessions are not restored.
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	var backup BackupData
	if err := json.NewDecoder(file).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importFamilies(backup.Families); err != nil {
		return fmt.Errorf("failed to import families: %w", err)
	}
	if err := s.importJoinRequests(backup.JoinRequests); err != nil {
		return fmt.Errorf("failed to import join requests: %w", err)
	}
	if err := s.importTasks(backup.Tasks); err != nil {
		return fmt.Errorf("failed to import tasks: %w", err)
	}
	if err := s.importPoints(backup.Points); err != nil {
		return fmt.Errorf("failed to import points: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := "SELECT id, username, email, password_hash, created_at FROM users ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportFamilies(backup *BackupData) error {
	query := "SELECT id, name, owner_id, join_code, last_code_update, created_at FROM families ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	var families []FamilyBackup
	for rows.Next() {
		var f FamilyBackup
		if err := rows.Scan(&f.ID, &f.Name, &f.OwnerID, &f.JoinCode, &f.LastCodeUpdate, &f.CreatedAt); err != nil {
			return err
		}
		families = append(families, f)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range families {
		memberQuery := "SELECT user_id, role FROM family_members WHERE family_id = ? ORDER BY user_id"
		memberRows, err := s.db.Query(memberQuery, families[i].ID)
		if err != nil {
			return err
		}
		for memberRows.Next() {
			var m FamilyMemberBackup
			if err := memberRows.Scan(&m.UserID, &m.Role); err != nil {
				memberRows.Close()
				return err
			}
			families[i].Members = append(families[i].Members, m)
		}
		if err := memberRows.Err(); err != nil {
			memberRows.Close()
			return err
		}
		memberRows.Close()
	}

	backup.Families = families
	return nil
}

func (s *BackupService) exportJoinRequests(backup *BackupData) error {
	query := "SELECT id, family_id, user_id, status, requested_at, expires_at FROM join_requests ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var jr JoinRequestBackup
		if err := rows.Scan(&jr.ID, &jr.FamilyID, &jr.UserID, &jr.Status, &jr.RequestedAt, &jr.ExpiresAt); err != nil {
			return err
		}
		backup.JoinRequests = append(backup.JoinRequests, jr)
	}
	return rows.Err()
}

func (s *BackupService) exportTasks(backup *BackupData) error {
	query := `
		SELECT t.id, t.family_id, t.title, t.description, t.difficulty, t.points_reward,
		       t.created_by, t.created_at, t.deadline, a.user_id, a.status, a.assigned_date
		FROM tasks t
		INNER JOIN assigned_tasks a ON a.task_id = t.id
		ORDER BY t.id
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t TaskBackup
		if err := rows.Scan(&t.ID, &t.FamilyID, &t.Title, &t.Description, &t.Difficulty,
			&t.PointsReward, &t.CreatedBy, &t.CreatedAt, &t.Deadline,
			&t.AssigneeID, &t.Status, &t.AssignedDate); err != nil {
			return err
		}
		backup.Tasks = append(backup.Tasks, t)
	}
	return rows.Err()
}

func (s *BackupService) exportPoints(backup *BackupData) error {
	query := "SELECT user_id, family_id, points FROM points ORDER BY family_id, user_id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PointsBackup
		if err := rows.Scan(&p.UserID, &p.FamilyID, &p.Points); err != nil {
			return err
		}
		backup.Points = append(backup.Points, p)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(users []UserBackup) error {
	for _, u := range users {
		query := "INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (s *BackupService) importFamilies(families []FamilyBackup) error {
	for _, f := range families {
		query := "INSERT INTO families (id, name, owner_id, join_code, last_code_update, created_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, f.ID, f.Name, f.OwnerID, f.JoinCode, f.LastCodeUpdate, f.CreatedAt); err != nil {
			return err
		}
		for _, m := range f.Members {
			memberQuery := "INSERT INTO family_members (family_id, user_id, role) VALUES (?, ?, ?)"
			if _, err := s.db.Exec(memberQuery, f.ID, m.UserID, m.Role); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *BackupService) importJoinRequests(requests []JoinRequestBackup) error {
	for _, jr := range requests {
		query := "INSERT INTO join_requests (id, family_id, user_id, status, requested_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, jr.ID, jr.FamilyID, jr.UserID, jr.Status, jr.RequestedAt, jr.ExpiresAt); err != nil {
			return err
		}
	}
	return nil
}

func (s *BackupService) importTasks(tasks []TaskBackup) error {
	for _, t := range tasks {
		query := `INSERT INTO tasks (id, family_id, title, description, difficulty, points_reward, created_by, created_at, deadline)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		var deadline interface{}
		if t.Deadline != nil {
			deadline = *t.Deadline
		}
		if _, err := s.db.Exec(query, t.ID, t.FamilyID, t.Title, t.Description, t.Difficulty,
			t.PointsReward, t.CreatedBy, t.CreatedAt, deadline); err != nil {
			return err
		}

		var assignee interface{}
		if t.AssigneeID != nil {
			assignee = *t.AssigneeID
		}
		assignQuery := "INSERT INTO assigned_tasks (task_id, user_id, status, assigned_date) VALUES (?, ?, ?, ?)"
		if _, err := s.db.Exec(assignQuery, t.ID, assignee, t.Status, t.AssignedDate); err != nil {
			return err
		}
	}
	return nil
}

func (s *BackupService) importPoints(points []PointsBackup) error {
	for _, p := range points {
		query := "INSERT INTO points (user_id, family_id, points) VALUES (?, ?, ?)"
		if _, err := s.db.Exec(query, p.UserID, p.FamilyID, p.Points); err != nil {
			return err
		}
	}
	return nil
}
