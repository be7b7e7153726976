package repository

import (
	"database/sql"
	"fmt"

	"familietask/internal/apperr"
	"familietask/internal/database"
	"familietask/internal/models"
)

// TaskRepository handles database operations for tasks, assignments and
// the points ledger
type TaskRepository struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateTask inserts a task and its single assignment in one
// transaction. A nil assignee leaves the assignment not_assigned with a
// NULL user; otherwise it starts pending.
func (r *TaskRepository) CreateTask(task *models.Task, assigneeID *int64) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO tasks (family_id, title, description, difficulty, points_reward, created_by, deadline)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	var deadline interface{}
	if task.Deadline != nil {
		deadline = *task.Deadline
	}
	taskID, err := tx.ExecReturningID(query,
		task.FamilyID, task.Title, task.Description, task.Difficulty,
		task.PointsReward, task.CreatedBy, deadline,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create task: %w", err)
	}

	status := models.AssignmentNotAssigned
	var userID interface{}
	if assigneeID != nil {
		status = models.AssignmentPending
		userID = *assigneeID
	}
	query = "INSERT INTO assigned_tasks (task_id, user_id, status) VALUES (?, ?, ?)"
	if _, err := tx.Exec(query, taskID, userID, status); err != nil {
		return 0, fmt.Errorf("failed to create assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return taskID, nil
}

const taskViewColumns = `
	t.id, t.family_id, t.title, t.description, t.difficulty, t.points_reward,
	t.created_by, t.created_at, t.deadline,
	a.id, a.user_id, a.status, a.assigned_date,
	creator.username, COALESCE(assignee.username, '')
`

const taskViewJoins = `
	FROM tasks t
	INNER JOIN assigned_tasks a ON a.task_id = t.id
	INNER JOIN users creator ON creator.id = t.created_by
	LEFT JOIN users assignee ON assignee.id = a.user_id
`

func scanTaskView(scan func(dest ...interface{}) error) (*models.TaskView, error) {
	var view models.TaskView
	var deadline sql.NullTime
	var assigneeID sql.NullInt64
	err := scan(
		&view.Task.ID, &view.Task.FamilyID, &view.Task.Title, &view.Task.Description,
		&view.Task.Difficulty, &view.Task.PointsReward, &view.Task.CreatedBy,
		&view.Task.CreatedAt, &deadline,
		&view.AssignmentID, &assigneeID, &view.Status, &view.AssignedDate,
		&view.CreatorUsername, &view.AssigneeUsername,
	)
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		view.Task.Deadline = &deadline.Time
	}
	if assigneeID.Valid {
		view.AssigneeID = &assigneeID.Int64
	}
	return &view, nil
}

// GetTaskView retrieves a task joined with its assignment and usernames,
// or nil if none exists
func (r *TaskRepository) GetTaskView(taskID int64) (*models.TaskView, error) {
	query := "SELECT " + taskViewColumns + taskViewJoins + " WHERE t.id = ?"
	view, err := scanTaskView(r.db.QueryRow(query, taskID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return view, nil
}

// ListFamilyTasks returns all of a family's tasks, newest-created first
func (r *TaskRepository) ListFamilyTasks(familyID int64) ([]models.TaskView, error) {
	query := "SELECT " + taskViewColumns + taskViewJoins +
		" WHERE t.family_id = ? ORDER BY t.created_at DESC"
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var views []models.TaskView
	for rows.Next() {
		view, err := scanTaskView(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		views = append(views, *view)
	}
	return views, rows.Err()
}

// ListMyTasks returns a member's open worklist in one family: pending
// and completed assignments ordered by deadline ascending (tasks without
// a deadline last), then newest-created first.
func (r *TaskRepository) ListMyTasks(userID, familyID int64) ([]models.WorklistItem, error) {
	query := `
		SELECT a.id, t.id, t.title, t.description, t.difficulty, t.points_reward,
		       a.status, t.deadline, t.created_at
		FROM assigned_tasks a
		INNER JOIN tasks t ON t.id = a.task_id
		WHERE a.user_id = ? AND t.family_id = ? AND a.status IN (?, ?)
		ORDER BY (t.deadline IS NULL), t.deadline ASC, t.created_at DESC
	`
	rows, err := r.db.Query(query, userID, familyID,
		models.AssignmentPending, models.AssignmentCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to query worklist: %w", err)
	}
	defer rows.Close()

	var items []models.WorklistItem
	for rows.Next() {
		var item models.WorklistItem
		var deadline sql.NullTime
		if err := rows.Scan(
			&item.AssignmentID, &item.TaskID, &item.Title, &item.Description,
			&item.Difficulty, &item.PointsReward, &item.Status, &deadline, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan worklist item: %w", err)
		}
		if deadline.Valid {
			item.Deadline = &deadline.Time
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListPendingApproval returns a family's completed assignments awaiting
// a decision, oldest-assigned first.
func (r *TaskRepository) ListPendingApproval(familyID int64) ([]models.ApprovalItem, error) {
	query := `
		SELECT a.id, t.id, t.title, t.points_reward, u.username, a.assigned_date
		FROM assigned_tasks a
		INNER JOIN tasks t ON t.id = a.task_id
		INNER JOIN users u ON u.id = a.user_id
		WHERE t.family_id = ? AND a.status = ?
		ORDER BY a.assigned_date ASC
	`
	rows, err := r.db.Query(query, familyID, models.AssignmentCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval queue: %w", err)
	}
	defer rows.Close()

	var items []models.ApprovalItem
	for rows.Next() {
		var item models.ApprovalItem
		if err := rows.Scan(
			&item.AssignmentID, &item.TaskID, &item.Title,
			&item.PointsReward, &item.CompletedBy, &item.AssignedDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan approval item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Complete transitions an assignment from pending to completed. Only the
// assignment's own user may complete it, and only from pending.
func (r *TaskRepository) Complete(userID, assignmentID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "SELECT user_id, status FROM assigned_tasks WHERE id = ?"
	var assigneeID sql.NullInt64
	var status string
	err = tx.QueryRow(query, assignmentID).Scan(&assigneeID, &status)
	if err == sql.ErrNoRows {
		return apperr.New(apperr.KindNotFound, "assignment not found")
	}
	if err != nil {
		return fmt.Errorf("failed to load assignment: %w", err)
	}

	if !assigneeID.Valid || assigneeID.Int64 != userID {
		return apperr.New(apperr.KindForbidden, "this task is not assigned to you")
	}
	if status != models.AssignmentPending {
		return apperr.New(apperr.KindConflict,
			fmt.Sprintf("task cannot be completed from status %q", status))
	}

	updateQuery := "UPDATE assigned_tasks SET status = ? WHERE id = ?"
	if _, err := tx.Exec(updateQuery, models.AssignmentCompleted, assignmentID); err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// resolveForApproval loads an assignment with its task, family and the
// approver's role in that family, classifying every failure mode the
// approve/reject flows share.
func (r *TaskRepository) resolveForApproval(tx *database.Tx, approverID, assignmentID int64) (assigneeID int64, familyID int64, pointsReward int, err error) {
	query := `
		SELECT a.user_id, a.status, t.family_id, t.points_reward, fm.role
		FROM assigned_tasks a
		INNER JOIN tasks t ON t.id = a.task_id
		LEFT JOIN family_members fm ON fm.family_id = t.family_id AND fm.user_id = ?
		WHERE a.id = ?
	`
	var assignee sql.NullInt64
	var status string
	var role sql.NullString
	err = tx.QueryRow(query, approverID, assignmentID).Scan(
		&assignee, &status, &familyID, &pointsReward, &role,
	)
	if err == sql.ErrNoRows {
		return 0, 0, 0, apperr.New(apperr.KindNotFound, "assignment not found")
	}
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to load assignment: %w", err)
	}

	if !role.Valid {
		return 0, 0, 0, apperr.New(apperr.KindNotFound, "assignment not found")
	}
	if !models.CanApprove(role.String) {
		return 0, 0, 0, apperr.New(apperr.KindForbidden, "only a family owner or admin can review completed tasks")
	}
	if status != models.AssignmentCompleted {
		return 0, 0, 0, apperr.New(apperr.KindConflict,
			fmt.Sprintf("task cannot be reviewed from status %q", status))
	}
	return assignee.Int64, familyID, pointsReward, nil
}

// Approve marks a completed assignment approved and credits the task's
// points to the assignee's ledger for that family, all in one
// transaction. Points accumulate via an insert-or-add upsert, so a
// second approval of the same assignment is impossible (the status is no
// longer completed) and totals are never overwritten.
func (r *TaskRepository) Approve(approverID, assignmentID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	assigneeID, familyID, pointsReward, err := r.resolveForApproval(tx, approverID, assignmentID)
	if err != nil {
		return err
	}

	updateQuery := "UPDATE assigned_tasks SET status = ? WHERE id = ?"
	if _, err := tx.Exec(updateQuery, models.AssignmentApproved, assignmentID); err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	if _, err := tx.Exec(r.db.Dialect.PointsUpsertQuery(), assigneeID, familyID, pointsReward); err != nil {
		return fmt.Errorf("failed to update points ledger: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Reject returns a completed assignment to pending so the assignee can
// redo it; rejection is corrective, not terminal.
func (r *TaskRepository) Reject(approverID, assignmentID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, _, _, err := r.resolveForApproval(tx, approverID, assignmentID); err != nil {
		return err
	}

	updateQuery := "UPDATE assigned_tasks SET status = ? WHERE id = ?"
	if _, err := tx.Exec(updateQuery, models.AssignmentPending, assignmentID); err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPoints returns a user's accumulated points in a family (zero if no
// ledger row exists yet).
func (r *TaskRepository) GetPoints(userID, familyID int64) (int, error) {
	query := "SELECT points FROM points WHERE user_id = ? AND family_id = ?"
	var points int
	err := r.db.QueryRow(query, userID, familyID).Scan(&points)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get points: %w", err)
	}
	return points, nil
}
