package models

import "time"

// Task difficulties and their fixed point rewards
const (
	DifficultyLight  = "light"
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Assignment statuses
const (
	AssignmentNotAssigned = "not_assigned"
	AssignmentPending     = "pending"
	AssignmentCompleted   = "completed"
	AssignmentApproved    = "approved"
)

// MaxTitleLength is the longest allowed task title.
const MaxTitleLength = 28

var pointsByDifficulty = map[string]int{
	DifficultyLight:  5,
	DifficultyEasy:   10,
	DifficultyMedium: 25,
	DifficultyHard:   50,
}

// NormalizeDifficulty maps arbitrary input to a known difficulty.
// Unrecognized or empty values default to medium.
func NormalizeDifficulty(difficulty string) string {
	if _, ok := pointsByDifficulty[difficulty]; ok {
		return difficulty
	}
	return DifficultyMedium
}

// PointsForDifficulty returns the fixed reward for a difficulty.
func PointsForDifficulty(difficulty string) int {
	return pointsByDifficulty[NormalizeDifficulty(difficulty)]
}

// Task is an immutable chore definition belonging to a family
type Task struct {
	ID           int64
	FamilyID     int64
	Title        string
	Description  string
	Difficulty   string
	PointsReward int
	CreatedBy    int64
	CreatedAt    time.Time
	Deadline     *time.Time
}

// TaskAssignment binds a task to a member and carries the
// completion-approval status. Each task has exactly one assignment;
// an unassigned task has a nil user and status not_assigned.
type TaskAssignment struct {
	ID           int64
	TaskID       int64
	UserID       *int64
	Status       string
	AssignedDate time.Time
}

// TaskView is a task joined with its assignment and the usernames involved
type TaskView struct {
	Task             Task
	AssignmentID     int64
	AssigneeID       *int64
	AssigneeUsername string
	Status           string
	AssignedDate     time.Time
	CreatorUsername  string
}

// WorklistItem is one entry in a member's personal task list
type WorklistItem struct {
	AssignmentID int64
	TaskID       int64
	Title        string
	Description  string
	Difficulty   string
	PointsReward int
	Status       string
	Deadline     *time.Time
	CreatedAt    time.Time
}

// ApprovalItem is a completed assignment awaiting an approver's decision
type ApprovalItem struct {
	AssignmentID int64
	TaskID       int64
	Title        string
	PointsReward int
	CompletedBy  string
	AssignedDate time.Time
}
