package service

import (
	"fmt"
	"strings"
	"time"

	"familietask/internal/apperr"
	"familietask/internal/models"
	"familietask/internal/repository"
	"familietask/internal/validation"
)

// TaskService handles task creation and the assignment lifecycle
type TaskService struct {
	taskRepo   *repository.TaskRepository
	familyRepo *repository.FamilyRepository
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo *repository.TaskRepository, familyRepo *repository.FamilyRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, familyRepo: familyRepo}
}

// CreateTaskInput carries the caller's task parameters. Difficulty
// defaults to medium when empty or unrecognized; AssigneeID may be nil
// for an unassigned task.
type CreateTaskInput struct {
	Title       string
	Description string
	Difficulty  string
	AssigneeID  *int64
	Deadline    *time.Time
}

// CreateTask validates and creates a task with its single assignment.
// Only a family owner or admin may create tasks; an assignee must be a
// member of the family.
func (s *TaskService) CreateTask(creatorID, familyID int64, input CreateTaskInput) (*models.TaskView, error) {
	if err := validation.ValidateTaskTitle(input.Title); err != nil {
		return nil, err
	}

	role, err := s.familyRepo.RoleOf(creatorID, familyID)
	if err != nil {
		return nil, err
	}
	if !models.CanApprove(role) {
		return nil, apperr.New(apperr.KindForbidden, "only a family owner or admin can create tasks")
	}

	if input.AssigneeID != nil {
		isMember, err := s.familyRepo.IsFamilyMember(*input.AssigneeID, familyID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, apperr.New(apperr.KindValidation, "assignee is not a member of this family")
		}
	}

	difficulty := models.NormalizeDifficulty(strings.TrimSpace(input.Difficulty))
	task := &models.Task{
		FamilyID:     familyID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Difficulty:   difficulty,
		PointsReward: models.PointsForDifficulty(difficulty),
		CreatedBy:    creatorID,
		Deadline:     input.Deadline,
	}

	taskID, err := s.taskRepo.CreateTask(task, input.AssigneeID)
	if err != nil {
		return nil, err
	}

	view, err := s.taskRepo.GetTaskView(taskID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, fmt.Errorf("created task %d not found", taskID)
	}
	return view, nil
}

// ListFamilyTasks returns all tasks in a family, newest-created first
func (s *TaskService) ListFamilyTasks(familyID int64) ([]models.TaskView, error) {
	return s.taskRepo.ListFamilyTasks(familyID)
}

// ListMyTasks returns the caller's open worklist in a family: pending
// and completed assignments only.
func (s *TaskService) ListMyTasks(userID, familyID int64) ([]models.WorklistItem, error) {
	return s.taskRepo.ListMyTasks(userID, familyID)
}

// CompleteAssignment marks the caller's pending assignment completed
func (s *TaskService) CompleteAssignment(userID, assignmentID int64) error {
	return s.taskRepo.Complete(userID, assignmentID)
}

// ListPendingApproval returns the family's completed assignments
// awaiting a decision, oldest first. Requires an owner or admin role.
func (s *TaskService) ListPendingApproval(approverID, familyID int64) ([]models.ApprovalItem, error) {
	role, err := s.familyRepo.RoleOf(approverID, familyID)
	if err != nil {
		return nil, err
	}
	if !models.CanApprove(role) {
		return nil, apperr.New(apperr.KindForbidden, "only a family owner or admin can review completed tasks")
	}
	return s.taskRepo.ListPendingApproval(familyID)
}

// ApproveAssignment approves a completed assignment and credits the
// task's points to the assignee's ledger.
func (s *TaskService) ApproveAssignment(approverID, assignmentID int64) error {
	return s.taskRepo.Approve(approverID, assignmentID)
}

// RejectAssignment returns a completed assignment to pending
func (s *TaskService) RejectAssignment(approverID, assignmentID int64) error {
	return s.taskRepo.Reject(approverID, assignmentID)
}

// GetPoints returns a user's accumulated points in a family
func (s *TaskService) GetPoints(userID, familyID int64) (int, error) {
	return s.taskRepo.GetPoints(userID, familyID)
}
