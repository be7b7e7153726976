package service

import (
	"testing"
	"time"

	"familietask/internal/apperr"
	"familietask/internal/models"
)

// taskFixture sets up a family with an owner and one standard member.
type taskFixture struct {
	env    *testEnv
	family *models.Family
	owner  *models.User
	member *models.User
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()

	env := newTestEnv(t)
	owner, ownerSession := env.signup(t, "anna", "anna@example.com")
	member, _ := env.signup(t, "bert", "bert@example.com")

	family, _ := env.createFamily(t, ownerSession, owner.ID, "The Andersens")
	env.joinFamily(t, member.ID, family.JoinCode, owner.ID)

	return &taskFixture{env: env, family: family, owner: owner, member: member}
}

func (f *taskFixture) createTask(t *testing.T, input CreateTaskInput) *models.TaskView {
	t.Helper()
	view, err := f.env.tasks.CreateTask(f.owner.ID, f.family.ID, input)
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	return view
}

func TestCreateTask(t *testing.T) {
	f := newTaskFixture(t)

	view := f.createTask(t, CreateTaskInput{
		Title:       "Vacuum the living room",
		Description: "Including under the couch",
		Difficulty:  models.DifficultyEasy,
		AssigneeID:  &f.member.ID,
	})

	if view.Task.PointsReward != 10 {
		t.Errorf("PointsReward = %d, want 10 for easy", view.Task.PointsReward)
	}
	if view.Status != models.AssignmentPending {
		t.Errorf("Status = %q, want pending for an assigned task", view.Status)
	}
	if view.AssigneeID == nil || *view.AssigneeID != f.member.ID {
		t.Errorf("AssigneeID = %v, want %d", view.AssigneeID, f.member.ID)
	}
	if view.AssigneeUsername != "bert" {
		t.Errorf("AssigneeUsername = %q, want bert", view.AssigneeUsername)
	}
}

func TestCreateTaskUnassigned(t *testing.T) {
	f := newTaskFixture(t)

	view := f.createTask(t, CreateTaskInput{Title: "Wash the car"})

	if view.Status != models.AssignmentNotAssigned {
		t.Errorf("Status = %q, want not_assigned", view.Status)
	}
	if view.AssigneeID != nil {
		t.Errorf("AssigneeID = %v, want nil", view.AssigneeID)
	}
	// Unknown difficulty defaults to medium
	if view.Task.Difficulty != models.DifficultyMedium {
		t.Errorf("Difficulty = %q, want medium default", view.Task.Difficulty)
	}
	if view.Task.PointsReward != 25 {
		t.Errorf("PointsReward = %d, want 25", view.Task.PointsReward)
	}
}

func TestCreateTaskErrors(t *testing.T) {
	f := newTaskFixture(t)

	t.Run("standard member cannot create", func(t *testing.T) {
		_, err := f.env.tasks.CreateTask(f.member.ID, f.family.ID, CreateTaskInput{Title: "Mop"})
		if !apperr.IsKind(err, apperr.KindForbidden) {
			t.Errorf("CreateTask(standard) error = %v, want forbidden", err)
		}
	})

	t.Run("title too long", func(t *testing.T) {
		_, err := f.env.tasks.CreateTask(f.owner.ID, f.family.ID, CreateTaskInput{
			Title: "This title is clearly longer than allowed",
		})
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("CreateTask(long title) error = %v, want validation error", err)
		}
	})

	t.Run("assignee outside family", func(t *testing.T) {
		outsider, _ := f.env.signup(t, "carla", "carla@example.com")
		_, err := f.env.tasks.CreateTask(f.owner.ID, f.family.ID, CreateTaskInput{
			Title:      "Mop",
			AssigneeID: &outsider.ID,
		})
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("CreateTask(outside assignee) error = %v, want validation error", err)
		}
	})
}

func TestCompleteAssignment(t *testing.T) {
	f := newTaskFixture(t)

	view := f.createTask(t, CreateTaskInput{Title: "Do dishes", AssigneeID: &f.member.ID})

	if err := f.env.tasks.CompleteAssignment(f.member.ID, view.AssignmentID); err != nil {
		t.Fatalf("CompleteAssignment() error = %v", err)
	}

	// Completing twice is a status conflict
	err := f.env.tasks.CompleteAssignment(f.member.ID, view.AssignmentID)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("CompleteAssignment(twice) error = %v, want conflict", err)
	}
}

func TestCompleteAssignmentErrors(t *testing.T) {
	f := newTaskFixture(t)

	view := f.createTask(t, CreateTaskInput{Title: "Do dishes", AssigneeID: &f.member.ID})

	t.Run("not the assignee", func(t *testing.T) {
		err := f.env.tasks.CompleteAssignment(f.owner.ID, view.AssignmentID)
		if !apperr.IsKind(err, apperr.KindForbidden) {
			t.Errorf("CompleteAssignment(owner) error = %v, want forbidden", err)
		}
	})

	t.Run("unknown assignment", func(t *testing.T) {
		err := f.env.tasks.CompleteAssignment(f.member.ID, 99999)
		if !apperr.IsKind(err, apperr.KindNotFound) {
			t.Errorf("CompleteAssignment(unknown) error = %v, want not found", err)
		}
	})

	t.Run("unassigned task", func(t *testing.T) {
		unassigned := f.createTask(t, CreateTaskInput{Title: "Nobody's job"})
		err := f.env.tasks.CompleteAssignment(f.member.ID, unassigned.AssignmentID)
		if !apperr.IsKind(err, apperr.KindForbidden) {
			t.Errorf("CompleteAssignment(unassigned) error = %v, want forbidden", err)
		}
	})
}

func TestApproveAssignment(t *testing.T) {
	f := newTaskFixture(t)

	view := f.createTask(t, CreateTaskInput{
		Title:      "Do dishes",
		Difficulty: models.DifficultyEasy,
		AssigneeID: &f.member.ID,
	})

	if err := f.env.tasks.CompleteAssignment(f.member.ID, view.AssignmentID); err != nil {
		t.Fatalf("CompleteAssignment() error = %v", err)
	}
	if err := f.env.tasks.ApproveAssignment(f.owner.ID, view.AssignmentID); err != nil {
		t.Fatalf("ApproveAssignment() error = %v", err)
	}

	points, err := f.env.tasks.GetPoints(f.member.ID, f.family.ID)
	if err != nil {
		t.Fatalf("GetPoints() error = %v", err)
	}
	if points != 10 {
		t.Errorf("GetPoints() = %d, want 10", points)
	}

	// Approving twice must not double-credit
	err = f.env.tasks.ApproveAssignment(f.owner.ID, view.AssignmentID)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("ApproveAssignment(twice) error = %v, want conflict", err)
	}
	points, _ = f.env.tasks.GetPoints(f.member.ID, f.family.ID)
	if points != 10 {
		t.Errorf("GetPoints() after double approve = %d, want 10", points)
	}
}

func TestApproveAssignmentErrors(t *testing.T) {
	f := newTaskFixture(t)

	view := f.createTask(t, CreateTaskInput{Title: "Do dishes", AssigneeID: &f.member.ID})

	t.Run("not yet completed", func(t *testing.T) {
		err := f.env.tasks.ApproveAssignment(f.owner.ID, view.AssignmentID)
		if !apperr.IsKind(err, apperr.KindConflict) {
			t.Errorf("ApproveAssignment(pending) error = %v, want conflict", err)
		}
	})

	t.Run("standard member cannot approve", func(t *testing.T) {
		if err := f.env.tasks.CompleteAssignment(f.member.ID, view.AssignmentID); err != nil {
			t.Fatalf("CompleteAssignment() error = %v", err)
		}
		err := f.env.tasks.ApproveAssignment(f.member.ID, view.AssignmentID)
		if !apperr.IsKind(err, apperr.KindForbidden) {
			t.Errorf("ApproveAssignment(standard) error = %v, want forbidden", err)
		}
	})

	t.Run("unknown assignment", func(t *testing.T) {
		err := f.env.tasks.ApproveAssignment(f.owner.ID, 99999)
		if !apperr.IsKind(err, apperr.KindNotFound) {
			t.Errorf("ApproveAssignment(unknown) error = %v, want not found", err)
		}
	})
}

func TestRejectAssignment(t *testing.T) {
	f := newTaskFixture(t)

	view := f.createTask(t, CreateTaskInput{
		Title:      "Do dishes",
		Difficulty: models.DifficultyEasy,
		AssigneeID: &f.member.ID,
	})

	if err := f.env.tasks.CompleteAssignment(f.member.ID, view.AssignmentID); err != nil {
		t.Fatalf("CompleteAssignment() error = %v", err)
	}
	if err := f.env.tasks.RejectAssignment(f.owner.ID, view.AssignmentID); err != nil {
		t.Fatalf("RejectAssignment() error = %v", err)
	}

	// Rejection awards nothing
	points, err := f.env.tasks.GetPoints(f.member.ID, f.family.ID)
	if err != nil {
		t.Fatalf("GetPoints() error = %v", err)
	}
	if points != 0 {
		t.Errorf("GetPoints() after reject = %d, want 0", points)
	}

	// The assignment is back to pending and can go through the cycle again
	if err := f.env.tasks.CompleteAssignment(f.member.ID, view.AssignmentID); err != nil {
		t.Fatalf("CompleteAssignment(after reject) error = %v", err)
	}
	if err := f.env.tasks.ApproveAssignment(f.owner.ID, view.AssignmentID); err != nil {
		t.Fatalf("ApproveAssignment(after redo) error = %v", err)
	}
	points, _ = f.env.tasks.GetPoints(f.member.ID, f.family.ID)
	if points != 10 {
		t.Errorf("GetPoints() after redo = %d, want 10", points)
	}
}

func TestListMyTasks(t *testing.T) {
	f := newTaskFixture(t)

	later := time.Now().Add(48 * time.Hour)
	sooner := time.Now().Add(24 * time.Hour)

	f.createTask(t, CreateTaskInput{Title: "No deadline", AssigneeID: &f.member.ID})
	f.createTask(t, CreateTaskInput{Title: "Later", AssigneeID: &f.member.ID, Deadline: &later})
	f.createTask(t, CreateTaskInput{Title: "Sooner", AssigneeID: &f.member.ID, Deadline: &sooner})

	// Approved tasks drop off the worklist
	approved := f.createTask(t, CreateTaskInput{Title: "Already done", AssigneeID: &f.member.ID})
	if err := f.env.tasks.CompleteAssignment(f.member.ID, approved.AssignmentID); err != nil {
		t.Fatalf("CompleteAssignment() error = %v", err)
	}
	if err := f.env.tasks.ApproveAssignment(f.owner.ID, approved.AssignmentID); err != nil {
		t.Fatalf("ApproveAssignment() error = %v", err)
	}

	items, err := f.env.tasks.ListMyTasks(f.member.ID, f.family.ID)
	if err != nil {
		t.Fatalf("ListMyTasks() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("ListMyTasks() returned %d items, want 3", len(items))
	}

	// Dated tasks sort by deadline, undated ones last
	want := []string{"Sooner", "Later", "No deadline"}
	for i, title := range want {
		if items[i].Title != title {
			t.Errorf("items[%d].Title = %q, want %q", i, items[i].Title, title)
		}
	}
}

func TestListPendingApproval(t *testing.T) {
	f := newTaskFixture(t)

	view := f.createTask(t, CreateTaskInput{Title: "Do dishes", AssigneeID: &f.member.ID})
	if err := f.env.tasks.CompleteAssignment(f.member.ID, view.AssignmentID); err != nil {
		t.Fatalf("CompleteAssignment() error = %v", err)
	}

	items, err := f.env.tasks.ListPendingApproval(f.owner.ID, f.family.ID)
	if err != nil {
		t.Fatalf("ListPendingApproval() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("ListPendingApproval() returned %d items, want 1", len(items))
	}
	if items[0].CompletedBy != "bert" {
		t.Errorf("CompletedBy = %q, want bert", items[0].CompletedBy)
	}

	// Standard members cannot view the approval queue
	_, err = f.env.tasks.ListPendingApproval(f.member.ID, f.family.ID)
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("ListPendingApproval(standard) error = %v, want forbidden", err)
	}
}

func TestListFamilyTasks(t *testing.T) {
	f := newTaskFixture(t)

	f.createTask(t, CreateTaskInput{Title: "First", AssigneeID: &f.member.ID})
	f.createTask(t, CreateTaskInput{Title: "Second"})

	views, err := f.env.tasks.ListFamilyTasks(f.family.ID)
	if err != nil {
		t.Fatalf("ListFamilyTasks() error = %v", err)
	}
	if len(views) != 2 {
		t.Errorf("ListFamilyTasks() returned %d tasks, want 2", len(views))
	}
}

func TestGetPointsNoLedgerRow(t *testing.T) {
	f := newTaskFixture(t)

	points, err := f.env.tasks.GetPoints(f.member.ID, f.family.ID)
	if err != nil {
		t.Fatalf("GetPoints() error = %v", err)
	}
	if points != 0 {
		t.Errorf("GetPoints() = %d, want 0 before any approvals", points)
	}
}
