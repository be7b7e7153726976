package handlers

import (
	"net/http"
	"time"

	"familietask/internal/apperr"
	"familietask/internal/models"
	"familietask/internal/service"
)

// TaskHandler handles task and assignment HTTP requests
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTask creates a task in the active family, optionally assigned
// to a member.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	session := GetSessionFromContext(r.Context())

	familyID, err := service.RequireActiveFamily(session)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Difficulty  string `json:"difficulty"`
		AssigneeID  *int64 `json:"assigneeId"`
		Deadline    string `json:"deadline"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	input := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		AssigneeID:  req.AssigneeID,
	}
	if req.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			// Accept date-only deadlines from the task form
			deadline, err = time.Parse("2006-01-02", req.Deadline)
		}
		if err != nil {
			writeError(w, apperr.New(apperr.KindValidation, "deadline: must be an RFC 3339 timestamp or YYYY-MM-DD date"))
			return
		}
		input.Deadline = &deadline
	}

	view, err := h.taskService.CreateTask(user.ID, familyID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "task created",
		"task":    taskViewJSON(view),
	})
}

// ListFamilyTasks returns every task in the active family
func (h *TaskHandler) ListFamilyTasks(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	familyID, err := service.RequireActiveFamily(session)
	if err != nil {
		writeError(w, err)
		return
	}

	views, err := h.taskService.ListFamilyTasks(familyID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]interface{}, 0, len(views))
	for i := range views {
		out = append(out, taskViewJSON(&views[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// ListMyTasks returns the caller's open assignments in the active family
func (h *TaskHandler) ListMyTasks(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	session := GetSessionFromContext(r.Context())

	familyID, err := service.RequireActiveFamily(session)
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.taskService.ListMyTasks(user.ID, familyID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		entry := map[string]interface{}{
			"assignmentId": item.AssignmentID,
			"taskId":       item.TaskID,
			"title":        item.Title,
			"description":  item.Description,
			"difficulty":   item.Difficulty,
			"pointsReward": item.PointsReward,
			"status":       item.Status,
			"deadline":     nil,
		}
		if item.Deadline != nil {
			entry["deadline"] = item.Deadline.Format(time.RFC3339)
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, out)
}

// ListPendingApproval returns completed assignments awaiting review
func (h *TaskHandler) ListPendingApproval(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	session := GetSessionFromContext(r.Context())

	familyID, err := service.RequireActiveFamily(session)
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.taskService.ListPendingApproval(user.ID, familyID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]interface{}{
			"assignmentId": item.AssignmentID,
			"taskId":       item.TaskID,
			"title":        item.Title,
			"pointsReward": item.PointsReward,
			"completedBy":  item.CompletedBy,
			"assignedDate": item.AssignedDate.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// CompleteTask marks the caller's assignment as completed
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	assignmentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.taskService.CompleteAssignment(user.ID, assignmentID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "task marked as completed"})
}

// ApproveTask approves a completed assignment and awards points
func (h *TaskHandler) ApproveTask(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	assignmentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.taskService.ApproveAssignment(user.ID, assignmentID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "task approved"})
}

// RejectTask sends a completed assignment back to pending
func (h *TaskHandler) RejectTask(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	assignmentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.taskService.RejectAssignment(user.ID, assignmentID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "task rejected"})
}

// GetPoints returns the caller's points balance in the active family
func (h *TaskHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	session := GetSessionFromContext(r.Context())

	familyID, err := service.RequireActiveFamily(session)
	if err != nil {
		writeError(w, err)
		return
	}

	points, err := h.taskService.GetPoints(user.ID, familyID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"points": points})
}

func taskViewJSON(v *models.TaskView) map[string]interface{} {
	entry := map[string]interface{}{
		"taskId":       v.Task.ID,
		"assignmentId": v.AssignmentID,
		"title":        v.Task.Title,
		"description":  v.Task.Description,
		"difficulty":   v.Task.Difficulty,
		"pointsReward": v.Task.PointsReward,
		"status":       v.Status,
		"createdBy":    v.CreatorUsername,
		"createdAt":    v.Task.CreatedAt.Format(time.RFC3339),
		"assigneeId":   nil,
		"assignee":     "",
		"deadline":     nil,
	}
	if v.AssigneeID != nil {
		entry["assigneeId"] = *v.AssigneeID
		entry["assignee"] = v.AssigneeUsername
	}
	if v.Task.Deadline != nil {
		entry["deadline"] = v.Task.Deadline.Format(time.RFC3339)
	}
	return entry
}
