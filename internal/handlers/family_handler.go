package handlers

import (
	"net/http"
	"time"

	"familietask/internal/service"
)

// FamilyHandler handles family, membership and join-request HTTP requests
type FamilyHandler struct {
	familyService      *service.FamilyService
	joinRequestService *service.JoinRequestService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService, joinRequestService *service.JoinRequestService) *FamilyHandler {
	return &FamilyHandler{
		familyService:      familyService,
		joinRequestService: joinRequestService,
	}
}

// CreateFamily creates a family with the caller as owner and makes it
// the session's active family.
func (h *FamilyHandler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	session := GetSessionFromContext(r.Context())

	var req struct {
		FamilyName string `json:"familyName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	family, err := h.familyService.CreateFamily(session.ID, user.ID, req.FamilyName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "family created",
		"familyId":    family.ID,
		"familyName":  family.Name,
		"joinCode":    family.JoinCode,
		"redirectUrl": "/dashboard",
	})
}

// SubmitJoinRequest files a request to join the family matching a join code
func (h *FamilyHandler) SubmitJoinRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		JoinCode string `json:"joinCode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	request, err := h.joinRequestService.Submit(user.ID, req.JoinCode)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "join request submitted",
		"requestId": request.ID,
	})
}

// ListJoinRequests returns pending join requests the caller may resolve
func (h *FamilyHandler) ListJoinRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	requests, err := h.joinRequestService.ListPendingForApprover(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]interface{}, 0, len(requests))
	for _, jr := range requests {
		out = append(out, map[string]interface{}{
			"requestId":   jr.RequestID,
			"familyId":    jr.FamilyID,
			"familyName":  jr.FamilyName,
			"userId":      jr.RequesterID,
			"username":    jr.RequesterUsername,
			"email":       jr.RequesterEmail,
			"requestedAt": jr.RequestedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// RespondToJoinRequest accepts or rejects a pending join request
func (h *FamilyHandler) RespondToJoinRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.joinRequestService.Respond(user.ID, requestID, req.Action); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "join request " + req.Action + "ed",
	})
}

// ListFamilies returns every family the caller belongs to
func (h *FamilyHandler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	session := GetSessionFromContext(r.Context())

	families, err := h.familyService.GetUserFamilies(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]interface{}, 0, len(families))
	for _, f := range families {
		active := session.ActiveFamilyID != nil && *session.ActiveFamilyID == f.ID
		out = append(out, map[string]interface{}{
			"familyId":   f.ID,
			"familyName": f.Name,
			"isActive":   active,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// SwitchActiveFamily changes which family the session operates against
func (h *FamilyHandler) SwitchActiveFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	session := GetSessionFromContext(r.Context())

	var req struct {
		FamilyID int64 `json:"familyId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.familyService.SwitchActiveFamily(session.ID, user.ID, req.FamilyID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "active family switched"})
}

// GetActiveFamily returns the session's active family, or a null body
// when none is selected.
func (h *FamilyHandler) GetActiveFamily(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	family, err := h.familyService.GetActiveFamily(session)
	if err != nil {
		writeError(w, err)
		return
	}
	if family == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"family": nil})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"family": map[string]interface{}{
			"familyId":   family.ID,
			"familyName": family.Name,
			"joinCode":   family.JoinCode,
		},
	})
}

// ListFamilyMembers returns the members of the session's active family
func (h *FamilyHandler) ListFamilyMembers(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	familyID, err := service.RequireActiveFamily(session)
	if err != nil {
		writeError(w, err)
		return
	}

	members, err := h.familyService.GetFamilyMembers(familyID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]interface{}, 0, len(members))
	for _, m := range members {
		out = append(out, map[string]interface{}{
			"userId":   m.UserID,
			"username": m.Username,
			"role":     m.Role,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPermissions reports whether the caller can administer the active family
func (h *FamilyHandler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	session := GetSessionFromContext(r.Context())

	familyID, err := service.RequireActiveFamily(session)
	if err != nil {
		writeError(w, err)
		return
	}

	hasAdminRights, err := h.familyService.HasAdminRights(user.ID, familyID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"hasAdminRights": hasAdminRights})
}
