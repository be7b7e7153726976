package service

import (
	"strings"
	"time"

	"familietask/internal/apperr"
	"familietask/internal/models"
	"familietask/internal/repository"
)

// JoinRequestService handles the join-request workflow
type JoinRequestService struct {
	joinRepo   *repository.JoinRequestRepository
	familyRepo *repository.FamilyRepository
}

// NewJoinRequestService creates a new join request service
func NewJoinRequestService(joinRepo *repository.JoinRequestRepository, familyRepo *repository.FamilyRepository) *JoinRequestService {
	return &JoinRequestService{joinRepo: joinRepo, familyRepo: familyRepo}
}

// Submit files a join request against the family holding the given
// code. A user can have at most one pending request per family and
// cannot request to join a family they already belong to.
func (s *JoinRequestService) Submit(userID int64, code string) (*models.JoinRequest, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.New(apperr.KindValidation, "join code is required")
	}

	family, err := s.familyRepo.GetFamilyByCode(code)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, apperr.New(apperr.KindNotFound, "no family found for that join code")
	}

	isMember, err := s.familyRepo.IsFamilyMember(userID, family.ID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, apperr.New(apperr.KindConflict, "you are already a member of this family")
	}

	pending, err := s.joinRepo.PendingExists(family.ID, userID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperr.New(apperr.KindConflict, "you already have a pending request for this family")
	}

	return s.joinRepo.Create(family.ID, userID, time.Now().Add(models.JoinRequestTTL))
}

// ListPendingForApprover returns pending requests across every family
// where the approver holds an owner or admin role, newest first.
func (s *JoinRequestService) ListPendingForApprover(approverID int64) ([]models.JoinRequestInfo, error) {
	return s.joinRepo.ListPendingForApprover(approverID)
}

// Respond accepts or rejects a pending request. The repository runs the
// whole decision in one transaction and classifies its failures.
func (s *JoinRequestService) Respond(approverID, requestID int64, action string) error {
	switch action {
	case "accept", "reject":
	default:
		return apperr.New(apperr.KindValidation, "action must be accept or reject")
	}
	return s.joinRepo.Respond(approverID, requestID, action == "accept")
}

// CleanupExpired deletes expired pending and rejected requests and
// returns the count for operational logging.
func (s *JoinRequestService) CleanupExpired() (int64, error) {
	return s.joinRepo.DeleteExpired(time.Now())
}
