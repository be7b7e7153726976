package service

import (
	"errors"
	"fmt"
	"strings"

	"familietask/internal/apperr"
	"familietask/internal/models"
	"familietask/internal/repository"
	"familietask/internal/validation"
)

// maxJoinCodeAttempts caps the generate-and-insert retry loop. The
// unique index on families.join_code is the real uniqueness guarantee;
// the loop only avoids burning transactions on collisions.
const maxJoinCodeAttempts = 50

// FamilyService handles family creation, membership and the
// active-family session context
type FamilyService struct {
	familyRepo *repository.FamilyRepository
	userRepo   *repository.UserRepository
}

// NewFamilyService creates a new family service
func NewFamilyService(familyRepo *repository.FamilyRepository, userRepo *repository.UserRepository) *FamilyService {
	return &FamilyService{familyRepo: familyRepo, userRepo: userRepo}
}

// CreateFamily creates a family with a fresh unique join code and the
// creator as owner, then switches the session's active family to it.
func (s *FamilyService) CreateFamily(sessionID string, creatorID int64, name string) (*models.Family, error) {
	if err := validation.ValidateFamilyName(name); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	var family *models.Family
	for attempt := 0; attempt < maxJoinCodeAttempts; attempt++ {
		code, err := repository.GenerateJoinCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}

		exists, err := s.familyRepo.CodeExists(code)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		family, err = s.familyRepo.CreateFamily(name, creatorID, code)
		if err != nil {
			// A concurrent creation may have claimed the code between
			// the existence check and the insert; pick a new code.
			if errors.Is(err, repository.ErrJoinCodeTaken) {
				continue
			}
			return nil, err
		}
		break
	}
	if family == nil {
		return nil, apperr.New(apperr.KindInternal, "could not generate a unique join code")
	}

	if err := s.userRepo.SetActiveFamily(sessionID, family.ID); err != nil {
		return nil, err
	}
	return family, nil
}

// GetUserFamilies retrieves all families a user belongs to
func (s *FamilyService) GetUserFamilies(userID int64) ([]models.Family, error) {
	return s.familyRepo.GetUserFamilies(userID)
}

// GetFamilyMembers retrieves all members of the caller's active family
func (s *FamilyService) GetFamilyMembers(familyID int64) ([]models.MemberInfo, error) {
	return s.familyRepo.GetFamilyMembers(familyID)
}

// SwitchActiveFamily points the session at another family the user is a
// member of. The selector is always explicit; family-scoped operations
// never fall back to "first family found".
func (s *FamilyService) SwitchActiveFamily(sessionID string, userID, familyID int64) error {
	isMember, err := s.familyRepo.IsFamilyMember(userID, familyID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperr.New(apperr.KindForbidden, "you are not a member of this family")
	}
	return s.userRepo.SetActiveFamily(sessionID, familyID)
}

// GetActiveFamily returns the session's active family, or nil if the
// session has none selected.
func (s *FamilyService) GetActiveFamily(session *models.Session) (*models.Family, error) {
	if session.ActiveFamilyID == nil {
		return nil, nil
	}
	return s.familyRepo.GetFamilyByID(*session.ActiveFamilyID)
}

// HasAdminRights reports whether the user holds an owner or admin role
// in the family.
func (s *FamilyService) HasAdminRights(userID, familyID int64) (bool, error) {
	role, err := s.familyRepo.RoleOf(userID, familyID)
	if err != nil {
		return false, err
	}
	return models.CanApprove(role), nil
}

// RequireActiveFamily extracts the active family from a session or
// fails with a validation error.
func RequireActiveFamily(session *models.Session) (int64, error) {
	if session.ActiveFamilyID == nil {
		return 0, apperr.New(apperr.KindValidation, "no active family selected")
	}
	return *session.ActiveFamilyID, nil
}
