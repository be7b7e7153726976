package models

import "time"

// Membership roles within a family
const (
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
	RoleStandard = "standard"
)

// Family represents a group of users sharing tasks and a join code
type Family struct {
	ID             int64
	Name           string
	OwnerID        int64
	JoinCode       string
	LastCodeUpdate time.Time
	CreatedAt      time.Time
}

// FamilyMember represents the relationship between a user and a family
type FamilyMember struct {
	ID       int64
	FamilyID int64
	UserID   int64
	Role     string
	JoinedAt time.Time
}

// MemberInfo combines a membership row with the user's account details
type MemberInfo struct {
	UserID   int64
	Username string
	Email    string
	Role     string
	JoinedAt time.Time
}

// CanApprove reports whether a role may resolve join requests and
// approve completed tasks.
func CanApprove(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}
