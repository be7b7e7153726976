package models

// PointsEntry is the accumulated points a user has earned in one family
type PointsEntry struct {
	UserID   int64
	FamilyID int64
	Points   int
}
