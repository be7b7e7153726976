package models

import "time"

// Join request statuses
const (
	JoinRequestPending  = "pending"
	JoinRequestApproved = "approved"
	JoinRequestRejected = "rejected"
)

// JoinRequestTTL is how long a request stays open before the cleanup
// sweep may remove it.
const JoinRequestTTL = 7 * 24 * time.Hour

// JoinRequest is a pending ask to join a family, resolved by an owner or admin
type JoinRequest struct {
	ID          int64
	FamilyID    int64
	UserID      int64
	Status      string
	RequestedAt time.Time
	ExpiresAt   time.Time
}

// JoinRequestInfo is a join request joined with the requester's account details
type JoinRequestInfo struct {
	RequestID         int64
	FamilyID          int64
	FamilyName        string
	RequesterID       int64
	RequesterUsername string
	RequesterEmail    string
	RequestedAt       time.Time
	ExpiresAt         time.Time
}
