package models

import "time"

// SessionDuration is the sliding expiry window for a session. Every
// authenticated request pushes the expiry this far into the future.
const SessionDuration = 24 * time.Hour

// Session represents an authenticated browser session. ActiveFamilyID
// selects which family the user is currently operating against; it is
// nil until the user creates or switches into a family.
type Session struct {
	ID             string
	UserID         int64
	ActiveFamilyID *int64
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
