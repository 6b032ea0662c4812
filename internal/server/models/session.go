package models

import "time"

// Session is the stored session row. It only references the user; the
// user itself is loaded fresh on every validation.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ExpiredAt reports whether the session is no longer valid at now.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
