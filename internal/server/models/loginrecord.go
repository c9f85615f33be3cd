package models

import "time"

// LoginRecord is an audit row appended on every successful sign-in, in the
// same transaction that bumps the user's last_login_at.
type LoginRecord struct {
	ID     string
	UserID string
	At     time.Time
	Remote string
}
