package models

import "time"

// Event is a scheduled gathering for a group.
type Event struct {
	ID        string
	GroupID   string
	Title     string
	Location  string
	StartsAt  time.Time
	CreatedBy string
	CreatedAt time.Time
}

// RSVPStatus enumerates attendance answers.
type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "going"
	RSVPDeclined RSVPStatus = "declined"
)

// Valid reports whether s is a known RSVP status.
func (s RSVPStatus) Valid() bool {
	return s == RSVPGoing || s == RSVPDeclined
}

// RSVP records one user's answer for one event; upserted on change.
type RSVP struct {
	EventID     string
	UserID      string
	Status      RSVPStatus
	RespondedAt time.Time
}
