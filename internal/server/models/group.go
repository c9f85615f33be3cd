package models

import "time"

// Group is a coordination circle: members share an account book, plans,
// and events. OwnerID references the creating user.
type Group struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MembershipRole enumerates roles inside a group.
type MembershipRole string

const (
	MembershipOwner  MembershipRole = "owner"
	MembershipMember MembershipRole = "member"
)

// Membership is the authoritative join between users and groups.
// Exactly one row per (group_id, user_id).
type Membership struct {
	ID       string
	GroupID  string
	UserID   string
	Role     MembershipRole
	JoinedAt time.Time
}
