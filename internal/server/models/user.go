package models

import "time"

// Role enumerates user roles. The service assigns RoleMember on
// registration; RoleAdmin is only granted out of band (adminctl).
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// User is the persisted account record. Email is unique across all users
// (enforced by a storage-level unique index).
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
