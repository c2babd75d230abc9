package models

import "time"

// Role determines which routes and data a user can access
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// IsAdmin reports whether the role grants township admin access
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// IsSuperAdmin reports whether the role grants cross-township access
func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleSuperAdmin
}

// User represents an employee, township admin or super admin account
type User struct {
	ID            int64
	Email         string
	PasswordHash  string
	FullName      string
	OAuthProvider string
	OAuthSubject  string
	Role          Role
	TownshipID    *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Session represents an authenticated session
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
