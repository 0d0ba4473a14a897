package models

import (
	"strings"
	"time"
)

// UserRole represents the closed set of roles known to the RBAC layer.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleAffiliate  UserRole = "AFFILIATE"
)

// ParseRole maps a stored or submitted role to the enum. Unknown values are rejected.
func ParseRole(raw string) (UserRole, bool) {
	switch UserRole(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleSuperAdmin:
		return RoleSuperAdmin, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleAffiliate:
		return RoleAffiliate, true
	default:
		return "", false
	}
}

// IsAdmin reports whether the role carries administrative rights.
func (r UserRole) IsAdmin() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin:
		return true
	case RoleAffiliate:
		return false
	default:
		return false
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID           int64      `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"fullName"`
	Phone        string     `db:"phone" json:"phone"`
	Role         UserRole   `db:"role" json:"role"`
	ClientID     *int64     `db:"client_id" json:"clientId,omitempty"`
	Approved     bool       `db:"approved" json:"approved"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// UserProfile is the contact card of a user together with their affiliate.
type UserProfile struct {
	ID         int64    `db:"id" json:"id"`
	FullName   string   `db:"full_name" json:"fullName"`
	Email      string   `db:"email" json:"email"`
	Phone      string   `db:"phone" json:"phone"`
	Role       UserRole `db:"role" json:"role"`
	ClientID   *int64   `db:"client_id" json:"clientId,omitempty"`
	ClientName string   `db:"client_name" json:"affiliate"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
