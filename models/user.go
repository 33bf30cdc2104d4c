package models

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleStaff UserRole = "staff"
	RoleAdmin UserRole = "admin"
)

type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type User struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	Name     string       `json:"name"`
	Email    string       `json:"email" gorm:"unique"`
	Password string       `json:"password,omitempty"` // empty for federated users
	GoogleID string       `json:"google_id,omitempty" gorm:"index"`
	Provider AuthProvider `json:"provider" gorm:"default:local"`
	Avatar   string       `json:"avatar,omitempty"`
	Phone    string       `json:"phone,omitempty"`
	Role     UserRole     `json:"role" gorm:"default:user"`
	IsActive bool         `json:"is_active" gorm:"default:true"`

	// Staff approval workflow
	ApprovalStatus ApprovalStatus `json:"approval_status" gorm:"default:approved"`
	ReviewedByID   *uint          `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time     `json:"reviewed_at,omitempty"`
	ReviewNotes    string         `json:"review_notes,omitempty"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RequiresPassword reports whether a password is mandatory for this account.
// Federated users (Google) sign in without one.
func (u *User) RequiresPassword() bool {
	return u.Provider == ProviderLocal || u.Provider == ""
}
