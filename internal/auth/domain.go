package auth

import "time"

// User represents an authenticated user account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleApprover marks users allowed to approve or reject pending quotes.
const RoleApprover = "approver"

// CanApprove reports whether the user may resolve pending approvals.
func (u User) CanApprove() bool {
	return u.Role == RoleApprover || u.Role == "admin"
}
