package users

import "time"

// User is an account as exposed to callers. The password hash never leaves the package.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials pairs an account with its stored bcrypt hash.
type Credentials struct {
	User
	PasswordHash string
}

// CreateInput registers a new account.
type CreateInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=255"`
	FullName string `json:"full_name" validate:"max=100"`
	Role     string `json:"role" validate:"required,max=20"`
}

// UpdateInput changes profile fields.
type UpdateInput struct {
	FullName string `json:"full_name" validate:"max=100"`
	Role     string `json:"role" validate:"required,max=20"`
}

// PasswordInput replaces the password.
type PasswordInput struct {
	Password string `json:"password" validate:"required,min=6,max=255"`
}

// ListFilter narrows List.
type ListFilter struct {
	Search     string
	Role       string
	ActiveOnly bool
}
