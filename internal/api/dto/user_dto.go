package dto

import (
	"time"

	"github.com/spec-kit/signals-service/internal/domain"
)

// RegisterRequest creates an official's account.
type RegisterRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Permissions []string `json:"permissions,omitempty"`
}

// LoginRequest authenticates an official.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the read view of an account.
type UserResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	IsSuperuser bool      `json:"is_superuser"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUserResponse maps a user.
func NewUserResponse(user *domain.User) *UserResponse {
	permissions := user.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return &UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		IsSuperuser: user.IsSuperuser,
		Permissions: permissions,
		CreatedAt:   user.CreatedAt,
	}
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}
