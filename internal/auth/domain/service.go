package domain

import (
	"context"
	"time"
)

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// Authenticate verifies a bearer token and returns the user it was issued to.
	Authenticate(ctx context.Context, rawToken string) (*Principal, error)
	Me(ctx context.Context, userID string) (*UserResponse, error)

	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	ListUsers(ctx context.Context) ([]UserResponse, error)
	UpdateUser(ctx context.Context, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actorID, userID string) error
	// EnsureAdmin creates the bootstrap administrator when no user exists yet.
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	ClientIP string `json:"-"`
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// Principal is the authenticated caller carried through a request.
type Principal struct {
	UserID   string
	Username string
	Role     Role
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	ID       string  `json:"-"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
