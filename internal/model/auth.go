package model

import "time"

// Role values stored on users and carried in access-token claims.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"full_name"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Principal is the authenticated identity attached to a request after the
// bearer gate succeeds. It is derived from token claims, never persisted.
type Principal struct {
	UserID  int64
	Email   string
	Role    string
	TokenID string
}

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	BirthDate    time.Time
	Role         string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

type RefreshToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
	CreatedIP string
}
