package model

import "time"

// APIKey is a static service-to-service credential. Owner is a free-text
// label, not a user reference. A nil ExpiresAt means the key never expires.
type APIKey struct {
	ID         int64
	KeyValue   string
	Name       string
	Owner      string
	Scopes     []string
	CreatedAt  time.Time
	ExpiresAt  *time.Time
	Active     bool
	LastUsedAt *time.Time
}

// APIKeyPrincipal is the identity attached to a request after the API-key
// gate succeeds.
type APIKeyPrincipal struct {
	KeyID  int64
	Name   string
	Owner  string
	Scopes []string
}

type CreateAPIKeyRequest struct {
	Name      string   `json:"name"`
	Owner     string   `json:"owner"`
	Scopes    []string `json:"scopes"`
	ExpiresAt *string  `json:"expires_at"` // RFC 3339, omit for non-expiring keys
}

type APIKeyResponse struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Owner      string     `json:"owner"`
	Scopes     []string   `json:"scopes"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	Active     bool       `json:"active"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

// CreatedAPIKeyResponse carries the raw key value. It is returned exactly
// once, at creation; only a lookup by the full value succeeds afterwards.
type CreatedAPIKeyResponse struct {
	APIKeyResponse
	Key string `json:"key"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}
