package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/authgate/backend/internal/db"
	"github.com/authgate/backend/internal/model"
)

const apiKeyBytes = 32

// APIKeyStore is the persistence surface for static API keys.
type APIKeyStore interface {
	GetActiveAPIKeyByValue(ctx context.Context, keyValue string) (*model.APIKey, error)
	TouchAPIKeyLastUsed(ctx context.Context, keyID int64) error
	CreateAPIKey(ctx context.Context, keyValue, name, owner string, scopes []string, expiresAt *time.Time) (*model.APIKey, error)
	ListAPIKeys(ctx context.Context) ([]model.APIKey, error)
	DeactivateAPIKey(ctx context.Context, keyID int64) error
}

// APIKeyService is the API-key gate decision function plus the
// administrative key lifecycle.
type APIKeyService struct {
	store  APIKeyStore
	logger *zap.Logger
}

func NewAPIKeyService(store APIKeyStore, logger *zap.Logger) *APIKeyService {
	return &APIKeyService{store: store, logger: logger}
}

// Authenticate resolves a presented key value to a principal. Unknown,
// deactivated and expired keys all collapse to ErrUnauthorized; an expired
// key's record is left untouched (no auto-deactivation). On success the
// last-used timestamp is written synchronously, but a failed write only
// logs — the audit touch must never block the request.
func (s *APIKeyService) Authenticate(ctx context.Context, keyValue string) (*model.APIKeyPrincipal, error) {
	keyValue = strings.TrimSpace(keyValue)
	if keyValue == "" {
		return nil, ErrUnauthorized
	}

	key, err := s.store.GetActiveAPIKeyByValue(ctx, keyValue)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if key.ExpiresAt != nil && key.ExpiresAt.Before(time.Now()) {
		return nil, ErrUnauthorized
	}

	if err := s.store.TouchAPIKeyLastUsed(ctx, key.ID); err != nil {
		s.logger.Warn("api key last-used update failed", zap.Int64("key_id", key.ID), zap.Error(err))
	}

	return &model.APIKeyPrincipal{
		KeyID:  key.ID,
		Name:   key.Name,
		Owner:  key.Owner,
		Scopes: key.Scopes,
	}, nil
}

// Create mints a new key with a random value and stores it active. The raw
// value is only available in the returned record.
func (s *APIKeyService) Create(ctx context.Context, name, owner string, scopes []string, expiresAt *time.Time) (*model.APIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	if expiresAt != nil && expiresAt.Before(time.Now()) {
		return nil, ErrInvalidInput
	}

	raw := make([]byte, apiKeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	keyValue := base64.RawURLEncoding.EncodeToString(raw)

	if scopes == nil {
		scopes = []string{}
	}
	return s.store.CreateAPIKey(ctx, keyValue, name, strings.TrimSpace(owner), scopes, expiresAt)
}

func (s *APIKeyService) List(ctx context.Context) ([]model.APIKey, error) {
	return s.store.ListAPIKeys(ctx)
}

// Deactivate flips the key inactive. There is no way back through this
// service; reactivation is a manual database operation.
func (s *APIKeyService) Deactivate(ctx context.Context, keyID int64) error {
	err := s.store.DeactivateAPIKey(ctx, keyID)
	if err != nil && db.IsNoRows(err) {
		return ErrInvalidInput
	}
	return err
}
