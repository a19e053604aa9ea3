package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/authgate/backend/internal/model"
)

const apiKeyColumns = `id, key_value, name, owner, scopes, created_at, expires_at, active, last_used_at`

// GetActiveAPIKeyByValue looks a key up by its exact value, active keys
// only. Deactivated keys are indistinguishable from unknown ones here;
// expiry is checked by the caller so the record stays untouched.
func (db *Postgres) GetActiveAPIKeyByValue(ctx context.Context, keyValue string) (*model.APIKey, error) {
	query := `
		SELECT ` + apiKeyColumns + `
		FROM api_keys
		WHERE key_value = $1 AND active = TRUE
	`
	return db.scanAPIKey(db.Pool.QueryRow(ctx, query, keyValue))
}

func (db *Postgres) TouchAPIKeyLastUsed(ctx context.Context, keyID int64) error {
	_, err := db.Pool.Exec(ctx, `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`, keyID)
	return err
}

func (db *Postgres) CreateAPIKey(ctx context.Context, keyValue, name, owner string, scopes []string, expiresAt *time.Time) (*model.APIKey, error) {
	query := `
		INSERT INTO api_keys (key_value, name, owner, scopes, created_at, expires_at, active)
		VALUES ($1, $2, $3, $4, NOW(), $5, TRUE)
		RETURNING ` + apiKeyColumns
	return db.scanAPIKey(db.Pool.QueryRow(ctx, query, keyValue, name, owner, scopes, expiresAt))
}

func (db *Postgres) ListAPIKeys(ctx context.Context) ([]model.APIKey, error) {
	query := `
		SELECT ` + apiKeyColumns + `
		FROM api_keys
		ORDER BY created_at DESC
	`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []model.APIKey
	for rows.Next() {
		key, err := db.scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, *key)
	}
	return keys, rows.Err()
}

// DeactivateAPIKey flips the active flag. Keys are never deleted; revocation
// is a flag flip so the audit trail survives.
func (db *Postgres) DeactivateAPIKey(ctx context.Context, keyID int64) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE api_keys SET active = FALSE WHERE id = $1`, keyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (db *Postgres) scanAPIKey(row pgx.Row) (*model.APIKey, error) {
	var key model.APIKey
	err := row.Scan(
		&key.ID,
		&key.KeyValue,
		&key.Name,
		&key.Owner,
		&key.Scopes,
		&key.CreatedAt,
		&key.ExpiresAt,
		&key.Active,
		&key.LastUsedAt,
	)
	if err != nil {
		return nil, err
	}
	return &key, nil
}
