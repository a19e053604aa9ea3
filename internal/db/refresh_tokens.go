package db

import (
	"context"
	"time"

	"github.com/authgate/backend/internal/model"
)

func (db *Postgres) InsertRefreshToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time, createdIP string) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at, created_ip)
		VALUES ($1, $2, $3, NOW(), $4)
	`
	_, err := db.Pool.Exec(ctx, query, userID, tokenHash, expiresAt, createdIP)
	return err
}

func (db *Postgres) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked_at, created_at, created_ip
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	var token model.RefreshToken
	err := db.Pool.QueryRow(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.RevokedAt,
		&token.CreatedAt,
		&token.CreatedIP,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (db *Postgres) RevokeRefreshTokenByHash(ctx context.Context, tokenHash string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE token_hash = $1 AND revoked_at IS NULL
	`
	_, err := db.Pool.Exec(ctx, query, tokenHash)
	return err
}

// RotateRefreshToken atomically revokes the presented token and inserts its
// replacement. The revoke is a compare-and-set: it only matches a row that
// is still unrevoked and unexpired, so concurrent rotations of the same
// token commit exactly one winner; everyone else sees pgx.ErrNoRows.
// Returns the owning user id on success.
func (db *Postgres) RotateRefreshToken(ctx context.Context, oldTokenHash, newTokenHash string, newExpiresAt time.Time, createdIP string) (int64, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var userID int64
	err = tx.QueryRow(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > NOW()
		RETURNING user_id
	`, oldTokenHash).Scan(&userID)
	if err != nil {
		return 0, err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at, created_ip)
		VALUES ($1, $2, $3, NOW(), $4)
	`, userID, newTokenHash, newExpiresAt, createdIP); err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return userID, nil
}

// DeleteExpiredRefreshTokens removes rows past expiry. Intended for a
// periodic sweep; correctness never depends on it running.
func (db *Postgres) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
