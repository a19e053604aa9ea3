package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/authgate/backend/internal/model"
)

const userColumns = `id, email, password_hash, full_name, birth_date, role, created_at, last_login_at`

func (db *Postgres) CreateUser(ctx context.Context, email, passwordHash, fullName string, birthDate time.Time, role string) (*model.User, error) {
	query := `
		INSERT INTO users (email, password_hash, full_name, birth_date, role, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING ` + userColumns
	var user model.User
	err := db.Pool.QueryRow(ctx, query, email, passwordHash, fullName, birthDate, role).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.BirthDate,
		&user.Role,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail matches case-insensitively; callers normalize anyway but
// the lower() comparison keeps lookups consistent with the unique index.
func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE lower(email) = lower($1)
	`
	var user model.User
	err := db.Pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.BirthDate,
		&user.Role,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	var user model.User
	err := db.Pool.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.BirthDate,
		&user.Role,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) GetUserBirthDate(ctx context.Context, userID int64) (time.Time, error) {
	var birthDate time.Time
	err := db.Pool.QueryRow(ctx, `SELECT birth_date FROM users WHERE id = $1`, userID).Scan(&birthDate)
	if err != nil {
		return time.Time{}, err
	}
	return birthDate, nil
}

func (db *Postgres) TouchLastLogin(ctx context.Context, userID int64) error {
	_, err := db.Pool.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID)
	return err
}

func (db *Postgres) UpdateUserRole(ctx context.Context, userID int64, role string) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, userID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
