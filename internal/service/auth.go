package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/authgate/backend/internal/config"
	"github.com/authgate/backend/internal/db"
	"github.com/authgate/backend/internal/model"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	maxEmailLength    = 254
	refreshTokenBytes = 64
)

// UserStore is the persistence surface the auth service needs for users.
// Implemented by db.Postgres, faked in tests.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash, fullName string, birthDate time.Time, role string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	TouchLastLogin(ctx context.Context, userID int64) error
	UpdateUserRole(ctx context.Context, userID int64, role string) error
}

// RefreshTokenStore persists opaque refresh tokens, keyed by their sha256
// hash. Rotation must be atomic: exactly one concurrent caller wins.
type RefreshTokenStore interface {
	InsertRefreshToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time, createdIP string) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RevokeRefreshTokenByHash(ctx context.Context, tokenHash string) error
	RotateRefreshToken(ctx context.Context, oldTokenHash, newTokenHash string, newExpiresAt time.Time, createdIP string) (int64, error)
}

// AuthService orchestrates registration, login, refresh rotation and logout.
type AuthService struct {
	users      UserStore
	tokens     RefreshTokenStore
	issuer     *TokenIssuer
	refreshTTL time.Duration
	bcryptCost int
	logger     *zap.Logger
}

func NewAuthService(users UserStore, tokens RefreshTokenStore, cfg config.AuthConfig, logger *zap.Logger) (*AuthService, error) {
	accessTTLMin, err := strconv.Atoi(cfg.AccessTTLMin)
	if err != nil || accessTTLMin <= 0 {
		return nil, fmt.Errorf("%w: invalid ACCESS_TOKEN_TTL_MIN", ErrMisconfigured)
	}
	refreshTTLDays, err := strconv.Atoi(cfg.RefreshTTLDays)
	if err != nil || refreshTTLDays <= 0 {
		return nil, fmt.Errorf("%w: invalid REFRESH_TOKEN_TTL_DAYS", ErrMisconfigured)
	}
	clockSkewSec, err := strconv.Atoi(cfg.ClockSkewSec)
	if err != nil || clockSkewSec < 0 {
		return nil, fmt.Errorf("%w: invalid CLOCK_SKEW_SEC", ErrMisconfigured)
	}
	bcryptCost, err := strconv.Atoi(cfg.BcryptCost)
	if err != nil || bcryptCost < 4 || bcryptCost > 31 {
		return nil, fmt.Errorf("%w: invalid BCRYPT_COST", ErrMisconfigured)
	}

	issuer, err := NewTokenIssuer(
		cfg.JWTSecret,
		cfg.JWTIssuer,
		cfg.JWTAudience,
		time.Duration(accessTTLMin)*time.Minute,
		time.Duration(clockSkewSec)*time.Second,
	)
	if err != nil {
		return nil, err
	}

	return &AuthService{
		users:      users,
		tokens:     tokens,
		issuer:     issuer,
		refreshTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
		bcryptCost: bcryptCost,
		logger:     logger,
	}, nil
}

// VerifyAccessToken is the bearer-gate decision function.
func (s *AuthService) VerifyAccessToken(tokenStr string) (*model.Principal, error) {
	return s.issuer.Verify(tokenStr)
}

// EnsureAdmin seeds an Admin-role account at startup when configured.
// A no-op if the email is already registered.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return fmt.Errorf("%w: invalid ADMIN_EMAIL", ErrMisconfigured)
	}
	if err := validatePassword(password); err != nil {
		return fmt.Errorf("%w: invalid ADMIN_PASSWORD", ErrMisconfigured)
	}

	_, err = s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !db.IsNoRows(err) {
		return err
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}

	_, err = s.users.CreateUser(ctx, email, hash, "Administrator", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), model.RoleAdmin)
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

// Register creates a user and returns a fresh token pair. The email
// pre-check keeps the common case friendly; the unique index on
// lower(email) is the authoritative duplicate signal under races.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string, birthDate time.Time, ip string) (string, string, int64, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", "", 0, err
	}
	if err := validatePassword(password); err != nil {
		return "", "", 0, err
	}
	if birthDate.IsZero() || birthDate.After(time.Now()) {
		return "", "", 0, ErrInvalidInput
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return "", "", 0, ErrConflict
	} else if !db.IsNoRows(err) {
		return "", "", 0, err
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return "", "", 0, err
	}

	user, err := s.users.CreateUser(ctx, email, hash, strings.TrimSpace(fullName), birthDate, model.RoleUser)
	if err != nil {
		if isUniqueViolation(err) {
			return "", "", 0, ErrConflict
		}
		return "", "", 0, err
	}

	return s.issueTokens(ctx, user, ip)
}

// Login verifies credentials and returns a fresh token pair. Unknown email
// and wrong password are deliberately indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (string, string, int64, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", "", 0, ErrUnauthorized
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return "", "", 0, ErrUnauthorized
		}
		return "", "", 0, err
	}

	if !VerifyPassword(user.PasswordHash, password) {
		return "", "", 0, ErrUnauthorized
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("last-login update failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return s.issueTokens(ctx, user, ip)
}

// Refresh rotates the presented refresh token: the old row is revoked and
// the replacement inserted in one transaction, then a new access token is
// minted from the user's current role. Replaying the old token after either
// outcome fails with ErrUnauthorized.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, ip string) (string, string, int64, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", "", 0, ErrUnauthorized
	}

	record, err := s.tokens.GetRefreshTokenByHash(ctx, hashRefreshToken(refreshToken))
	if err != nil {
		if db.IsNoRows(err) {
			return "", "", 0, ErrUnauthorized
		}
		return "", "", 0, err
	}
	if record.RevokedAt != nil || time.Now().After(record.ExpiresAt) {
		return "", "", 0, ErrUnauthorized
	}

	newToken, newHash, err := newRefreshToken()
	if err != nil {
		return "", "", 0, err
	}

	userID, err := s.tokens.RotateRefreshToken(ctx, record.TokenHash, newHash, time.Now().Add(s.refreshTTL), ip)
	if err != nil {
		if db.IsNoRows(err) {
			// lost the race: someone else rotated or revoked this token first
			return "", "", 0, ErrUnauthorized
		}
		return "", "", 0, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return "", "", 0, ErrUnauthorized
		}
		return "", "", 0, err
	}

	accessToken, expiresIn, err := s.issuer.Issue(user)
	if err != nil {
		return "", "", 0, err
	}

	return accessToken, newToken, expiresIn, nil
}

// ChangeRole updates a user's role. Outstanding access tokens keep the old
// role until they expire; the next refresh rotation picks up the new one.
func (s *AuthService) ChangeRole(ctx context.Context, userID int64, role string) error {
	if role != model.RoleUser && role != model.RoleAdmin {
		return ErrInvalidInput
	}
	err := s.users.UpdateUserRole(ctx, userID, role)
	if err != nil && db.IsNoRows(err) {
		return ErrInvalidInput
	}
	return err
}

// Logout revokes the presented refresh token. Quiet on every path: an
// unknown or already-revoked token is indistinguishable from a real one.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	return s.tokens.RevokeRefreshTokenByHash(ctx, hashRefreshToken(refreshToken))
}

func (s *AuthService) issueTokens(ctx context.Context, user *model.User, ip string) (string, string, int64, error) {
	accessToken, expiresIn, err := s.issuer.Issue(user)
	if err != nil {
		return "", "", 0, err
	}

	refreshToken, refreshHash, err := newRefreshToken()
	if err != nil {
		return "", "", 0, err
	}

	if err := s.tokens.InsertRefreshToken(ctx, user.ID, refreshHash, time.Now().Add(s.refreshTTL), ip); err != nil {
		return "", "", 0, err
	}

	return accessToken, refreshToken, expiresIn, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.IndexByte(email, '@')
	if len(email) > maxEmailLength || at < 1 || at == len(email)-1 {
		return "", ErrInvalidInput
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrInvalidInput
	}
	return nil
}

func newRefreshToken() (string, string, error) {
	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	return token, hashRefreshToken(token), nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
