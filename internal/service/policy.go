package service

import (
	"context"
	"time"

	"github.com/authgate/backend/internal/model"
)

const adultAge = 18

// RequireRole allows the principal iff its role is in the given set. A nil
// principal always denies: unauthenticated is distinct from unauthorized.
func RequireRole(principal *model.Principal, roles ...string) error {
	if principal == nil {
		return ErrUnauthorized
	}
	for _, role := range roles {
		if principal.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// UserAgeLookup is the narrow port the age policy needs; the evaluator
// never sees the rest of the user store.
type UserAgeLookup interface {
	GetUserBirthDate(ctx context.Context, userID int64) (time.Time, error)
}

// AgePolicy evaluates the database-backed adulthood rule.
type AgePolicy struct {
	users UserAgeLookup
}

func NewAgePolicy(users UserAgeLookup) *AgePolicy {
	return &AgePolicy{users: users}
}

// MustBeOver18 denies unless the principal's user is at least 18 today.
// Someone whose 18th birthday is today passes. Missing principal or user
// row fails closed.
func (p *AgePolicy) MustBeOver18(ctx context.Context, principal *model.Principal) error {
	if principal == nil {
		return ErrUnauthorized
	}

	birthDate, err := p.users.GetUserBirthDate(ctx, principal.UserID)
	if err != nil {
		return ErrForbidden
	}

	if ageInYears(birthDate, time.Now()) < adultAge {
		return ErrForbidden
	}
	return nil
}

// ageInYears computes whole years between birthDate and now, counting a
// year only once the birthday has been reached.
func ageInYears(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		years--
	}
	return years
}
