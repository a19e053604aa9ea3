package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"github.com/authgate/backend/internal/model"
)

type fakeAgeLookup struct {
	birthDates map[int64]time.Time
}

func (f *fakeAgeLookup) GetUserBirthDate(ctx context.Context, userID int64) (time.Time, error) {
	birthDate, ok := f.birthDates[userID]
	if !ok {
		return time.Time{}, pgx.ErrNoRows
	}
	return birthDate, nil
}

func TestRequireRole(t *testing.T) {
	admin := &model.Principal{UserID: 1, Role: model.RoleAdmin}
	user := &model.Principal{UserID: 2, Role: model.RoleUser}

	assert.NoError(t, RequireRole(admin, model.RoleAdmin))
	assert.NoError(t, RequireRole(user, model.RoleUser, model.RoleAdmin))
	assert.ErrorIs(t, RequireRole(user, model.RoleAdmin), ErrForbidden)
	assert.ErrorIs(t, RequireRole(admin), ErrForbidden)
	assert.ErrorIs(t, RequireRole(nil, model.RoleUser), ErrUnauthorized)
}

func TestMustBeOver18Boundary(t *testing.T) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	cases := map[string]struct {
		birthDate time.Time
		wantErr   error
	}{
		"18th birthday today":    {birthDate: today.AddDate(-18, 0, 0), wantErr: nil},
		"one day short of 18":    {birthDate: today.AddDate(-18, 0, 1), wantErr: ErrForbidden},
		"well over 18":           {birthDate: today.AddDate(-40, 0, 0), wantErr: nil},
		"turns 18 tomorrow only": {birthDate: today.AddDate(-17, -11, -29), wantErr: ErrForbidden},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			policy := NewAgePolicy(&fakeAgeLookup{birthDates: map[int64]time.Time{1: tc.birthDate}})
			err := policy.MustBeOver18(context.Background(), &model.Principal{UserID: 1})
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestMustBeOver18FailsClosed(t *testing.T) {
	policy := NewAgePolicy(&fakeAgeLookup{birthDates: map[int64]time.Time{}})

	// unknown user row denies rather than erroring
	assert.ErrorIs(t, policy.MustBeOver18(context.Background(), &model.Principal{UserID: 99}), ErrForbidden)

	// unauthenticated denies too, with the authentication error
	assert.ErrorIs(t, policy.MustBeOver18(context.Background(), nil), ErrUnauthorized)
}

func TestAgeInYears(t *testing.T) {
	birth := time.Date(2000, 6, 15, 0, 0, 0, 0, time.UTC)

	cases := map[string]struct {
		now  time.Time
		want int
	}{
		"day before birthday": {now: time.Date(2018, 6, 14, 0, 0, 0, 0, time.UTC), want: 17},
		"on birthday":         {now: time.Date(2018, 6, 15, 0, 0, 0, 0, time.UTC), want: 18},
		"day after birthday":  {now: time.Date(2018, 6, 16, 0, 0, 0, 0, time.UTC), want: 18},
		"earlier month":       {now: time.Date(2018, 5, 30, 0, 0, 0, 0, time.UTC), want: 17},
		"later month":         {now: time.Date(2018, 7, 1, 0, 0, 0, 0, time.UTC), want: 18},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ageInYears(birth, tc.now))
		})
	}
}
