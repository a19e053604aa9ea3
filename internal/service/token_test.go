package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/backend/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testUser() *model.User {
	return &model.User{
		ID:    42,
		Email: "a@x.com",
		Role:  model.RoleUser,
	}
}

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testSecret, "authgate", "authgate-api", 15*time.Minute, 5*time.Second)
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuerRejectsShortSecret(t *testing.T) {
	_, err := NewTokenIssuer("too-short", "authgate", "authgate-api", time.Minute, 0)
	require.ErrorIs(t, err, ErrMisconfigured)
}

func TestIssueAndVerify(t *testing.T) {
	issuer := newTestIssuer(t)

	token, expiresIn, err := issuer.Issue(testUser())
	require.NoError(t, err)
	assert.EqualValues(t, 15*60, expiresIn)

	principal, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, principal.UserID)
	assert.Equal(t, "a@x.com", principal.Email)
	assert.Equal(t, model.RoleUser, principal.Role)
	assert.NotEmpty(t, principal.TokenID)
}

func TestIssueMintsUniqueTokens(t *testing.T) {
	issuer := newTestIssuer(t)

	first, _, err := issuer.Issue(testUser())
	require.NoError(t, err)
	second, _, err := issuer.Issue(testUser())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	p1, err := issuer.Verify(first)
	require.NoError(t, err)
	p2, err := issuer.Verify(second)
	require.NoError(t, err)
	assert.NotEqual(t, p1.TokenID, p2.TokenID)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	issuer := newTestIssuer(t)
	other, err := NewTokenIssuer("ffffffffffffffffffffffffffffffff", "authgate", "authgate-api", 15*time.Minute, 5*time.Second)
	require.NoError(t, err)

	token, _, err := other.Issue(testUser())
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyRejectsWrongIssuerAndAudience(t *testing.T) {
	issuer := newTestIssuer(t)

	cases := map[string]struct {
		iss string
		aud string
	}{
		"wrong issuer":   {iss: "someone-else", aud: "authgate-api"},
		"wrong audience": {iss: "authgate", aud: "other-api"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			other, err := NewTokenIssuer(testSecret, tc.iss, tc.aud, 15*time.Minute, 5*time.Second)
			require.NoError(t, err)

			token, _, err := other.Issue(testUser())
			require.NoError(t, err)

			_, err = issuer.Verify(token)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	short, err := NewTokenIssuer(testSecret, "authgate", "authgate-api", time.Nanosecond, 0)
	require.NoError(t, err)

	token, _, err := short.Issue(testUser())
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = short.Verify(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyLeewayToleratesSkew(t *testing.T) {
	// Expired one moment ago but within the 5s leeway window.
	short, err := NewTokenIssuer(testSecret, "authgate", "authgate-api", 20*time.Millisecond, 5*time.Second)
	require.NoError(t, err)

	token, _, err := short.Issue(testUser())
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	_, err = short.Verify(token)
	assert.NoError(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := newTestIssuer(t)
	_, err := issuer.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
