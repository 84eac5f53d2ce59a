package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	m := NewManager("super-secret", time.Hour)

	tok, expiresAt, err := m.Issue("user-123")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userID, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestIssue_TokensAreFresh(t *testing.T) {
	t.Parallel()

	m := NewManager("super-secret", time.Hour)

	a, _, err := m.Issue("u1")
	require.NoError(t, err)
	b, _, err := m.Issue("u1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestIssue_EmptyUserID(t *testing.T) {
	t.Parallel()

	_, _, err := NewManager("k", time.Hour).Issue("")
	assert.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager("secret", 7*24*time.Hour).WithClock(func() time.Time { return issuedAt })

	tok, expiresAt, err := m.Issue("u1")
	require.NoError(t, err)

	// still valid one second before expiry
	_, err = m.WithClock(func() time.Time { return expiresAt.Add(-time.Second) }).Verify(tok)
	require.NoError(t, err)

	// no grace window once the expiry instant is reached
	_, err = m.WithClock(func() time.Time { return expiresAt }).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.WithClock(func() time.Time { return expiresAt.Add(time.Second) }).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewManager("right-secret", time.Hour).Issue("u2")
	require.NoError(t, err)

	_, err = NewManager("wrong-secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	m := NewManager("k", time.Hour)

	for _, raw := range []string{"", "not.a.jwt", "abc", strings.Repeat("x", 40)} {
		_, err := m.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	m := NewManager("k", time.Hour)
	tok, _, err := m.Issue("u1")
	require.NoError(t, err)

	other, _, err := m.Issue("u2")
	require.NoError(t, err)

	// splice the payload of one token onto the signature of another
	a := strings.Split(tok, ".")
	b := strings.Split(other, ".")
	forged := a[0] + "." + b[1] + "." + a[2]

	_, err = m.Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewManager("k", time.Hour).Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewManager("k", time.Hour).Verify(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RequiresExpiryAndType(t *testing.T) {
	t.Parallel()

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		TokenType:        tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "u1"},
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewManager("k", time.Hour).Verify(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewManager("k", time.Hour).Verify(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
