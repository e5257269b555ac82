package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	issuer, err := NewIssuer(Config{Key: []byte("secret"), Issuer: "sellers-pro", Now: fixedClock(now)})
	require.NoError(t, err)

	cred, err := issuer.Issue("acc-1", "7001")
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultTTL), cred.ExpiresAt)

	claims, err := issuer.Verify(cred.Token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID)
	assert.Equal(t, "7001", claims.ChannelID)
	assert.Equal(t, now, claims.IssuedAt)
	assert.Equal(t, cred.ExpiresAt, claims.ExpiresAt)
}

func TestIssuer_ExpiredAfterWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := now
	issuer, err := NewIssuer(Config{Key: []byte("secret"), TTL: time.Hour, Now: func() time.Time { return clock }})
	require.NoError(t, err)

	cred, err := issuer.Issue("acc-1", "7001")
	require.NoError(t, err)

	clock = now.Add(59 * time.Minute)
	_, err = issuer.Verify(cred.Token)
	require.NoError(t, err)

	clock = now.Add(time.Hour + time.Second)
	_, err = issuer.Verify(cred.Token)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestIssuer_RejectsForeignKeyAndTampering(t *testing.T) {
	issuer, err := NewIssuer(Config{Key: []byte("secret")})
	require.NoError(t, err)
	other, err := NewIssuer(Config{Key: []byte("other-secret")})
	require.NoError(t, err)

	cred, err := other.Issue("acc-1", "7001")
	require.NoError(t, err)
	_, err = issuer.Verify(cred.Token)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalid)

	good, err := issuer.Issue("acc-1", "7001")
	require.NoError(t, err)
	_, err = issuer.Verify(good.Token + "x")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestIssuer_RejectsNoneAlgorithm(t *testing.T) {
	issuer, err := NewIssuer(Config{Key: []byte("secret")})
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "acc-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestNewIssuer_RequiresKey(t *testing.T) {
	_, err := NewIssuer(Config{})
	assert.Error(t, err)
}
