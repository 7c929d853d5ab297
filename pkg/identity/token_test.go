package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndAuthenticate(t *testing.T) {
	tm := NewTokenManager("secret", "")
	token, err := tm.Mint("ada", "ada@example.com", []string{"devs"}, time.Hour)
	require.NoError(t, err)

	p, err := tm.Authenticate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "ada", p.User)
	assert.Equal(t, []string{"devs"}, p.Groups)
	assert.NotEmpty(t, p.TokenID)

	p, err = tm.Authenticate(token)
	require.NoError(t, err, "the prefix is optional")
	assert.Equal(t, "ada", p.User)
}

func TestEmailClaim(t *testing.T) {
	tm := NewTokenManager("secret", "email")
	token, err := tm.Mint("ada", "ada@example.com", nil, time.Hour)
	require.NoError(t, err)

	p, err := tm.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", p.User)

	token, err = tm.Mint("bob", "", nil, time.Hour)
	require.NoError(t, err)
	_, err = tm.Authenticate(token)
	assert.ErrorIs(t, err, ErrMissingClaim)
}

func TestRejectedTokens(t *testing.T) {
	tm := NewTokenManager("secret", "")

	_, err := tm.Authenticate("")
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = tm.Authenticate("Bearer ")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = tm.Authenticate("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewTokenManager("other", "").Mint("ada", "", nil, time.Hour)
	require.NoError(t, err)
	_, err = tm.Authenticate(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := tm.Mint("ada", "", nil, -time.Minute)
	require.NoError(t, err)
	_, err = tm.Authenticate(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRejectsOtherSigningMethods(t *testing.T) {
	tm := NewTokenManager("secret", "")
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "mallory"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.Validate(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevoke(t *testing.T) {
	tm := NewTokenManager("secret", "")
	token, err := tm.Mint("ada", "", nil, time.Hour)
	require.NoError(t, err)

	require.NoError(t, tm.Revoke(token))
	_, err = tm.Authenticate(token)
	assert.ErrorIs(t, err, ErrRevokedToken)

	tm.CleanupRevokedTokens(time.Hour)
	_, err = tm.Authenticate(token)
	assert.ErrorIs(t, err, ErrRevokedToken, "recent revocations are kept")

	tm.CleanupRevokedTokens(0)
	_, err = tm.Authenticate(token)
	assert.NoError(t, err)

	assert.Error(t, tm.Revoke("garbage"))
}

func TestAnonymousPrincipal(t *testing.T) {
	p := AnonymousPrincipal()
	assert.True(t, p.Anonymous)
	assert.Equal(t, "anonymous", p.User)
	assert.Empty(t, p.TokenID)
}
