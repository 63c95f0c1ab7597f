package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimsFor(sub string, exp time.Time) Claims {
	return Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   sub,
			Issuer:    "idp",
			ExpiresAt: jwtlib.NewNumericDate(exp),
		},
	}
}

func TestHMACVerifier_Valid(t *testing.T) {
	v := NewHMACVerifier("secret", "idp", 0)
	tok, err := SignHS256("secret", claimsFor("emp-1", time.Now().Add(time.Hour)))
	require.NoError(t, err)

	c, err := v.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", c.UserID())
}

func TestHMACVerifier_Rejects(t *testing.T) {
	v := NewHMACVerifier("secret", "idp", 0)

	expired, err := SignHS256("secret", claimsFor("emp-1", time.Now().Add(-time.Hour)))
	require.NoError(t, err)
	_, err = v.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)

	wrongKey, err := SignHS256("other", claimsFor("emp-1", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	_, err = v.ValidateToken(wrongKey)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	refresh := claimsFor("emp-1", time.Now().Add(time.Hour))
	refresh.TokenType = "refresh"
	tok, err := SignHS256("secret", refresh)
	require.NoError(t, err)
	_, err = v.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	noSubject, err := SignHS256("secret", claimsFor("", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	_, err = v.ValidateToken(noSubject)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	otherIssuer := claimsFor("emp-1", time.Now().Add(time.Hour))
	otherIssuer.Issuer = "someone-else"
	tok, err = SignHS256("secret", otherIssuer)
	require.NoError(t, err)
	_, err = v.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = v.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHMACVerifier_Leeway(t *testing.T) {
	v := NewHMACVerifier("secret", "", time.Minute)
	tok, err := SignHS256("secret", claimsFor("emp-1", time.Now().Add(-10*time.Second)))
	require.NoError(t, err)
	_, err = v.ValidateToken(tok)
	assert.NoError(t, err)
}
