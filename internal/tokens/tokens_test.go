package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := SignAccessToken("alice1", secret)
	require.NoError(t, err)

	claims, err := ClaimsFromToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "alice1", claims.Subject)

	ttl := time.Until(claims.ExpiresAt.Time)
	require.InDelta(t, AccessTokenTTL.Seconds(), ttl.Seconds(), 5)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := SignRefreshToken("alice1", secret)
	require.NoError(t, err)

	claims, err := ClaimsFromToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "alice1", claims.Subject)

	ttl := time.Until(claims.ExpiresAt.Time)
	require.InDelta(t, RefreshTokenTTL.Seconds(), ttl.Seconds(), 5)
}

func TestWrongSecretFails(t *testing.T) {
	token, err := SignAccessToken("alice1", secret)
	require.NoError(t, err)

	_, err = ClaimsFromToken(token, []byte("other-secret"))
	require.Error(t, err)
}

func TestExpiredTokenFails(t *testing.T) {
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ClaimsFromToken(token, secret)
	require.Error(t, err)
}

func TestMalformedTokenFails(t *testing.T) {
	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := ClaimsFromToken(raw, secret)
		require.Error(t, err, "token %q", raw)
	}
}

func TestUnexpectedSigningMethodFails(t *testing.T) {
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ClaimsFromToken(token, secret)
	require.Error(t, err)
}
