package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 7 * 24 * time.Hour
	RefreshTokenTTL = 14 * 24 * time.Hour

	// StoredRefreshTTL is written into the refresh_tokens row. It is shorter
	// than the token's own exp claim; the refresh endpoint only checks that a
	// row exists, so the row expiry is informational. Kept for compatibility
	// with existing clients and data.
	StoredRefreshTTL = 7 * 24 * time.Hour
)

type AuthClaims struct {
	jwt.RegisteredClaims
}

func SignAccessToken(userID string, accessSecret []byte) (string, error) {
	return sign(userID, AccessTokenTTL, accessSecret)
}

func SignRefreshToken(userID string, refreshSecret []byte) (string, error) {
	return sign(userID, RefreshTokenTTL, refreshSecret)
}

func sign(userID string, ttl time.Duration, secret []byte) (string, error) {
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// ClaimsFromToken verifies signature and expiry. Malformed, expired and
// tampered tokens all come back as a plain error so callers can treat them
// uniformly as unauthorized.
func ClaimsFromToken(tokenStr string, secret []byte) (*AuthClaims, error) {
	var claims AuthClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}
