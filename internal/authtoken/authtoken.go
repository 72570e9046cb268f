// Package authtoken issues and verifies the bearer access token described
// in spec.md §4.6/§6: a signed token carrying iat, exp, and username
// (the wallet address). Grounded on the golang-jwt/jwt/v5 dependency
// attested across the example pack's manifests (C11).
package authtoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the token payload: iat/exp plus the wallet address under
// "username", matching spec.md §4.6's wire description.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Codec signs and parses access tokens with a single HMAC-SHA256 secret.
type Codec struct {
	secret []byte
	expire time.Duration
}

func NewCodec(secret string, expire time.Duration) *Codec {
	return &Codec{secret: []byte(secret), expire: expire}
}

// Issue mints a token for the given wallet address, valid for the
// configured access-expire duration from now.
func (c *Codec) Issue(now time.Time, walletAddress string) (string, error) {
	claims := Claims{
		Username: walletAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.expire)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Parse validates the signature and expiry and returns the claims.
func (c *Codec) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
