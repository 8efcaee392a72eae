package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of a Beams token.
const DefaultTokenTTL = 24 * time.Hour

// TokenIssuer issues and verifies Beams tokens signed with HS256.
// A Beams token asserts a single user identity to the push notification
// service of one instance; its issuer is the instance's service URL.
type TokenIssuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer.
//
//	secretKey: the instance secret key; used UTF-8 encoded as the HMAC key.
//	issuerURL: the "iss" claim value.
//	ttl: token lifetime (default: 24 hours).
func NewTokenIssuer(secretKey, issuerURL string, ttl time.Duration) *TokenIssuer {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		key:    []byte(secretKey),
		issuer: issuerURL,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a signed token whose subject is userID. Every call produces a
// fresh iat/exp pair.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	if len(t.key) == 0 {
		return "", errors.New("sign token: empty signing key")
	}
	now := t.now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a Beams token, returning its claims on success.
func (t *TokenIssuer) Verify(tokenStr string) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&jwt.RegisteredClaims{},
		func(tok *jwt.Token) (any, error) {
			if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
			}
			return t.key, nil
		},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// SetClock replaces the issuer's time source. Tests use it to pin iat/exp.
func (t *TokenIssuer) SetClock(now func() time.Time) { t.now = now }
