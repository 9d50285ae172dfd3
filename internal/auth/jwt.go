package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// delegatedClaims are the claims expected on a delegated-user bearer token.
type delegatedClaims struct {
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// verifier checks delegated-user bearer tokens.
type verifier struct {
	secret []byte
}

func newVerifier(secret string) *verifier {
	if strings.TrimSpace(secret) == "" {
		return nil
	}
	return &verifier{secret: []byte(secret)}
}

// verify parses and validates a bearer token and returns the delegated-user
// payload. Any failure (bad signature, expired, missing subject) is
// ErrUnauthorized; expired tokens must not fall through to the service
// token scheme.
func (v *verifier) verify(token string) (DelegatedUser, error) {
	if v == nil || len(v.secret) == 0 {
		return DelegatedUser{}, ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(token, &delegatedClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return DelegatedUser{}, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*delegatedClaims)
	if !ok || !parsed.Valid {
		return DelegatedUser{}, ErrUnauthorized
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return DelegatedUser{}, ErrUnauthorized
	}

	var expiry time.Time
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}
	return DelegatedUser{
		Subject:   claims.Subject,
		Scopes:    claims.Scopes,
		ExpiresAt: expiry,
	}, nil
}

// IssueDelegatedToken signs a bearer token for the given subject and
// scopes. Intended for tests and local tooling; production tokens come
// from the external identity provider.
func IssueDelegatedToken(secret, subject string, scopes []string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("subject is required")
	}
	claims := delegatedClaims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	if ttl <= 0 {
		claims.ExpiresAt = nil
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
