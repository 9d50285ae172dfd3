// Package identity maps inbound credentials to the stable identity that
// addresses a session actor.
//
// Resolution is a pure function of the credential's embedded subject: it
// performs no network calls and no signature verification, so two tokens
// issued to the same subject always address the same actor even across
// token refresh. Authorization happens later, inside the actor, under the
// full verification rules in the auth package.
package identity

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stewardhq/steward/internal/auth"
)

// ErrInvalidCredentialFormat is returned when the credential cannot be
// parsed under either scheme.
var ErrInvalidCredentialFormat = errors.New("invalid credential format")

const (
	userIdentityPrefix    = "usr_"
	serviceIdentityPrefix = "svc_"
)

// Resolver derives actor identities from raw credentials.
type Resolver struct {
	parser *jwt.Parser
}

// NewResolver creates a resolver.
func NewResolver() *Resolver {
	return &Resolver{parser: jwt.NewParser()}
}

// Resolve maps a raw credential string to an identity. Bearer tokens
// resolve to "usr_<subject>"; service tokens resolve to "svc_<account>".
// The two prefixes keep the identity spaces disjoint, so a user and an
// account with the same raw id never share an actor.
func (r *Resolver) Resolve(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidCredentialFormat
	}

	if accountID, err := auth.ServiceTokenAccount(raw); err == nil {
		return serviceIdentityPrefix + accountID, nil
	}

	subject, err := r.bearerSubject(raw)
	if err != nil {
		return "", err
	}
	return userIdentityPrefix + subject, nil
}

// bearerSubject extracts the subject claim without verifying the
// signature. Addressing must be deterministic, so no time- or
// network-dependent checks belong here.
func (r *Resolver) bearerSubject(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := r.parser.ParseUnverified(token, claims); err != nil {
		return "", ErrInvalidCredentialFormat
	}
	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return "", ErrInvalidCredentialFormat
	}
	return subject, nil
}
