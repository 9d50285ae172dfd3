// Package auth resolves inbound credentials into a call-scoped
// authorization under one of two mutually exclusive schemes: a
// delegated-user bearer token or a direct-service token.
package auth

import "time"

// Scheme discriminates the two credential schemes.
type Scheme string

const (
	// SchemeDelegatedUser marks a call made on behalf of an end user via
	// a signed bearer token.
	SchemeDelegatedUser Scheme = "delegated_user"

	// SchemeDirectService marks a call made with a service token bound
	// to a single account.
	SchemeDirectService Scheme = "direct_service"
)

// DelegatedUser is the delegated-user variant payload.
type DelegatedUser struct {
	// Subject is the stable user id from the token's subject claim.
	Subject string

	// Scopes are the granted scope strings from the token claims.
	Scopes []string

	// ExpiresAt is the token expiry.
	ExpiresAt time.Time
}

// DirectService is the direct-service variant payload.
type DirectService struct {
	// AccountID is the account the service token is bound to.
	AccountID string

	// TokenFingerprint is a non-reversible digest of the token, safe to
	// log and to compare. The raw secret is never retained.
	TokenFingerprint string
}

// Authorization is the tagged union attached to exactly one in-flight
// call. It is built only by Builder.Build, never persisted, and never
// shared across calls. Exactly one variant is set.
type Authorization struct {
	scheme    Scheme
	delegated *DelegatedUser
	direct    *DirectService
}

// Scheme returns the active variant's discriminant.
func (a *Authorization) Scheme() Scheme {
	return a.scheme
}

// DelegatedUser returns the delegated-user payload if that variant is active.
func (a *Authorization) DelegatedUser() (DelegatedUser, bool) {
	if a == nil || a.delegated == nil {
		return DelegatedUser{}, false
	}
	return *a.delegated, true
}

// DirectService returns the direct-service payload if that variant is active.
func (a *Authorization) DirectService() (DirectService, bool) {
	if a == nil || a.direct == nil {
		return DirectService{}, false
	}
	return *a.direct, true
}

// HasScope reports whether the call may use the given scope. Service
// tokens carry full access to their account, so the direct-service
// variant satisfies every scope.
func (a *Authorization) HasScope(scope string) bool {
	if a == nil {
		return false
	}
	if a.scheme == SchemeDirectService {
		return true
	}
	if a.delegated == nil {
		return false
	}
	for _, granted := range a.delegated.Scopes {
		if granted == scope {
			return true
		}
	}
	return false
}

func newDelegatedAuthorization(user DelegatedUser) *Authorization {
	return &Authorization{scheme: SchemeDelegatedUser, delegated: &user}
}

func newDirectAuthorization(service DirectService) *Authorization {
	return &Authorization{scheme: SchemeDirectService, direct: &service}
}
