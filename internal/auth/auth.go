package auth

import (
	"errors"
	"strings"
)

var (
	// ErrUnauthorized is returned when neither credential scheme
	// validates. Expired or tampered bearer tokens are ErrUnauthorized,
	// never a fallback to the service token scheme.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAmbiguousCredentials is returned when a request presents
	// signals for both schemes at once. The builder fails closed rather
	// than guessing which one the caller meant.
	ErrAmbiguousCredentials = errors.New("ambiguous credentials")

	// ErrMalformedServiceToken indicates a service token that does not
	// match the expected format.
	ErrMalformedServiceToken = errors.New("malformed service token")
)

// Credential carries the raw credential material extracted from one
// inbound request. At most one field should be set; setting both is an
// ambiguity the builder rejects.
type Credential struct {
	// BearerToken is the delegated-user JWT, without the "Bearer " prefix.
	BearerToken string

	// ServiceToken is the direct-service token.
	ServiceToken string
}

// Empty reports whether no credential material is present.
func (c Credential) Empty() bool {
	return strings.TrimSpace(c.BearerToken) == "" && strings.TrimSpace(c.ServiceToken) == ""
}

// Config configures the authorization builder.
type Config struct {
	// JWTSecret is the HMAC secret for delegated-user tokens. Empty
	// disables the delegated-user scheme.
	JWTSecret string
}

// Builder produces exactly one Authorization per inbound call.
type Builder struct {
	verifier *verifier
}

// NewBuilder constructs a Builder from static configuration.
func NewBuilder(cfg Config) *Builder {
	return &Builder{verifier: newVerifier(cfg.JWTSecret)}
}

// Build resolves a credential into an Authorization, or fails closed.
//
// The two schemes never mix: a present-but-invalid bearer token is
// ErrUnauthorized even when a valid service token is also supplied,
// because silently switching schemes would confuse the privileges the
// caller thinks it holds.
func (b *Builder) Build(cred Credential) (*Authorization, error) {
	bearer := strings.TrimSpace(cred.BearerToken)
	service := strings.TrimSpace(cred.ServiceToken)

	if bearer != "" && service != "" {
		return nil, ErrAmbiguousCredentials
	}

	if bearer != "" {
		user, err := b.verifier.verify(bearer)
		if err != nil {
			return nil, err
		}
		return newDelegatedAuthorization(user), nil
	}

	if service != "" {
		svc, err := ParseServiceToken(service)
		if err != nil {
			if errors.Is(err, ErrMalformedServiceToken) {
				return nil, ErrUnauthorized
			}
			return nil, err
		}
		return newDirectAuthorization(svc), nil
	}

	return nil, ErrUnauthorized
}
