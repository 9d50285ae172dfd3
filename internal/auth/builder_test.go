package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret-0123456789abcdef"

func delegatedToken(t *testing.T, subject string, scopes []string, ttl time.Duration) string {
	t.Helper()
	token, err := IssueDelegatedToken(testSecret, subject, scopes, ttl)
	if err != nil {
		t.Fatalf("IssueDelegatedToken() error = %v", err)
	}
	return token
}

func serviceToken(t *testing.T, accountID string) string {
	t.Helper()
	token, err := MintServiceToken(accountID, "deadbeefcafe")
	if err != nil {
		t.Fatalf("MintServiceToken() error = %v", err)
	}
	return token
}

func TestBuildDelegatedUser(t *testing.T) {
	builder := NewBuilder(Config{JWTSecret: testSecret})
	token := delegatedToken(t, "u1", []string{"accounts:read", "accounts:write"}, time.Hour)

	authz, err := builder.Build(Credential{BearerToken: token})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if authz.Scheme() != SchemeDelegatedUser {
		t.Fatalf("Scheme() = %q, want delegated_user", authz.Scheme())
	}
	user, ok := authz.DelegatedUser()
	if !ok {
		t.Fatal("DelegatedUser() not present")
	}
	if user.Subject != "u1" {
		t.Fatalf("Subject = %q, want u1", user.Subject)
	}
	if !authz.HasScope("accounts:write") {
		t.Fatal("HasScope(accounts:write) = false, want true")
	}
	if authz.HasScope("admin:all") {
		t.Fatal("HasScope(admin:all) = true, want false")
	}
	if _, ok := authz.DirectService(); ok {
		t.Fatal("DirectService() present on delegated authorization")
	}
}

func TestBuildDirectService(t *testing.T) {
	builder := NewBuilder(Config{JWTSecret: testSecret})
	token := serviceToken(t, "acct-123")

	authz, err := builder.Build(Credential{ServiceToken: token})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if authz.Scheme() != SchemeDirectService {
		t.Fatalf("Scheme() = %q, want direct_service", authz.Scheme())
	}
	svc, ok := authz.DirectService()
	if !ok {
		t.Fatal("DirectService() not present")
	}
	if svc.AccountID != "acct-123" {
		t.Fatalf("AccountID = %q, want acct-123", svc.AccountID)
	}
	if svc.TokenFingerprint == "" || svc.TokenFingerprint == token {
		t.Fatalf("TokenFingerprint = %q, want non-empty digest distinct from the token", svc.TokenFingerprint)
	}
	// Service tokens carry full account access.
	if !authz.HasScope("accounts:write") {
		t.Fatal("HasScope() = false for direct service, want true")
	}
}

func TestBuildAmbiguousCredentialsFailsClosed(t *testing.T) {
	builder := NewBuilder(Config{JWTSecret: testSecret})

	cases := []struct {
		name string
		cred Credential
	}{
		{"both valid", Credential{
			BearerToken:  delegatedToken(t, "u1", nil, time.Hour),
			ServiceToken: serviceToken(t, "acct-123"),
		}},
		{"valid bearer, garbage service", Credential{
			BearerToken:  delegatedToken(t, "u1", nil, time.Hour),
			ServiceToken: "sk_nonsense",
		}},
		{"garbage bearer, valid service", Credential{
			BearerToken:  "not.a.jwt",
			ServiceToken: serviceToken(t, "acct-123"),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := builder.Build(tc.cred); !errors.Is(err, ErrAmbiguousCredentials) {
				t.Fatalf("Build() error = %v, want ErrAmbiguousCredentials", err)
			}
		})
	}
}

func TestBuildExpiredBearerDoesNotFallThrough(t *testing.T) {
	builder := NewBuilder(Config{JWTSecret: testSecret})
	expired := delegatedToken(t, "u1", nil, -time.Minute)

	if _, err := builder.Build(Credential{BearerToken: expired}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Build() with expired token error = %v, want ErrUnauthorized", err)
	}
}

func TestBuildRejectsTamperedBearer(t *testing.T) {
	builder := NewBuilder(Config{JWTSecret: testSecret})
	other, err := IssueDelegatedToken("a-different-secret-entirely", "u1", nil, time.Hour)
	if err != nil {
		t.Fatalf("IssueDelegatedToken() error = %v", err)
	}
	if _, err := builder.Build(Credential{BearerToken: other}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Build() with wrong-secret token error = %v, want ErrUnauthorized", err)
	}
}

func TestBuildRejectsBadServiceChecksum(t *testing.T) {
	builder := NewBuilder(Config{JWTSecret: testSecret})
	token := serviceToken(t, "acct-123")
	mangled := token[:len(token)-1] + "0"
	if mangled == token {
		mangled = token[:len(token)-1] + "1"
	}

	if _, err := builder.Build(Credential{ServiceToken: mangled}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Build() with bad checksum error = %v, want ErrUnauthorized", err)
	}
}

func TestBuildNoCredentials(t *testing.T) {
	builder := NewBuilder(Config{JWTSecret: testSecret})
	if _, err := builder.Build(Credential{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Build() with no credentials error = %v, want ErrUnauthorized", err)
	}
}
