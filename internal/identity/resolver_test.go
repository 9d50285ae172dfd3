package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/stewardhq/steward/internal/auth"
)

const testSecret = "resolver-test-secret"

func TestResolveBearerIdempotentAcrossRefresh(t *testing.T) {
	resolver := NewResolver()

	first, err := auth.IssueDelegatedToken(testSecret, "u1", []string{"accounts:read"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueDelegatedToken() error = %v", err)
	}
	// Simulate a token refresh: same subject, different scopes and expiry.
	second, err := auth.IssueDelegatedToken(testSecret, "u1", nil, 2*time.Hour)
	if err != nil {
		t.Fatalf("IssueDelegatedToken() error = %v", err)
	}
	if first == second {
		t.Fatal("expected distinct tokens for refresh simulation")
	}

	a, err := resolver.Resolve(first)
	if err != nil {
		t.Fatalf("Resolve(first) error = %v", err)
	}
	b, err := resolver.Resolve(second)
	if err != nil {
		t.Fatalf("Resolve(second) error = %v", err)
	}
	if a != b {
		t.Fatalf("Resolve() = %q / %q, want the same identity across refresh", a, b)
	}
	if a != "usr_u1" {
		t.Fatalf("Resolve() = %q, want usr_u1", a)
	}
}

func TestResolveServiceToken(t *testing.T) {
	resolver := NewResolver()
	token, err := auth.MintServiceToken("acct-123", "body")
	if err != nil {
		t.Fatalf("MintServiceToken() error = %v", err)
	}

	got, err := resolver.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "svc_acct-123" {
		t.Fatalf("Resolve() = %q, want svc_acct-123", got)
	}
}

func TestResolveDistinctSubjectsDistinctIdentities(t *testing.T) {
	resolver := NewResolver()

	t1, _ := auth.IssueDelegatedToken(testSecret, "u1", nil, time.Hour)
	t2, _ := auth.IssueDelegatedToken(testSecret, "u2", nil, time.Hour)

	a, err := resolver.Resolve(t1)
	if err != nil {
		t.Fatalf("Resolve(u1) error = %v", err)
	}
	b, err := resolver.Resolve(t2)
	if err != nil {
		t.Fatalf("Resolve(u2) error = %v", err)
	}
	if a == b {
		t.Fatalf("Resolve() collapsed distinct subjects to %q", a)
	}
}

func TestResolveInvalidFormat(t *testing.T) {
	resolver := NewResolver()
	for _, raw := range []string{"", "   ", "garbage", "sk_broken", "a.b"} {
		if _, err := resolver.Resolve(raw); !errors.Is(err, ErrInvalidCredentialFormat) {
			t.Fatalf("Resolve(%q) error = %v, want ErrInvalidCredentialFormat", raw, err)
		}
	}
}
