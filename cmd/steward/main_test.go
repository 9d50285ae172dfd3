package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stewardhq/steward/internal/auth"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := buildRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute(%v) error = %v", args, err)
	}
	return out.String()
}

func TestToolsListsCatalog(t *testing.T) {
	out := execute(t, "tools")
	for _, name := range []string{"accounts_list", "set_active_account", "active_account", "whoami"} {
		if !strings.Contains(out, name) {
			t.Fatalf("tools output missing %s:\n%s", name, out)
		}
	}
}

func TestTokenServiceMintsParsableToken(t *testing.T) {
	out := strings.TrimSpace(execute(t, "token", "service", "--account", "acct-1"))
	account, err := auth.ServiceTokenAccount(out)
	if err != nil {
		t.Fatalf("ServiceTokenAccount(%q) error = %v", out, err)
	}
	if account != "acct-1" {
		t.Fatalf("account = %q, want acct-1", account)
	}
}

func TestTokenUserRequiresSecret(t *testing.T) {
	cmd := buildRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"token", "user", "--subject", "u1"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("token user succeeded without --secret")
	}
}
