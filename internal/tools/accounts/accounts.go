// Package accounts provides the built-in account toolset: listing the
// accounts visible to a caller, selecting the active account for the
// session, and introspecting the call's own authorization.
package accounts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stewardhq/steward/internal/auth"
	"github.com/stewardhq/steward/internal/tools"
)

// Scopes gating the delegated-user scheme. Service tokens satisfy every
// scope for their own account.
const (
	ScopeRead  = "accounts:read"
	ScopeWrite = "accounts:write"
)

// Account is one entry in the caller-visible account listing.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Directory resolves which accounts a given authorization may see.
type Directory interface {
	Accounts(ctx context.Context, authz *auth.Authorization) ([]Account, error)
}

// StaticDirectory serves a fixed account list, scoped down to the bound
// account for service tokens. Backed by configuration; a production
// deployment would put an API client behind the same interface.
type StaticDirectory struct {
	accounts []Account
}

// NewStaticDirectory creates a directory over the given accounts.
func NewStaticDirectory(accounts []Account) *StaticDirectory {
	return &StaticDirectory{accounts: accounts}
}

// Accounts implements Directory.
func (d *StaticDirectory) Accounts(ctx context.Context, authz *auth.Authorization) ([]Account, error) {
	if svc, ok := authz.DirectService(); ok {
		for _, account := range d.accounts {
			if account.ID == svc.AccountID {
				return []Account{account}, nil
			}
		}
		return nil, nil
	}
	out := make([]Account, len(d.accounts))
	copy(out, d.accounts)
	return out, nil
}

var (
	emptySchema = tools.MustSchema("empty_input", `{
		"type": "object",
		"additionalProperties": false
	}`)

	setActiveSchema = tools.MustSchema("set_active_account_input", `{
		"type": "object",
		"required": ["account_id"],
		"properties": {
			"account_id": { "type": "string", "minLength": 1 }
		},
		"additionalProperties": false
	}`)
)

// Toolset returns a registration hook for the account tools, suitable as
// an actor setup function.
func Toolset(dir Directory) func(*tools.Registry) error {
	return func(registry *tools.Registry) error {
		descriptors := []tools.Descriptor{
			{
				Name:        "accounts_list",
				Description: "List the accounts visible to the caller.",
				Schema:      emptySchema,
				Handler:     listHandler(dir),
			},
			{
				Name:        "set_active_account",
				Description: "Select the account that subsequent calls operate on.",
				Schema:      setActiveSchema,
				Handler:     setActiveHandler(dir),
			},
			{
				Name:        "active_account",
				Description: "Show the currently selected account, if any.",
				Schema:      emptySchema,
				Handler:     activeHandler,
			},
			{
				Name:        "whoami",
				Description: "Describe the caller's credential scheme and subject.",
				Schema:      emptySchema,
				Handler:     whoamiHandler,
			},
		}
		for _, d := range descriptors {
			if err := registry.Register(d); err != nil {
				return err
			}
		}
		return nil
	}
}

func listHandler(dir Directory) tools.Handler {
	return func(ctx context.Context, inv tools.Invocation) (tools.Result, error) {
		if !inv.Authorization.HasScope(ScopeRead) {
			return scopeDenied(ScopeRead), nil
		}
		accounts, err := dir.Accounts(ctx, inv.Authorization)
		if err != nil {
			return tools.Result{}, fmt.Errorf("list accounts: %w", err)
		}
		return tools.JSON(map[string]any{"accounts": accounts}), nil
	}
}

func setActiveHandler(dir Directory) tools.Handler {
	return func(ctx context.Context, inv tools.Invocation) (tools.Result, error) {
		if !inv.Authorization.HasScope(ScopeWrite) {
			return scopeDenied(ScopeWrite), nil
		}
		var input struct {
			AccountID string `json:"account_id"`
		}
		if err := json.Unmarshal(inv.Input, &input); err != nil {
			return tools.Result{}, fmt.Errorf("decode input: %w", err)
		}

		visible, err := dir.Accounts(ctx, inv.Authorization)
		if err != nil {
			return tools.Result{}, fmt.Errorf("list accounts: %w", err)
		}
		known := false
		for _, account := range visible {
			if account.ID == input.AccountID {
				known = true
				break
			}
		}
		if !known {
			return tools.Errorf(tools.KindInvalidInput, "account %s is not visible to this caller", input.AccountID), nil
		}

		if err := inv.Session.SetActiveAccountID(ctx, input.AccountID); err != nil {
			return tools.Result{}, fmt.Errorf("persist active account: %w", err)
		}
		return tools.Text("active account set to %s", input.AccountID), nil
	}
}

func activeHandler(ctx context.Context, inv tools.Invocation) (tools.Result, error) {
	id, ok, err := inv.Session.ActiveAccountID(ctx)
	if err != nil {
		return tools.Result{}, fmt.Errorf("read active account: %w", err)
	}
	if !ok {
		return tools.Text("no active account selected"), nil
	}
	return tools.JSON(map[string]string{"active_account_id": id}), nil
}

func whoamiHandler(ctx context.Context, inv tools.Invocation) (tools.Result, error) {
	if user, ok := inv.Authorization.DelegatedUser(); ok {
		return tools.JSON(map[string]any{
			"scheme":  string(auth.SchemeDelegatedUser),
			"subject": user.Subject,
			"scopes":  user.Scopes,
		}), nil
	}
	if svc, ok := inv.Authorization.DirectService(); ok {
		return tools.JSON(map[string]any{
			"scheme":            string(auth.SchemeDirectService),
			"account_id":        svc.AccountID,
			"token_fingerprint": svc.TokenFingerprint,
		}), nil
	}
	return tools.Result{}, fmt.Errorf("authorization has no active variant")
}

func scopeDenied(scope string) tools.Result {
	return tools.Errorf("unauthorized", "caller lacks required scope %s", scope)
}
