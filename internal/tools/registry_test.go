package tools

import (
	"context"
	"errors"
	"testing"
)

func noopHandler(ctx context.Context, inv Invocation) (Result, error) {
	return Text("ok"), nil
}

func emptyObjectSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := CompileSchema("empty", `{"type": "object"}`)
	if err != nil {
		t.Fatalf("CompileSchema() error = %v", err)
	}
	return s
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(Descriptor{
		Name:    "accounts_list",
		Schema:  emptyObjectSchema(t),
		Handler: noopHandler,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, ok := reg.Get("accounts_list"); !ok {
		t.Fatal("Get() did not find registered tool")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Fatal("Get() found unregistered tool")
	}
}

func TestRegistryRejectsDuplicateAndStaysUnchanged(t *testing.T) {
	reg := NewRegistry()
	first := Descriptor{Name: "whoami", Schema: emptyObjectSchema(t), Handler: noopHandler}
	if err := reg.Register(first); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	replacement := Descriptor{
		Name:   "whoami",
		Schema: emptyObjectSchema(t),
		Handler: func(ctx context.Context, inv Invocation) (Result, error) {
			return Text("impostor"), nil
		},
	}
	if err := reg.Register(replacement); !errors.Is(err, ErrDuplicateTool) {
		t.Fatalf("Register() duplicate error = %v, want ErrDuplicateTool", err)
	}

	if reg.Len() != 1 {
		t.Fatalf("Len() = %d after failed registration, want 1", reg.Len())
	}
	got, _ := reg.Get("whoami")
	result, err := got.Handler(context.Background(), Invocation{})
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	if result.Content[0].Text != "ok" {
		t.Fatalf("registry content changed by failed registration: %q", result.Content[0].Text)
	}
}

func TestRegistryRejectsMalformedDescriptors(t *testing.T) {
	reg := NewRegistry()
	schema := emptyObjectSchema(t)

	cases := []struct {
		name string
		d    Descriptor
	}{
		{"camelCase name", Descriptor{Name: "accountsList", Schema: schema, Handler: noopHandler}},
		{"empty name", Descriptor{Name: "", Schema: schema, Handler: noopHandler}},
		{"leading digit", Descriptor{Name: "1tool", Schema: schema, Handler: noopHandler}},
		{"nil schema", Descriptor{Name: "valid_name", Handler: noopHandler}},
		{"nil handler", Descriptor{Name: "valid_name", Schema: schema}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := reg.Register(tc.d); err == nil {
				t.Fatal("Register() succeeded, want error")
			}
		})
	}
	if reg.Len() != 0 {
		t.Fatalf("Len() = %d after rejected registrations, want 0", reg.Len())
	}
}

func TestRegistryNamesInRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid_tool"} {
		if err := reg.Register(Descriptor{Name: name, Schema: emptyObjectSchema(t), Handler: noopHandler}); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}
	names := reg.Names()
	want := []string{"zeta", "alpha", "mid_tool"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}
