package cell

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryCellLifecycle(t *testing.T) {
	store := NewMemoryStore()
	c := store.Open("usr_1")

	if _, err := c.Get(context.Background(), "active_account_id"); !errors.Is(err, ErrNotSet) {
		t.Fatalf("Get() on unset key error = %v, want ErrNotSet", err)
	}

	if err := c.Set(context.Background(), "active_account_id", []byte("acct-123")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := c.Get(context.Background(), "active_account_id")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "acct-123" {
		t.Fatalf("Get() = %q, want %q", got, "acct-123")
	}

	if err := c.Set(context.Background(), "active_account_id", []byte("acct-456")); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	got, err = c.Get(context.Background(), "active_account_id")
	if err != nil {
		t.Fatalf("Get() after overwrite error = %v", err)
	}
	if string(got) != "acct-456" {
		t.Fatalf("Get() after overwrite = %q, want %q", got, "acct-456")
	}

	if err := c.Delete(context.Background(), "active_account_id"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get(context.Background(), "active_account_id"); !errors.Is(err, ErrNotSet) {
		t.Fatalf("Get() after delete error = %v, want ErrNotSet", err)
	}
}

func TestMemoryCellOwnerIsolation(t *testing.T) {
	store := NewMemoryStore()
	first := store.Open("usr_1")
	second := store.Open("usr_2")

	if err := first.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := second.Get(context.Background(), "k"); !errors.Is(err, ErrNotSet) {
		t.Fatalf("Get() across owners error = %v, want ErrNotSet", err)
	}
}

func TestMemoryCellCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	c := store.Open("usr_1")

	value := []byte("original")
	if err := c.Set(context.Background(), "k", value); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value[0] = 'X'

	got, err := c.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("Get() = %q, stored value aliased caller slice", got)
	}
}
