package cell

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestSQLiteCellLifecycle(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cells.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()

	c := store.Open("usr_1")

	if _, err := c.Get(context.Background(), "k"); !errors.Is(err, ErrNotSet) {
		t.Fatalf("Get() on unset key error = %v, want ErrNotSet", err)
	}

	if err := c.Set(context.Background(), "k", []byte("one")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set(context.Background(), "k", []byte("two")); err != nil {
		t.Fatalf("Set() upsert error = %v", err)
	}

	got, err := c.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "two" {
		t.Fatalf("Get() = %q, want last write", got)
	}

	if err := c.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get(context.Background(), "k"); !errors.Is(err, ErrNotSet) {
		t.Fatalf("Get() after delete error = %v, want ErrNotSet", err)
	}
}

func TestSQLiteCellSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cells.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := store.Open("usr_1").Set(context.Background(), "k", []byte("persisted")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Open("usr_1").Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if string(got) != "persisted" {
		t.Fatalf("Get() after reopen = %q, want %q", got, "persisted")
	}
}

func TestSQLiteCellOwnerIsolation(t *testing.T) {
	store, err := NewSQLiteStore("")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()

	if err := store.Open("usr_1").Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := store.Open("usr_2").Get(context.Background(), "k"); !errors.Is(err, ErrNotSet) {
		t.Fatalf("Get() across owners error = %v, want ErrNotSet", err)
	}
}
