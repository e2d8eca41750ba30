package service

import (
	"context"
	"testing"

	"github.com/rl1809/botshop/internal/core/domain"
)

func TestUser_Upsert(t *testing.T) {
	e := newEngine(false)
	ctx := context.Background()

	id, err := e.users.UpsertUser(ctx, domain.User{ID: "42", Username: "alice", FirstName: "Alice"})
	if err != nil || id != "42" {
		t.Fatalf("upsert: %q %v", id, err)
	}
	if _, err := e.users.UpsertUser(ctx, domain.User{ID: "42", Username: "alice2", FirstName: "Alice"}); err != nil {
		t.Fatal(err)
	}

	u := e.users.GetUser(ctx, "42")
	if u == nil || u.Username != "alice2" {
		t.Fatalf("user = %+v", u)
	}
	if n := len(e.users.ListUsers(ctx)); n != 1 {
		t.Errorf("users = %d, want 1", n)
	}
	if e.users.GetUser(ctx, "7") != nil {
		t.Error("unknown user should be nil")
	}
}

func TestUser_UnchangedProfileSkipsWrite(t *testing.T) {
	e := newEngine(false)
	ctx := context.Background()
	user := domain.User{ID: "42", Username: "alice"}

	e.users.UpsertUser(ctx, user)
	e.users.UpsertUser(ctx, user)
	if n := e.store.saveCount(); n != 1 {
		t.Errorf("saves = %d, want 1", n)
	}
}
