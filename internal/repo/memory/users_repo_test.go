package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

func TestUsersRepo_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepo()

	u, err := repo.Create(ctx, user.NewUser{Email: "a@b.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.Create(ctx, user.NewUser{Email: "a@b.com", PasswordHash: "other"}); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("duplicate email: want ErrEmailTaken, got %v", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "a@b.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("GetByEmail: %+v err=%v", byEmail, err)
	}

	byID, err := repo.GetByID(ctx, u.ID)
	if err != nil || byID.Email != "a@b.com" {
		t.Fatalf("GetByID: %+v err=%v", byID, err)
	}

	if _, err := repo.GetByEmail(ctx, "missing@b.com"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("missing email: want ErrNotFound, got %v", err)
	}
}

func TestUsersRepo_UpdatePasswordHashAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepo()

	u, _ := repo.Create(ctx, user.NewUser{Email: "a@b.com", PasswordHash: "old"})

	if err := repo.UpdatePasswordHash(ctx, u.ID, "new"); err != nil {
		t.Fatalf("update hash: %v", err)
	}

	got, _ := repo.GetByID(ctx, u.ID)
	if got.PasswordHash != "new" {
		t.Fatalf("hash not updated: %q", got.PasswordHash)
	}

	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := repo.GetByID(ctx, u.ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("deleted user still resolvable: %v", err)
	}

	// email is free again
	if _, err := repo.Create(ctx, user.NewUser{Email: "a@b.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("re-register after delete: %v", err)
	}
}
