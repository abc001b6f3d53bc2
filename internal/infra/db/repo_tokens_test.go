package db

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func testRepo(t *testing.T) *TokenRepository {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&APITokenModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewTokenRepository(gdb)
}

func TestTokenRepositoryInsertAndLookup(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, "abcde", "hash-1"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	ok, err := repo.ExistsByHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatal("inserted hash not found")
	}
	ok, err = repo.ExistsByHash(ctx, "hash-2")
	if err != nil {
		t.Fatalf("exists unknown: %v", err)
	}
	if ok {
		t.Fatal("unknown hash reported present")
	}
}

func TestTokenRepositoryListOrderedByID(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for _, prefix := range []string{"aaaaa", "bbbbb", "ccccc"} {
		if err := repo.Insert(ctx, prefix, "hash-"+prefix); err != nil {
			t.Fatalf("insert %s: %v", prefix, err)
		}
	}
	tokens, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("listed %d tokens, want 3", len(tokens))
	}
	for i, want := range []string{"aaaaa", "bbbbb", "ccccc"} {
		if tokens[i].Prefix != want {
			t.Fatalf("token %d: prefix %q, want %q", i, tokens[i].Prefix, want)
		}
		if i > 0 && tokens[i].ID <= tokens[i-1].ID {
			t.Fatalf("ids not monotonic: %v", tokens)
		}
	}
}

func TestTokenRepositoryDeleteMissingIsNoop(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, "aaaaa", "hash-a"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Delete(ctx, 99); err != nil {
		t.Fatalf("delete missing id: %v", err)
	}
	tokens, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("no-op delete changed row count: %d", len(tokens))
	}

	if err := repo.Delete(ctx, tokens[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	tokens, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(tokens) != 0 {
		t.Fatalf("token survived delete: %v", tokens)
	}
}
