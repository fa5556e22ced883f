package profile

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"caseboard/internal/content"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

func TestSetReferenceWritesPathShape(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.SetReference(ctx, "u1", content.KindPost, "p1", 1700000000); err != nil {
		t.Fatalf("SetReference failed: %v", err)
	}

	got := s.HGet("users/u1/profile/post", "p1")
	if got != "1700000000" {
		t.Errorf("expected timestamp 1700000000 at users/u1/profile/post/p1, got %q", got)
	}
}

func TestSetReferenceOverwrites(t *testing.T) {
	store, _ := setupTestRedis(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.SetReference(ctx, "u1", content.KindCase, "c1", 100); err != nil {
		t.Fatalf("first SetReference failed: %v", err)
	}
	if err := store.SetReference(ctx, "u1", content.KindCase, "c1", 200); err != nil {
		t.Fatalf("second SetReference failed: %v", err)
	}

	client := store.Client()
	got, err := client.HGet(ctx, "users/u1/profile/case", "c1").Result()
	if err != nil {
		t.Fatalf("read back reference: %v", err)
	}
	if got != "200" {
		t.Errorf("expected overwritten timestamp 200, got %q", got)
	}
}

func TestRemoveReferenceIsIdempotent(t *testing.T) {
	store, _ := setupTestRedis(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.SetReference(ctx, "u1", content.KindPost, "p1", 1); err != nil {
		t.Fatalf("SetReference failed: %v", err)
	}
	if err := store.RemoveReference(ctx, "u1", content.KindPost, "p1"); err != nil {
		t.Fatalf("first RemoveReference failed: %v", err)
	}
	if err := store.RemoveReference(ctx, "u1", content.KindPost, "p1"); err != nil {
		t.Errorf("second RemoveReference failed: %v", err)
	}
	if err := store.RemoveReference(ctx, "u1", content.KindPost, "never-existed"); err != nil {
		t.Errorf("RemoveReference for absent id failed: %v", err)
	}
}

func TestDraftReferences(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.SetDraft(ctx, "u2", content.KindCase, "c9", 1650000000); err != nil {
		t.Fatalf("SetDraft failed: %v", err)
	}
	if got := s.HGet("users/u2/drafts/case", "c9"); got != "1650000000" {
		t.Errorf("expected draft at users/u2/drafts/case/c9, got %q", got)
	}

	if err := store.RemoveDraft(ctx, "u2", content.KindCase, "c9"); err != nil {
		t.Fatalf("RemoveDraft failed: %v", err)
	}
	if s.HGet("users/u2/drafts/case", "c9") != "" {
		t.Error("draft reference still present after removal")
	}
	if err := store.RemoveDraft(ctx, "u2", content.KindCase, "c9"); err != nil {
		t.Errorf("second RemoveDraft failed: %v", err)
	}
}

func TestProfileAndDraftTreesAreSeparate(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.SetReference(ctx, "u3", content.KindCase, "c1", 10); err != nil {
		t.Fatalf("SetReference failed: %v", err)
	}
	if err := store.SetDraft(ctx, "u3", content.KindCase, "c1", 10); err != nil {
		t.Fatalf("SetDraft failed: %v", err)
	}
	if err := store.RemoveDraft(ctx, "u3", content.KindCase, "c1"); err != nil {
		t.Fatalf("RemoveDraft failed: %v", err)
	}
	if got := s.HGet("users/u3/profile/case", "c1"); got != "10" {
		t.Errorf("profile reference lost when draft removed, got %q", got)
	}
}
