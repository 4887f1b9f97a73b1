package memory

import (
	"context"
	"errors"
	"testing"

	"moneta/internal/docstore"
)

func TestSetGetDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	var b docstore.Batch
	b.Set("col", "a", map[string]any{"name": "first", "n": int64(1)})
	if err := s.Commit(ctx, &b); err != nil {
		t.Fatalf("commit: %v", err)
	}

	fields, err := s.Get(ctx, "col", "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fields["name"] != "first" {
		t.Fatalf("fields = %v", fields)
	}

	if _, err := s.Get(ctx, "col", "missing"); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	var del docstore.Batch
	del.Delete("col", "a")
	if err := s.Commit(ctx, &del); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "col", "a"); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}

func TestMergeIncrementCreatesLazily(t *testing.T) {
	s := New()
	ctx := context.Background()

	var b docstore.Batch
	b.MergeIncrement("col", "counter", map[string]int64{"total": 10})
	b.MergeIncrement("col", "counter", map[string]int64{"total": -3, "other": 5})
	if err := s.Commit(ctx, &b); err != nil {
		t.Fatalf("commit: %v", err)
	}

	fields, err := s.Get(ctx, "col", "counter")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if docstore.AsInt64(fields["total"]) != 7 || docstore.AsInt64(fields["other"]) != 5 {
		t.Fatalf("fields = %v", fields)
	}
}

func TestMergeSetPreservesOtherFields(t *testing.T) {
	s := New()
	ctx := context.Background()

	var b docstore.Batch
	b.Set("col", "a", map[string]any{"name": "first", "balance": int64(100)})
	b.MergeSet("col", "a", map[string]any{"name": "renamed"})
	if err := s.Commit(ctx, &b); err != nil {
		t.Fatalf("commit: %v", err)
	}

	fields, _ := s.Get(ctx, "col", "a")
	if fields["name"] != "renamed" || docstore.AsInt64(fields["balance"]) != 100 {
		t.Fatalf("fields = %v", fields)
	}
}

func TestListRecent(t *testing.T) {
	s := New()
	ctx := context.Background()

	var b docstore.Batch
	b.Set("col", "a", map[string]any{"date": "2024-03-01"})
	b.Set("col", "b", map[string]any{"date": "2024-03-20"})
	b.Set("col", "c", map[string]any{"date": "2024-03-10"})
	if err := s.Commit(ctx, &b); err != nil {
		t.Fatalf("commit: %v", err)
	}

	docs, err := s.ListRecent(ctx, "col", "date", 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "b" || docs[1].ID != "c" {
		t.Fatalf("unexpected order: %+v", docs)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	var b docstore.Batch
	b.Set("col", "a", map[string]any{"n": int64(1)})
	if err := s.Commit(ctx, &b); err != nil {
		t.Fatalf("commit: %v", err)
	}

	fields, _ := s.Get(ctx, "col", "a")
	fields["n"] = int64(99)

	again, _ := s.Get(ctx, "col", "a")
	if docstore.AsInt64(again["n"]) != 1 {
		t.Fatal("stored document mutated through a read copy")
	}
}
