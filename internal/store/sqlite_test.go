package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/taskboard/client/internal/model"
	"github.com/taskboard/client/tests/testutil"
)

func TestAppendAndRecent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := s.Append(ctx, model.FeedEntry{
			ID:        fmt.Sprintf("entry-%d", i),
			Kind:      model.FeedKindCreated,
			Title:     fmt.Sprintf("task %d", i),
			ProjectID: 1,
			TaskID:    i,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	entries, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].TaskID != 2 || entries[1].TaskID != 1 {
		t.Errorf("order wrong: %+v", entries)
	}
}

func TestAppendGeneratesID(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	err := s.Append(ctx, model.FeedEntry{Kind: model.FeedKindGeneric, RawBody: "{}"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 || entries[0].ID == "" {
		t.Errorf("entries = %+v, want one entry with a generated id", entries)
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		err := s.Append(ctx, model.FeedEntry{
			ID:        fmt.Sprintf("entry-%d", i),
			Kind:      model.FeedKindCreated,
			TaskID:    i,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	if err := s.Prune(ctx, 4); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	entries, err := s.Recent(ctx, 100)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("len = %d, want 4", len(entries))
	}
	if entries[0].TaskID != 9 {
		t.Errorf("newest lost: %+v", entries[0])
	}
}
