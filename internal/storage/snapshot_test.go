package storage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"corkboard/internal/domain"
	"corkboard/internal/storage"
)

func TestSnapshotStore_PushListGet(t *testing.T) {
	ctx := context.Background()
	snaps := storage.NewSnapshotStore(storage.NewMemoryKV(), 0)

	first, err := snaps.Push(ctx, "first", sampleBoard())
	if err != nil {
		t.Fatal(err)
	}
	if first.Items != 2 || first.Links != 4 {
		t.Errorf("metadata = %+v", first)
	}
	second, _ := snaps.Push(ctx, "second", domain.BoardState{})

	list, err := snaps.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	state, err := snaps.Get(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(state.Items) != 2 {
		t.Errorf("restored %d items", len(state.Items))
	}

	if _, err := snaps.Get(ctx, "missing"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Errorf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSnapshotStore_Prunes(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	snaps := storage.NewSnapshotStore(kv, 3)

	var ids []string
	for i := 0; i < 5; i++ {
		s, err := snaps.Push(ctx, fmt.Sprintf("s%d", i), domain.BoardState{})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, s.ID)
	}
	list, _ := snaps.List(ctx)
	if len(list) != 3 {
		t.Fatalf("expected 3 snapshots after pruning, got %d", len(list))
	}
	if list[0].Label != "s4" || list[2].Label != "s2" {
		t.Errorf("wrong survivors: %+v", list)
	}
	for _, id := range ids[:2] {
		if _, err := snaps.Get(ctx, id); !errors.Is(err, domain.ErrSnapshotNotFound) {
			t.Errorf("snapshot %s should have been pruned", id)
		}
	}
}
