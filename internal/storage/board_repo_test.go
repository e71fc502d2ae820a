package storage_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"corkboard/internal/domain"
	"corkboard/internal/storage"
)

func sampleBoard() domain.BoardState {
	return domain.BoardState{
		Items: []domain.Item{
			{ID: "1700000000002", Type: domain.ItemTypePhoto, X: -20.5, Y: 40, Rotation: 370, Width: 240, ZIndex: 9, Content: "<i>suspect</i>", Image: "data:image/png;base64,iVBORw0KGgo="},
			{ID: "1700000000001", Type: domain.ItemTypeNote, X: 100, Y: 100.25, Rotation: -2.5, Width: 200, ZIndex: 3, Content: "<b>alibi?</b>"},
		},
		Connections: []domain.Connection{
			{ID: "c1", From: "1700000000001", To: "1700000000002", Type: domain.ConnectionCurved},
			{ID: "c2", From: "1700000000001", To: "1700000000002", Type: domain.ConnectionCurved},
			{ID: "c3", From: "1700000000001", To: "1700000000001", Type: domain.ConnectionStraight},
			{ID: "c4", From: "gone", To: "1700000000002", Type: domain.ConnectionStraight},
		},
	}
}

func TestBoardRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			repo := storage.NewBoardRepository(kv, "")
			want := sampleBoard()
			if err := repo.Save(ctx, want); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := repo.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
			}
		})
	}
}

func TestBoardRepository_MissingKeyIsEmpty(t *testing.T) {
	repo := storage.NewBoardRepository(storage.NewMemoryKV(), "")
	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 0 || len(got.Connections) != 0 {
		t.Errorf("expected empty board, got %+v", got)
	}
	if got.Items == nil || got.Connections == nil {
		t.Error("expected non-nil empty collections")
	}
}

func TestBoardRepository_MalformedValue(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	kv.Set(ctx, storage.DefaultBoardKey, []byte("{items: nope"))
	_, err := storage.NewBoardRepository(kv, "").Load(ctx)
	if !errors.Is(err, domain.ErrMalformedState) {
		t.Fatalf("expected ErrMalformedState, got %v", err)
	}
}

func TestEncodeBoard_EmptyCollections(t *testing.T) {
	data, err := storage.EncodeBoard(domain.BoardState{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"items":[],"connections":[]}` {
		t.Errorf("got %s", data)
	}
}

func TestTaskRepository(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	repo := storage.NewTaskRepository(kv, "")

	tasks, err := repo.LoadTasks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 || !tasks[2].Done {
		t.Fatalf("expected the three default tasks, got %+v", tasks)
	}

	if err := repo.SaveTasks(ctx, nil); err != nil {
		t.Fatal(err)
	}
	raw, _ := kv.Get(ctx, storage.DefaultTasksKey)
	if string(raw) != "[]" {
		t.Errorf("stored %s", raw)
	}
	tasks, _ = repo.LoadTasks(ctx)
	if len(tasks) != 0 {
		t.Errorf("saved empty list came back as %+v", tasks)
	}
}
