package domain

import "context"

// BoardRepository persists the whole board under a single key.
type BoardRepository interface {
	Load(ctx context.Context) (BoardState, error)
	Save(ctx context.Context, state BoardState) error
}

// TaskRepository persists the to-do list.
type TaskRepository interface {
	LoadTasks(ctx context.Context) ([]Task, error)
	SaveTasks(ctx context.Context, tasks []Task) error
}

// Snapshot describes one saved copy of the board.
type Snapshot struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	CreatedAt string `json:"createdAt"`
	Items     int    `json:"items"`
	Links     int    `json:"connections"`
}

// SnapshotStore keeps a bounded history of board copies.
type SnapshotStore interface {
	Push(ctx context.Context, label string, state BoardState) (Snapshot, error)
	List(ctx context.Context) ([]Snapshot, error)
	Get(ctx context.Context, id string) (BoardState, error)
}
