package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"corkboard/internal/domain"
)

const DefaultTasksKey = "nexus_tasks"

// TaskRepository implements domain.TaskRepository over a KV.
type TaskRepository struct {
	kv  KV
	key string
}

func NewTaskRepository(kv KV, key string) *TaskRepository {
	if key == "" {
		key = DefaultTasksKey
	}
	return &TaskRepository{kv: kv, key: key}
}

// LoadTasks returns the stored list, or the default tasks when nothing
// has been saved yet.
func (r *TaskRepository) LoadTasks(ctx context.Context) ([]domain.Task, error) {
	data, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, ErrNotFound) {
		return domain.DefaultTasks(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedState, err)
	}
	return tasks, nil
}

func (r *TaskRepository) SaveTasks(ctx context.Context, tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}
