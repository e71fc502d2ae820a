package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"corkboard/internal/domain"
)

// TaskService manages the to-do list that sits beside the board.
// Like the board, every change is written straight back.
type TaskService struct {
	mu      sync.Mutex
	repo    domain.TaskRepository
	emitter EventEmitter
	now     func() time.Time
	lastID  int64
}

func NewTaskService(repo domain.TaskRepository, emitter EventEmitter) *TaskService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &TaskService{repo: repo, emitter: emitter, now: time.Now}
}

func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.LoadTasks(ctx)
}

// Add appends a task. Blank text is rejected with ErrEmptyTask; an empty
// priority defaults to medium.
func (s *TaskService) Add(ctx context.Context, text string, priority domain.Priority) (domain.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Task{}, domain.ErrEmptyTask
	}
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return domain.Task{}, fmt.Errorf("add task: %w: unknown priority %q", domain.ErrInvalidInput, priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	t := domain.Task{ID: s.nextID(tasks), Text: text, Priority: priority}
	tasks = append(tasks, t)
	return t, s.save(ctx, tasks)
}

// Toggle flips the done flag.
func (s *TaskService) Toggle(ctx context.Context, id int64) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Done = !tasks[i].Done
			return tasks[i], s.save(ctx, tasks)
		}
	}
	return domain.Task{}, fmt.Errorf("toggle task %d: %w", id, domain.ErrTaskNotFound)
}

// Delete removes the task. Unknown ids leave the list as it is.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		return err
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return s.save(ctx, kept)
}

// Partition splits tasks into open and done, keeping their order.
func Partition(tasks []domain.Task) (open, done []domain.Task) {
	for _, t := range tasks {
		if t.Done {
			done = append(done, t)
		} else {
			open = append(open, t)
		}
	}
	return open, done
}

func (s *TaskService) save(ctx context.Context, tasks []domain.Task) error {
	if err := s.repo.SaveTasks(ctx, tasks); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventTasksChanged, len(tasks))
	return nil
}

// nextID is the current time in milliseconds, bumped past any id in use.
func (s *TaskService) nextID(tasks []domain.Task) int64 {
	id := s.now().UnixMilli()
	for _, t := range tasks {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}
