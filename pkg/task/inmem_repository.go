package task

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryTaskRepository implements TaskRepository using in-memory storage
type InMemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]Task
}

// NewInMemoryTaskRepository creates a new in-memory task repository
func NewInMemoryTaskRepository() *InMemoryTaskRepository {
	return &InMemoryTaskRepository{
		tasks: make(map[uuid.UUID]Task),
	}
}

// CreateTask creates a new task
func (r *InMemoryTaskRepository) CreateTask(ctx context.Context, params CreateTaskParams) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task := Task{
		ID:          uuid.New(),
		UserID:      params.UserID,
		Title:       params.Title,
		IsDone:      false,
		TimeCreated: time.Now(),
	}

	r.tasks[task.ID] = task
	return task, nil
}

// GetTask gets a task by id
func (r *InMemoryTaskRepository) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return task, nil
}

// FindTasks returns all tasks ordered by creation time
func (r *InMemoryTaskRepository) FindTasks(ctx context.Context) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		result = append(result, task)
	}
	sortTasks(result)
	return result, nil
}

// FindTasksByUser returns all tasks owned by the given identity
func (r *InMemoryTaskRepository) FindTasksByUser(ctx context.Context, userID uuid.UUID) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Task
	for _, task := range r.tasks {
		if task.UserID == userID {
			result = append(result, task)
		}
	}
	sortTasks(result)
	return result, nil
}

// UpdateTask applies a partial update
func (r *InMemoryTaskRepository) UpdateTask(ctx context.Context, params UpdateTaskParams) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[params.ID]
	if !ok {
		return Task{}, ErrTaskNotFound
	}

	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.IsDone != nil {
		task.IsDone = *params.IsDone
	}

	r.tasks[params.ID] = task
	return task, nil
}

// DeleteTask removes a task
func (r *InMemoryTaskRepository) DeleteTask(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func sortTasks(tasks []Task) {
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].TimeCreated.Before(tasks[j].TimeCreated)
	})
}
