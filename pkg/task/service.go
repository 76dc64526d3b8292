package task

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// TaskService provides per-user task tracking on top of a TaskRepository
type TaskService struct {
	repo TaskRepository
}

// NewTaskService creates a new task service
func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

// CreateTask creates a task owned by the given identity. The title is
// trimmed and must not be blank.
func (s *TaskService) CreateTask(ctx context.Context, userID uuid.UUID, title string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}

	task, err := s.repo.CreateTask(ctx, CreateTaskParams{
		UserID: userID,
		Title:  title,
	})
	if err != nil {
		return Task{}, err
	}

	slog.Info("Created task", "id", task.ID, "userId", task.UserID)
	return task, nil
}

// GetTask returns one task by id
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	return s.repo.GetTask(ctx, id)
}

// FindTasks returns all tasks
func (s *TaskService) FindTasks(ctx context.Context) ([]Task, error) {
	return s.repo.FindTasks(ctx)
}

// FindTasksByUser returns all tasks owned by the given identity
func (s *TaskService) FindTasksByUser(ctx context.Context, userID uuid.UUID) ([]Task, error) {
	return s.repo.FindTasksByUser(ctx, userID)
}

// UpdateTask applies a partial update to title and/or done flag
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, params UpdateTaskParams) (Task, error) {
	if params.Title != nil {
		trimmed := strings.TrimSpace(*params.Title)
		if trimmed == "" {
			return Task{}, ErrEmptyTitle
		}
		params.Title = &trimmed
	}
	params.ID = id

	return s.repo.UpdateTask(ctx, params)
}

// DeleteTask removes a task
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTask(ctx, id)
}
