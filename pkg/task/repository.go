package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository defines the task store contract
type TaskRepository interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (Task, error)
	FindTasks(ctx context.Context) ([]Task, error)
	FindTasksByUser(ctx context.Context, userID uuid.UUID) ([]Task, error)
	UpdateTask(ctx context.Context, params UpdateTaskParams) (Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// PostgresTaskRepository implements TaskRepository using pgx
type PostgresTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTaskRepository creates a new PostgreSQL-based task repository
func NewPostgresTaskRepository(pool *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{
		pool: pool,
	}
}

const taskColumns = "id, user_id, title, is_done, time_created"

func scanTask(row pgx.Row) (Task, error) {
	var task Task
	err := row.Scan(&task.ID, &task.UserID, &task.Title, &task.IsDone, &task.TimeCreated)
	return task, err
}

// CreateTask persists a new task
func (r *PostgresTaskRepository) CreateTask(ctx context.Context, params CreateTaskParams) (Task, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title)
		 VALUES ($1, $2)
		 RETURNING `+taskColumns,
		params.UserID, params.Title)

	task, err := scanTask(row)
	if err != nil {
		return Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// GetTask retrieves a task by id
func (r *PostgresTaskRepository) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// FindTasks retrieves all tasks
func (r *PostgresTaskRepository) FindTasks(ctx context.Context) ([]Task, error) {
	return r.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY time_created`)
}

// FindTasksByUser retrieves all tasks owned by the given identity
func (r *PostgresTaskRepository) FindTasksByUser(ctx context.Context, userID uuid.UUID) ([]Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY time_created`, userID)
}

func (r *PostgresTaskRepository) queryTasks(ctx context.Context, sql string, args ...interface{}) ([]Task, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// UpdateTask applies a partial update. Nil params keep the stored value.
func (r *PostgresTaskRepository) UpdateTask(ctx context.Context, params UpdateTaskParams) (Task, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE tasks
		 SET title = COALESCE($2, title),
		     is_done = COALESCE($3, is_done)
		 WHERE id = $1
		 RETURNING `+taskColumns,
		params.ID, params.Title, params.IsDone)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// DeleteTask removes a task
func (r *PostgresTaskRepository) DeleteTask(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}
