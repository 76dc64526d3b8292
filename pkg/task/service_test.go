package task

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *TaskService {
	return NewTaskService(NewInMemoryTaskRepository())
}

func TestCreateTask(t *testing.T) {
	service := newTestService()
	ctx := context.Background()
	userID := uuid.New()

	task, err := service.CreateTask(ctx, userID, "write report")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, userID, task.UserID)
	assert.Equal(t, "write report", task.Title)
	assert.False(t, task.IsDone)
	assert.False(t, task.TimeCreated.IsZero())
}

func TestCreateTaskTrimsTitle(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	task, err := service.CreateTask(ctx, uuid.New(), "  write report  ")
	require.NoError(t, err)
	assert.Equal(t, "write report", task.Title)
}

func TestCreateTaskEmptyTitle(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	_, err := service.CreateTask(ctx, uuid.New(), "   ")
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestFindTasksByUser(t *testing.T) {
	service := newTestService()
	ctx := context.Background()
	ada := uuid.New()
	grace := uuid.New()

	_, err := service.CreateTask(ctx, ada, "first")
	require.NoError(t, err)
	_, err = service.CreateTask(ctx, ada, "second")
	require.NoError(t, err)
	_, err = service.CreateTask(ctx, grace, "other")
	require.NoError(t, err)

	adaTasks, err := service.FindTasksByUser(ctx, ada)
	require.NoError(t, err)
	require.Len(t, adaTasks, 2)
	for _, task := range adaTasks {
		assert.Equal(t, ada, task.UserID)
	}

	all, err := service.FindTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := service.FindTasksByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateTask(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	task, err := service.CreateTask(ctx, uuid.New(), "write report")
	require.NoError(t, err)

	done := true
	updated, err := service.UpdateTask(ctx, task.ID, UpdateTaskParams{IsDone: &done})
	require.NoError(t, err)
	assert.True(t, updated.IsDone)
	assert.Equal(t, "write report", updated.Title)

	newTitle := "  send report  "
	updated, err = service.UpdateTask(ctx, task.ID, UpdateTaskParams{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "send report", updated.Title)
	assert.True(t, updated.IsDone)
}

func TestUpdateTaskEmptyTitle(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	task, err := service.CreateTask(ctx, uuid.New(), "write report")
	require.NoError(t, err)

	blank := " "
	_, err = service.UpdateTask(ctx, task.ID, UpdateTaskParams{Title: &blank})
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestUpdateTaskNotFound(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	done := true
	_, err := service.UpdateTask(ctx, uuid.New(), UpdateTaskParams{IsDone: &done})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteTask(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	task, err := service.CreateTask(ctx, uuid.New(), "write report")
	require.NoError(t, err)

	require.NoError(t, service.DeleteTask(ctx, task.ID))

	_, err = service.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	err = service.DeleteTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
