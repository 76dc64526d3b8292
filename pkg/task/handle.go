package task

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-tasks/pkg/identity"
	"golang.org/x/exp/slog"
)

type Handle struct {
	taskService *TaskService
}

func NewHandle(taskService *TaskService) Handle {
	return Handle{
		taskService: taskService,
	}
}

type CreateTaskRequest struct {
	Title string `json:"title"`
}

type UpdateTaskRequest struct {
	Title  *string `json:"title"`
	IsDone *bool   `json:"is_done"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrEmptyTitle):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: err.Error()})
	case errors.Is(err, ErrTaskNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, MessageResponse{Message: "task not found"})
	default:
		slog.Error("Request failed", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, MessageResponse{Message: "internal error"})
	}
}

// Create a task owned by the authenticated user
// (POST /tasks)
func (h Handle) CreateTask(w http.ResponseWriter, r *http.Request) {
	authUser, ok := identity.AuthUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var request CreateTaskRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: "invalid request body"})
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), authUser.UserID, request.Title)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, task)
}

// Get all tasks
// (GET /tasks)
func (h Handle) GetTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.FindTasks(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, tasks)
}

// Get tasks owned by a user
// (GET /tasks/user/{userId})
func (h Handle) GetTasksByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: "invalid user id format"})
		return
	}

	tasks, err := h.taskService.FindTasksByUser(r.Context(), userID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, tasks)
}

// Update a task's title and/or done flag
// (PATCH /tasks/{id})
func (h Handle) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: "invalid id format"})
		return
	}

	var request UpdateTaskRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: "invalid request body"})
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), id, UpdateTaskParams{
		Title:  request.Title,
		IsDone: request.IsDone,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, task)
}

// Delete a task
// (DELETE /tasks/{id})
func (h Handle) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: "invalid id format"})
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id); err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, MessageResponse{Message: "task " + id.String() + " removed successfully"})
}

// Routes mounts the task endpoints. Callers wrap this in the jwtauth
// verifier group so every route sees an authenticated user.
func Routes(r chi.Router, handle Handle) {
	r.Post("/tasks", handle.CreateTask)
	r.Get("/tasks", handle.GetTasks)
	r.Get("/tasks/user/{userId}", handle.GetTasksByUser)
	r.Patch("/tasks/{id}", handle.UpdateTask)
	r.Delete("/tasks/{id}", handle.DeleteTask)
}
