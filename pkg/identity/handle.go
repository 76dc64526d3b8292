package identity

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-tasks/pkg/tokengenerator"
	"golang.org/x/exp/slog"
)

type Handle struct {
	identityService *IdentityService
}

func NewHandle(identityService *IdentityService) Handle {
	return Handle{
		identityService: identityService,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UpdateRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// renderError maps service errors onto the HTTP taxonomy. Raw store errors
// never reach the client.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr ErrValidation
	var usernameExists ErrUsernameExists

	switch {
	case errors.As(err, &validationErr):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: validationErr.Error()})
	case errors.As(err, &usernameExists):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, MessageResponse{Message: "username already taken"})
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, tokengenerator.ErrTokenExpired),
		errors.Is(err, tokengenerator.ErrTokenInvalid):
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, MessageResponse{Message: "invalid credentials"})
	case errors.Is(err, ErrIdentityNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, MessageResponse{Message: "user not found"})
	default:
		slog.Error("Request failed", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, MessageResponse{Message: "internal error"})
	}
}

// Register a new user
// (POST /users)
func (h Handle) Register(w http.ResponseWriter, r *http.Request) {
	var request RegisterRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: "invalid request body"})
		return
	}

	safe, err := h.identityService.Register(r.Context(), RegisterParams{
		Name:     request.Name,
		Username: request.Username,
		Password: request.Password,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, safe)
}

// Login with username and password
// (POST /users/login)
func (h Handle) Login(w http.ResponseWriter, r *http.Request) {
	var request LoginRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: "invalid request body"})
		return
	}

	result, err := h.identityService.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// Exchange a refresh token for a fresh token pair
// (POST /users/refresh)
func (h Handle) Refresh(w http.ResponseWriter, r *http.Request) {
	var request RefreshRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: "invalid request body"})
		return
	}

	result, err := h.identityService.Refresh(r.Context(), request.RefreshToken)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// Get a list of users
// (GET /users)
func (h Handle) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.identityService.FindIdentities(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, users)
}

// Get user details by id
// (GET /users/{id})
func (h Handle) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: "invalid id format"})
		return
	}

	user, err := h.identityService.GetIdentity(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, user)
}

// Update user details by id
// (PATCH /users/{id})
func (h Handle) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: "invalid id format"})
		return
	}

	var request UpdateRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: "invalid request body"})
		return
	}

	user, err := h.identityService.UpdateIdentity(r.Context(), id, UpdateParams{
		Name:     request.Name,
		Username: request.Username,
		Password: request.Password,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, user)
}

// Delete user by id
// (DELETE /users/{id})
func (h Handle) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: "invalid id format"})
		return
	}

	if err := h.identityService.DeleteIdentity(r.Context(), id); err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, MessageResponse{Message: "user " + id.String() + " removed successfully"})
}

// Routes mounts the identity endpoints
func Routes(r chi.Router, handle Handle) {
	r.Post("/users", handle.Register)
	r.Post("/users/login", handle.Login)
	r.Post("/users/refresh", handle.Refresh)
	r.Get("/users", handle.GetUsers)
	r.Get("/users/{id}", handle.GetUser)
	r.Patch("/users/{id}", handle.UpdateUser)
	r.Delete("/users/{id}", handle.DeleteUser)
}
