package task

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-tasks/pkg/hasher"
	"github.com/tendant/simple-tasks/pkg/identity"
	"github.com/tendant/simple-tasks/pkg/tokengenerator"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-access-secret"

// newTestRouter wires the task routes behind the jwtauth group exactly as the
// server binaries do, with identity routes mounted for login.
func newTestRouter() *chi.Mux {
	tokens := tokengenerator.NewTokenService(testSecret, "test-refresh-secret", "simple-tasks", "simple-tasks")
	pwdHasher := hasher.NewBcryptHasher(bcrypt.MinCost)

	identityService := identity.NewIdentityService(identity.NewInMemoryIdentityRepository(), pwdHasher, tokens)
	taskService := NewTaskService(NewInMemoryTaskRepository())

	r := chi.NewRouter()
	identity.Routes(r, identity.NewHandle(identityService))

	tokenAuth := jwtauth.New("HS256", []byte(testSecret), nil)
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Use(identity.AuthUserMiddleware)
		Routes(r, NewHandle(taskService))
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func loginAda(t *testing.T, r http.Handler) identity.LoginResult {
	t.Helper()
	rec := doJSON(t, r, "POST", "/users", "", map[string]string{
		"name":     "Ada Lovelace",
		"username": "ada",
		"password": "correcthorse",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, "POST", "/users/login", "", map[string]string{
		"username": "ada",
		"password": "correcthorse",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result identity.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestTaskRoutesRequireAuth(t *testing.T) {
	r := newTestRouter()

	rec := doJSON(t, r, "GET", "/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, r, "POST", "/tasks", "garbage-token", CreateTaskRequest{Title: "write report"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateTaskEndpoint(t *testing.T) {
	r := newTestRouter()
	login := loginAda(t, r)

	rec := doJSON(t, r, "POST", "/tasks", login.AccessToken, CreateTaskRequest{Title: "write report"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var task Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, "write report", task.Title)
	assert.Equal(t, login.Identity.ID, task.UserID)
	assert.False(t, task.IsDone)
}

func TestCreateTaskEndpointEmptyTitle(t *testing.T) {
	r := newTestRouter()
	login := loginAda(t, r)

	rec := doJSON(t, r, "POST", "/tasks", login.AccessToken, CreateTaskRequest{Title: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTasksByUserEndpoint(t *testing.T) {
	r := newTestRouter()
	login := loginAda(t, r)

	rec := doJSON(t, r, "POST", "/tasks", login.AccessToken, CreateTaskRequest{Title: "first"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, r, "POST", "/tasks", login.AccessToken, CreateTaskRequest{Title: "second"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, "GET", "/tasks/user/"+login.Identity.ID.String(), login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, "second", tasks[1].Title)
}

func TestUpdateTaskEndpoint(t *testing.T) {
	r := newTestRouter()
	login := loginAda(t, r)

	rec := doJSON(t, r, "POST", "/tasks", login.AccessToken, CreateTaskRequest{Title: "write report"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var task Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))

	done := true
	rec = doJSON(t, r, "PATCH", "/tasks/"+task.ID.String(), login.AccessToken, UpdateTaskRequest{IsDone: &done})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.IsDone)
	assert.Equal(t, "write report", updated.Title)
}

func TestDeleteTaskEndpoint(t *testing.T) {
	r := newTestRouter()
	login := loginAda(t, r)

	rec := doJSON(t, r, "POST", "/tasks", login.AccessToken, CreateTaskRequest{Title: "write report"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var task Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))

	rec = doJSON(t, r, "DELETE", "/tasks/"+task.ID.String(), login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, "DELETE", "/tasks/"+task.ID.String(), login.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
