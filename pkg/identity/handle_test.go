package identity

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-tasks/pkg/hasher"
	"github.com/tendant/simple-tasks/pkg/tokengenerator"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter() *chi.Mux {
	repo := NewInMemoryIdentityRepository()
	pwdHasher := hasher.NewBcryptHasher(bcrypt.MinCost)
	tokens := tokengenerator.NewTokenService("test-access-secret", "test-refresh-secret", "simple-tasks", "simple-tasks")
	service := NewIdentityService(repo, pwdHasher, tokens)

	r := chi.NewRouter()
	Routes(r, NewHandle(service))
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func registerAda(t *testing.T, r http.Handler) SafeIdentity {
	t.Helper()
	rec := doJSON(t, r, "POST", "/users", RegisterRequest{
		Name:     "Ada Lovelace",
		Username: "ada",
		Password: "correcthorse",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var safe SafeIdentity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &safe))
	return safe
}

func TestRegisterEndpoint(t *testing.T) {
	r := newTestRouter()

	rec := doJSON(t, r, "POST", "/users", RegisterRequest{
		Name:     "Ada Lovelace",
		Username: "ada",
		Password: "correcthorse",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var safe SafeIdentity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &safe))
	assert.NotEmpty(t, safe.ID)
	assert.Equal(t, "ada", safe.Username)
	assert.Equal(t, "Ada Lovelace", safe.Name)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterEndpointRejectsBadBody(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest("POST", "/users", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterEndpointValidation(t *testing.T) {
	r := newTestRouter()

	rec := doJSON(t, r, "POST", "/users", RegisterRequest{
		Name:     "Ada Lovelace",
		Username: "ada",
		Password: "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterEndpointConflict(t *testing.T) {
	r := newTestRouter()
	registerAda(t, r)

	rec := doJSON(t, r, "POST", "/users", RegisterRequest{
		Name:     "Ada Byron",
		Username: "ada",
		Password: "differentpass",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	r := newTestRouter()
	safe := registerAda(t, r)

	rec := doJSON(t, r, "POST", "/users/login", LoginRequest{
		Username: "ada",
		Password: "correcthorse",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, safe.ID, result.Identity.ID)
	assert.Equal(t, "ada", result.Identity.Username)

	// The raw body must never expose credential material.
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestLoginEndpointUnauthorized(t *testing.T) {
	r := newTestRouter()
	registerAda(t, r)

	wrongPass := doJSON(t, r, "POST", "/users/login", LoginRequest{Username: "ada", Password: "wrongpassword"})
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)

	unknownUser := doJSON(t, r, "POST", "/users/login", LoginRequest{Username: "nosuchuser", Password: "correcthorse"})
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)

	// Identical response body on both failure paths.
	assert.Equal(t, wrongPass.Body.String(), unknownUser.Body.String())
}

func TestRefreshEndpoint(t *testing.T) {
	r := newTestRouter()
	registerAda(t, r)

	login := doJSON(t, r, "POST", "/users/login", LoginRequest{Username: "ada", Password: "correcthorse"})
	require.Equal(t, http.StatusOK, login.Code)

	var result LoginResult
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &result))

	rec := doJSON(t, r, "POST", "/users/refresh", RefreshRequest{RefreshToken: result.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)

	var refreshed LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, result.Identity.ID, refreshed.Identity.ID)
}

func TestRefreshEndpointRejectsGarbage(t *testing.T) {
	r := newTestRouter()

	rec := doJSON(t, r, "POST", "/users/refresh", RefreshRequest{RefreshToken: "not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserEndpoint(t *testing.T) {
	r := newTestRouter()
	safe := registerAda(t, r)

	rec := doJSON(t, r, "GET", "/users/"+safe.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched SafeIdentity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, safe.ID, fetched.ID)

	missing := doJSON(t, r, "GET", "/users/e4d0a7c2-7a72-4f1b-9f64-1111e9a1b2c3", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	badID := doJSON(t, r, "GET", "/users/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, badID.Code)
}

func TestUpdateUserEndpoint(t *testing.T) {
	r := newTestRouter()
	safe := registerAda(t, r)

	newName := "Ada Byron"
	rec := doJSON(t, r, "PATCH", "/users/"+safe.ID.String(), UpdateRequest{Name: &newName})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated SafeIdentity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Ada Byron", updated.Name)
	assert.Equal(t, "ada", updated.Username)
}

func TestDeleteUserEndpoint(t *testing.T) {
	r := newTestRouter()
	safe := registerAda(t, r)

	rec := doJSON(t, r, "DELETE", "/users/"+safe.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	missing := doJSON(t, r, "GET", "/users/"+safe.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	again := doJSON(t, r, "DELETE", "/users/"+safe.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestGetUsersEndpoint(t *testing.T) {
	r := newTestRouter()
	registerAda(t, r)

	rec := doJSON(t, r, "GET", "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []SafeIdentity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "ada", users[0].Username)
}
