package v1

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSON[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestTaskEndpoints(t *testing.T) {
	env := newTestEnv(t, &scriptedModel{})
	token := env.token(t, "user-1")

	t.Run("requires authentication", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/v1/tasks", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	var taskID string
	t.Run("create", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/v1/tasks", token,
			strings.NewReader(`{"title":"  Buy milk  ","description":"2%"}`))
		require.Equal(t, http.StatusCreated, rec.Code)
		task := decodeJSON[taskResponse](t, rec.Body.String())
		assert.Equal(t, "Buy milk", task.Title)
		assert.False(t, task.Completed)
		assert.NotZero(t, task.CreatedTs)
		taskID = task.ID
	})

	t.Run("create rejects empty title", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/api/v1/tasks", token,
			strings.NewReader(`{"title":"   "}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create rejects overlong title", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"title": strings.Repeat("x", 201)})
		rec := env.request(t, http.MethodPost, "/api/v1/tasks", token, strings.NewReader(string(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/v1/tasks/"+taskID, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		task := decodeJSON[taskResponse](t, rec.Body.String())
		assert.Equal(t, taskID, task.ID)
	})

	t.Run("foreign owner gets 404", func(t *testing.T) {
		other := env.token(t, "user-2")
		rec := env.request(t, http.MethodGet, "/api/v1/tasks/"+taskID, other, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id gets 404", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/v1/tasks/not-a-uuid", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("patch completion", func(t *testing.T) {
		rec := env.request(t, http.MethodPatch, "/api/v1/tasks/"+taskID, token,
			strings.NewReader(`{"completed":true}`))
		require.Equal(t, http.StatusOK, rec.Code)
		task := decodeJSON[taskResponse](t, rec.Body.String())
		assert.True(t, task.Completed)
	})

	t.Run("list with filter", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/v1/tasks?completed=true", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decodeJSON[taskListResponse](t, rec.Body.String())
		require.Len(t, list.Data, 1)
		assert.Equal(t, 1, list.Total)
		assert.Equal(t, 1, list.TotalPages)
	})

	t.Run("delete", func(t *testing.T) {
		rec := env.request(t, http.MethodDelete, "/api/v1/tasks/"+taskID, token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.request(t, http.MethodGet, "/api/v1/tasks/"+taskID, token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTaskListPagination(t *testing.T) {
	env := newTestEnv(t, &scriptedModel{})
	token := env.token(t, "user-1")
	for i := 0; i < 5; i++ {
		rec := env.request(t, http.MethodPost, "/api/v1/tasks", token,
			strings.NewReader(`{"title":"task"}`))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.request(t, http.MethodGet, "/api/v1/tasks?page=2&per_page=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON[taskListResponse](t, rec.Body.String())
	assert.Len(t, list.Data, 2)
	assert.Equal(t, 5, list.Total)
	assert.Equal(t, 2, list.Page)
	assert.Equal(t, 3, list.TotalPages)
}
