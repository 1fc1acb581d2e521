package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-planner-api/internal/model"
	"github.com/BuzzLyutic/task-planner-api/internal/repo"
	"github.com/BuzzLyutic/task-planner-api/internal/service"
	"github.com/BuzzLyutic/task-planner-api/tests"
)

func setupHandler(t *testing.T) (*TaskHandler, *pgxpool.Pool, func()) {
	pool, cleanup := tests.SetupTestDB(t)

	taskRepo := repo.NewTaskRepo(pool)
	userRepo := repo.NewUserRepo(pool)
	taskService := service.NewTaskService(taskRepo, userRepo, 0)
	logger := zap.NewNop()
	handler := NewTaskHandler(taskService, logger)

	return handler, pool, cleanup
}

func TestTaskHandler_Create(t *testing.T) {
	handler, pool, cleanup := setupHandler(t)
	defer cleanup()

	userID := tests.SeedUser(t, pool, "creator@example.com")

	cases := []struct {
		name     string
		body     map[string]any
		wantCode int
	}{
		{
			name: "successful creation",
			body: map[string]any{
				"title":              "Test Task",
				"description":        "a task",
				"suggestedStartDate": "2024-03-01T09:00:00Z",
				"completionDeadline": "2024-03-02T18:00:00Z",
				"status":             "pending",
				"user":               userID.String(),
			},
			wantCode: http.StatusCreated,
		},
		{
			name:     "empty body",
			body:     nil,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "validation error - no title",
			body: map[string]any{
				"title":       "",
				"description": "a task",
				"status":      "pending",
				"user":        userID.String(),
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "malformed user id",
			body: map[string]any{
				"title":       "Test Task",
				"description": "a task",
				"status":      "pending",
				"user":        "definitely-not-a-uuid",
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "related user does not exist",
			body: map[string]any{
				"title":       "Test Task",
				"description": "a task",
				"status":      "pending",
				"user":        uuid.NewString(),
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "recurring without end date",
			body: map[string]any{
				"title":              "Recurring",
				"description":        "repeats",
				"suggestedStartDate": "2024-03-01T09:00:00Z",
				"completionDeadline": "2024-03-02T18:00:00Z",
				"status":             "pending",
				"appellant":          true,
				"recurrence":         "daily",
				"user":               userID.String(),
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			if tt.body != nil {
				body, _ = json.Marshal(tt.body)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			handler.Create(w, req)

			assert.Equal(t, tt.wantCode, w.Code)

			if tt.wantCode == http.StatusCreated {
				// Тело не возвращается, только Location
				assert.Contains(t, w.Header().Get("Location"), "/api/tasks/")
				assert.Zero(t, w.Body.Len())
			}
		})
	}
}

func TestTaskHandler_Create_RollsBackRecurringWithoutEndDate(t *testing.T) {
	handler, pool, cleanup := setupHandler(t)
	defer cleanup()

	userID := tests.SeedUser(t, pool, "rollback@example.com")

	body, _ := json.Marshal(map[string]any{
		"title":              "Recurring",
		"description":        "repeats",
		"suggestedStartDate": "2024-03-01T09:00:00Z",
		"completionDeadline": "2024-03-02T18:00:00Z",
		"status":             "pending",
		"appellant":          true,
		"recurrence":         "daily",
		"user":               userID.String(),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.Create(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	// Базовая задача не должна была пережить откат
	var count int
	err := pool.QueryRow(req.Context(), "SELECT count(*) FROM tasks").Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTaskHandler_List(t *testing.T) {
	handler, pool, cleanup := setupHandler(t)
	defer cleanup()

	userID := tests.SeedUser(t, pool, "lister@example.com")
	start := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	tests.SeedTasks(t, pool, userID, start, 12)

	t.Run("paginated envelope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks?page=2&limit=5", nil)
		w := httptest.NewRecorder()
		handler.List(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var page model.TaskPage
		require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 5, page.Limit)
		assert.Equal(t, 12, page.Total)
		assert.Equal(t, 3, page.TotalPages)
		assert.Len(t, page.Data, 5)
	})

	t.Run("title substring is case-insensitive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks?title=task+1", nil)
		w := httptest.NewRecorder()
		handler.List(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var page model.TaskPage
		require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
		// Task 1, Task 10, Task 11, Task 12
		assert.Equal(t, 4, page.Total)
	})

	t.Run("date range bounds are inclusive", func(t *testing.T) {
		url := "/api/tasks?suggestedStartDateFrom=2024-01-03&suggestedStartDateTo=2024-01-05T09:00:00Z"
		req := httptest.NewRequest(http.MethodGet, url, nil)
		w := httptest.NewRecorder()
		handler.List(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var page model.TaskPage
		require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
		assert.Equal(t, 3, page.Total)
	})

	t.Run("bad date parameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks?completionDeadlineFrom=nope", nil)
		w := httptest.NewRecorder()
		handler.List(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "completionDeadlineFrom")
	})

	t.Run("bad pagination", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks?page=0", nil)
		w := httptest.NewRecorder()
		handler.List(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown filter user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks?user="+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		handler.List(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTaskHandler_GetUpdateDelete(t *testing.T) {
	handler, pool, cleanup := setupHandler(t)
	defer cleanup()

	userID := tests.SeedUser(t, pool, "crud@example.com")
	start := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	ids := tests.SeedTasks(t, pool, userID, start, 1)
	taskID := ids[0]

	router := chi.NewRouter()
	router.Get("/api/tasks/{id}", handler.Get)
	router.Put("/api/tasks/{id}", handler.Update)
	router.Delete("/api/tasks/{id}", handler.Delete)

	t.Run("get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/tasks/%s", taskID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var task model.Task
		require.NoError(t, json.NewDecoder(w.Body).Decode(&task))
		assert.Equal(t, taskID, task.ID)
		assert.Equal(t, userID, task.UserID)
	})

	t.Run("get malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/abc123", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "abc123")
	})

	t.Run("update", func(t *testing.T) {
		body, _ := json.Marshal(map[string]any{
			"title":              "Renamed",
			"description":        "updated",
			"suggestedStartDate": "2024-05-02T09:00:00Z",
			"completionDeadline": "2024-05-03T18:00:00Z",
			"status":             "started",
			"user":               userID.String(),
		})
		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/tasks/%s", taskID), bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var task model.Task
		require.NoError(t, json.NewDecoder(w.Body).Decode(&task))
		assert.Equal(t, "Renamed", task.Title)
		assert.Equal(t, model.StatusStarted, task.Status)
	})

	t.Run("update with empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/tasks/%s", taskID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "empty request body")
	})

	t.Run("update missing task", func(t *testing.T) {
		body, _ := json.Marshal(map[string]any{
			"title":              "Ghost",
			"description":        "missing",
			"suggestedStartDate": "2024-05-02T09:00:00Z",
			"completionDeadline": "2024-05-03T18:00:00Z",
			"status":             "pending",
			"user":               userID.String(),
		})
		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/tasks/%s", uuid.NewString()), bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete and verify", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/tasks/%s", taskID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)

		req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/tasks/%s", taskID), nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
