package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-todo-planner/internal/model"
	"go-todo-planner/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func TestTodoService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults", func(t *testing.T) {
		todos := new(repository.MockTodoRepository)
		svc := NewTodoService(todos)

		todos.On("Create", ctx, mock.AnythingOfType("*model.Todo")).
			Run(func(args mock.Arguments) { args.Get(1).(*model.Todo).ID = 11 }).
			Return(nil)

		got, err := svc.Create(ctx, 3, model.TodoInput{Title: ptr("  Test Todo "), Completed: ptr(false)})
		require.NoError(t, err)
		assert.Equal(t, model.Todo{ID: 11, Title: "Test Todo", UserID: 3, Category: model.DefaultCategory}, got)
		assert.Nil(t, got.DueDate)
		todos.AssertExpectations(t)
	})

	t.Run("keeps the date portion of a timestamp", func(t *testing.T) {
		todos := new(repository.MockTodoRepository)
		svc := NewTodoService(todos)

		todos.On("Create", ctx, mock.MatchedBy(func(todo *model.Todo) bool {
			return todo.DueDate != nil && *todo.DueDate == "2024-01-15" && todo.Category == "School"
		})).Return(nil)

		_, err := svc.Create(ctx, 3, model.TodoInput{
			Title:    ptr("Essay"),
			DueDate:  ptr("2024-01-15T09:00:00.000Z"),
			Category: ptr(" School "),
		})
		require.NoError(t, err)
		todos.AssertExpectations(t)
	})

	t.Run("matching user_id is accepted", func(t *testing.T) {
		todos := new(repository.MockTodoRepository)
		svc := NewTodoService(todos)
		todos.On("Create", ctx, mock.Anything).Return(nil)

		_, err := svc.Create(ctx, 3, model.TodoInput{Title: ptr("x"), UserID: ptr(int64(3))})
		require.NoError(t, err)
	})

	t.Run("foreign user_id is forbidden", func(t *testing.T) {
		todos := new(repository.MockTodoRepository)
		svc := NewTodoService(todos)

		_, err := svc.Create(ctx, 3, model.TodoInput{Title: ptr("x"), UserID: ptr(int64(4))})
		assert.ErrorIs(t, err, model.ErrForbidden)
		todos.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing title", func(t *testing.T) {
		todos := new(repository.MockTodoRepository)
		svc := NewTodoService(todos)

		_, err := svc.Create(ctx, 3, model.TodoInput{Completed: ptr(false)})
		apiErr := requireAPIError(t, err, http.StatusBadRequest)
		assert.Equal(t, "title", apiErr.Details)

		_, err = svc.Create(ctx, 3, model.TodoInput{Title: ptr("   ")})
		requireAPIError(t, err, http.StatusBadRequest)
	})

	t.Run("bad date", func(t *testing.T) {
		todos := new(repository.MockTodoRepository)
		svc := NewTodoService(todos)

		_, err := svc.Create(ctx, 3, model.TodoInput{Title: ptr("x"), DueDate: ptr("next tuesday")})
		apiErr := requireAPIError(t, err, http.StatusBadRequest)
		assert.Equal(t, "due_date", apiErr.Details)
	})

	t.Run("missing owner", func(t *testing.T) {
		todos := new(repository.MockTodoRepository)
		svc := NewTodoService(todos)
		todos.On("Create", ctx, mock.Anything).Return(model.ErrUserReference)

		_, err := svc.Create(ctx, 999, model.TodoInput{Title: ptr("x")})
		assert.ErrorIs(t, err, model.ErrUserReference)
	})
}

func TestTodoService_Update(t *testing.T) {
	ctx := context.Background()
	todos := new(repository.MockTodoRepository)
	svc := NewTodoService(todos)

	replaced := model.Todo{ID: 5, Title: "Renamed", Completed: true, UserID: 3, Category: model.DefaultCategory}
	todos.On("Update", ctx, replaced).Return(nil)
	todos.On("Update", ctx, mock.MatchedBy(func(todo model.Todo) bool { return todo.ID == 404 })).Return(model.ErrTodoNotFound)

	got, err := svc.Update(ctx, 3, 5, model.TodoInput{Title: ptr("Renamed"), Completed: ptr(true), Category: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, replaced, got)

	_, err = svc.Update(ctx, 3, 404, model.TodoInput{Title: ptr("x")})
	assert.ErrorIs(t, err, model.ErrTodoNotFound)

	todos.AssertExpectations(t)
}

func TestTodoService_List(t *testing.T) {
	ctx := context.Background()
	todos := new(repository.MockTodoRepository)
	svc := NewTodoService(todos)

	todos.On("List", ctx, int64(3), model.TodoFilter{DueDate: "2024-02-01", Category: "Work"}).Return([]model.Todo{{ID: 1}}, nil)

	got, err := svc.List(ctx, 3, model.TodoFilter{DueDate: "2024-02-01T00:00:00Z", Category: " Work "})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.List(ctx, 3, model.TodoFilter{DueDate: "soon"})
	requireAPIError(t, err, http.StatusBadRequest)

	todos.AssertExpectations(t)
}

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"2024-01-15":               "2024-01-15",
		" 2024-01-15 ":             "2024-01-15",
		"2024-01-15T09:00:00Z":     "2024-01-15",
		"2024-01-15T09:00:00.000Z": "2024-01-15",
	}
	for in, want := range cases {
		got, err := normalizeDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, bad := range []string{"", "2024-13-01", "20240115", "tomorrow"} {
		_, err := normalizeDate(bad)
		assert.Error(t, err, bad)
	}
}
