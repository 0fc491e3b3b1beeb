package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-todo-planner/internal/model"
	"go-todo-planner/internal/repository"
	"go-todo-planner/pkg/apierror"
)

type TodoService struct {
	todos repository.TodoRepository
}

func NewTodoService(todos repository.TodoRepository) *TodoService {
	return &TodoService{todos: todos}
}

// List returns the caller's todos, incomplete first, then by due date with
// undated todos last.
func (s *TodoService) List(ctx context.Context, userID int64, filter model.TodoFilter) ([]model.Todo, error) {
	if filter.DueDate != "" {
		date, err := normalizeDate(filter.DueDate)
		if err != nil {
			return nil, apierror.Validation("due must be a date (YYYY-MM-DD)", "due")
		}
		filter.DueDate = date
	}
	filter.Category = strings.TrimSpace(filter.Category)

	return s.todos.List(ctx, userID, filter)
}

func (s *TodoService) Get(ctx context.Context, userID int64, id int64) (model.Todo, error) {
	return s.todos.Get(ctx, userID, id)
}

func (s *TodoService) Create(ctx context.Context, userID int64, input model.TodoInput) (model.Todo, error) {
	todo, err := buildTodo(userID, input)
	if err != nil {
		return model.Todo{}, err
	}

	if err := s.todos.Create(ctx, &todo); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

// Update replaces every field of the todo. Absent fields fall back to their
// defaults, not to the stored values.
func (s *TodoService) Update(ctx context.Context, userID int64, id int64, input model.TodoInput) (model.Todo, error) {
	todo, err := buildTodo(userID, input)
	if err != nil {
		return model.Todo{}, err
	}
	todo.ID = id

	if err := s.todos.Update(ctx, todo); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, userID int64, id int64) error {
	return s.todos.Delete(ctx, userID, id)
}

func buildTodo(userID int64, input model.TodoInput) (model.Todo, error) {
	if input.UserID != nil && *input.UserID != userID {
		return model.Todo{}, fmt.Errorf("%w: user_id does not match the authenticated user", model.ErrForbidden)
	}

	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return model.Todo{}, apierror.Validation("title is required", "title")
	}

	todo := model.Todo{
		Title:    strings.TrimSpace(*input.Title),
		UserID:   userID,
		Category: model.DefaultCategory,
	}

	if input.Completed != nil {
		todo.Completed = *input.Completed
	}

	if input.DueDate != nil && strings.TrimSpace(*input.DueDate) != "" {
		date, err := normalizeDate(*input.DueDate)
		if err != nil {
			return model.Todo{}, apierror.Validation("due_date must be a date (YYYY-MM-DD)", "due_date")
		}
		todo.DueDate = &date
	}

	if input.Category != nil && strings.TrimSpace(*input.Category) != "" {
		todo.Category = strings.TrimSpace(*input.Category)
	}

	return todo, nil
}

// normalizeDate accepts YYYY-MM-DD or any longer ISO value whose first ten
// characters are such a date.
func normalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if len(value) > len(model.DateLayout) {
		value = value[:len(model.DateLayout)]
	}

	parsed, err := time.Parse(model.DateLayout, value)
	if err != nil {
		return "", err
	}
	return parsed.Format(model.DateLayout), nil
}
