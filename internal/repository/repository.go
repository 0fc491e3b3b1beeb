// Package repository defines the store adapters for users and todos. The
// postgres and sqlite subpackages implement them against their engines.
package repository

import (
	"context"

	"go-todo-planner/internal/model"
)

// UserRepository persists credentials. Lookups return model.ErrUserNotFound
// when nothing matches; Create returns model.ErrUserAlreadyExists on a
// username or email collision.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (int64, error)
	// FindByIdentifier matches the identifier against username or email.
	FindByIdentifier(ctx context.Context, identifier string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
}

// TodoRepository persists todos. Every read and write is scoped to the owning
// user; a row owned by someone else is reported as model.ErrTodoNotFound.
type TodoRepository interface {
	List(ctx context.Context, userID int64, filter model.TodoFilter) ([]model.Todo, error)
	Get(ctx context.Context, userID int64, id int64) (model.Todo, error)
	// Create inserts todo and sets its ID. A missing owner yields model.ErrUserReference.
	Create(ctx context.Context, todo *model.Todo) error
	Update(ctx context.Context, todo model.Todo) error
	Delete(ctx context.Context, userID int64, id int64) error
}
