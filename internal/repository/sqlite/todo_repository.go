package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	sqlitelib "modernc.org/sqlite/lib"

	"go-todo-planner/internal/model"
	"go-todo-planner/internal/repository"
)

type TodoRepository struct {
	db *sqlx.DB
}

var _ repository.TodoRepository = (*TodoRepository)(nil)

func NewTodoRepository(db *sqlx.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) List(ctx context.Context, userID int64, filter model.TodoFilter) ([]model.Todo, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if filter.DueDate != "" {
		where = append(where, "due_date = ?")
		args = append(args, filter.DueDate)
	}
	if filter.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, *filter.Completed)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		where = append(where, "lower(category) = lower(?)")
		args = append(args, category)
	}

	todos := make([]model.Todo, 0)
	err := r.db.SelectContext(ctx, &todos, `
SELECT id, title, completed, user_id, due_date, category
FROM todos
WHERE `+strings.Join(where, " AND ")+`
ORDER BY completed ASC, due_date IS NULL, due_date ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) Get(ctx context.Context, userID int64, id int64) (model.Todo, error) {
	var todo model.Todo
	err := r.db.GetContext(ctx, &todo, `
SELECT id, title, completed, user_id, due_date, category
FROM todos
WHERE id = ? AND user_id = ?`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, model.ErrTodoNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("get todo: %w", err)
	}
	return todo, nil
}

func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO todos (title, completed, user_id, due_date, category)
VALUES (?, ?, ?, ?, ?)`,
		todo.Title,
		todo.Completed,
		todo.UserID,
		todo.DueDate,
		todo.Category,
	)
	if err != nil {
		return fmt.Errorf("insert todo: %w", translate(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("todo last insert id: %w", err)
	}
	todo.ID = id
	return nil
}

func (r *TodoRepository) Update(ctx context.Context, todo model.Todo) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE todos
SET title = ?, completed = ?, due_date = ?, category = ?
WHERE id = ? AND user_id = ?`,
		todo.Title,
		todo.Completed,
		todo.DueDate,
		todo.Category,
		todo.ID,
		todo.UserID,
	)
	if err != nil {
		return fmt.Errorf("update todo: %w", translate(err))
	}
	return requireRow(res)
}

func (r *TodoRepository) Delete(ctx context.Context, userID int64, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return model.ErrTodoNotFound
	}
	return nil
}

func translate(err error) error {
	switch errCode(err) {
	case sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY:
		return model.ErrUserReference
	case sqlitelib.SQLITE_CONSTRAINT_CHECK, sqlitelib.SQLITE_CONSTRAINT_NOTNULL:
		return model.ErrInvalidInput
	default:
		return err
	}
}
