package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-todo-planner/internal/model"
	"go-todo-planner/internal/repository"
)

const todoColumns = `id, title, completed, user_id, to_char(due_date, 'YYYY-MM-DD'), category`

type TodoRepository struct {
	pool *pgxpool.Pool
}

var _ repository.TodoRepository = (*TodoRepository)(nil)

func NewTodoRepository(pool *pgxpool.Pool) *TodoRepository {
	return &TodoRepository{pool: pool}
}

func (r *TodoRepository) List(ctx context.Context, userID int64, filter model.TodoFilter) ([]model.Todo, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	argIdx := 2

	if filter.DueDate != "" {
		where = append(where, fmt.Sprintf("due_date = $%d", argIdx))
		args = append(args, filter.DueDate)
		argIdx++
	}
	if filter.Completed != nil {
		where = append(where, fmt.Sprintf("completed = $%d", argIdx))
		args = append(args, *filter.Completed)
		argIdx++
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		where = append(where, fmt.Sprintf("lower(category) = lower($%d)", argIdx))
		args = append(args, category)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+todoColumns+`
		 FROM todos
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY completed ASC, due_date ASC NULLS LAST, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (r *TodoRepository) Get(ctx context.Context, userID int64, id int64) (model.Todo, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1 AND user_id = $2`, id, userID)

	t, err := scanTodo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Todo{}, model.ErrTodoNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

func (r *TodoRepository) Create(ctx context.Context, t *model.Todo) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO todos (title, completed, user_id, due_date, category)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		t.Title, t.Completed, t.UserID, t.DueDate, t.Category).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("create todo: %w", translate(err))
	}
	return nil
}

func (r *TodoRepository) Update(ctx context.Context, t model.Todo) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE todos
		 SET title = $3, completed = $4, due_date = $5, category = $6
		 WHERE id = $1 AND user_id = $2`,
		t.ID, t.UserID, t.Title, t.Completed, t.DueDate, t.Category)
	if err != nil {
		return fmt.Errorf("update todo: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTodoNotFound
	}
	return nil
}

func (r *TodoRepository) Delete(ctx context.Context, userID int64, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTodoNotFound
	}
	return nil
}

func scanTodo(row pgx.Row) (model.Todo, error) {
	var t model.Todo
	err := row.Scan(&t.ID, &t.Title, &t.Completed, &t.UserID, &t.DueDate, &t.Category)
	return t, err
}

func translate(err error) error {
	switch pgErrCode(err) {
	case foreignKeyViolation:
		return model.ErrUserReference
	case checkViolation:
		return model.ErrInvalidInput
	default:
		return err
	}
}
