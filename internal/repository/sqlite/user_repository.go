package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	moderncsqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"go-todo-planner/internal/model"
	"go-todo-planner/internal/repository"
)

type UserRepository struct {
	db *sqlx.DB
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, email, password_hash)
VALUES (?, ?, ?)`,
		user.Username,
		user.Email,
		user.PasswordHash,
	)
	if err != nil {
		if errCode(err) == sqlitelib.SQLITE_CONSTRAINT_UNIQUE {
			return 0, fmt.Errorf("create user: %w", model.ErrUserAlreadyExists)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	identifier = strings.TrimSpace(identifier)
	return r.get(ctx, `
SELECT id, username, email, password_hash
FROM users
WHERE lower(username) = lower(?) OR lower(email) = lower(?)
ORDER BY lower(username) = lower(?) DESC, id
LIMIT 1`, identifier, identifier, identifier)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.get(ctx, `
SELECT id, username, email, password_hash
FROM users
WHERE lower(email) = lower(?)`, strings.TrimSpace(email))
}

func (r *UserRepository) get(ctx context.Context, query string, args ...any) (model.User, error) {
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

// errCode returns the extended SQLite result code of err, or 0. When the
// driver only reports the primary SQLITE_CONSTRAINT code the message decides.
func errCode(err error) int {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return 0
	}

	code := sqliteErr.Code()
	if code != sqlitelib.SQLITE_CONSTRAINT {
		return code
	}

	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "UNIQUE"):
		return sqlitelib.SQLITE_CONSTRAINT_UNIQUE
	case strings.Contains(msg, "FOREIGN KEY"):
		return sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY
	case strings.Contains(msg, "CHECK"):
		return sqlitelib.SQLITE_CONSTRAINT_CHECK
	case strings.Contains(msg, "NOT NULL"):
		return sqlitelib.SQLITE_CONSTRAINT_NOTNULL
	}
	return code
}
