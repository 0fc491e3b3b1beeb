package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-todo-planner/internal/model"
	"go-todo-planner/internal/repository"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) (int64, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		u.Username, u.Email, u.PasswordHash).Scan(&u.ID)
	if err != nil {
		if pgErrCode(err) == uniqueViolation {
			return 0, fmt.Errorf("create user: %w", model.ErrUserAlreadyExists)
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return u.ID, nil
}

func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	return r.findOne(ctx, "find user by identifier",
		`SELECT id, username, email, password_hash
		 FROM users
		 WHERE lower(username) = lower($1) OR lower(email) = lower($1)
		 ORDER BY lower(username) = lower($1) DESC, id
		 LIMIT 1`, strings.TrimSpace(identifier))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findOne(ctx, "find user by email",
		`SELECT id, username, email, password_hash FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email))
}

func (r *UserRepository) findOne(ctx context.Context, op string, query string, arg any) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
