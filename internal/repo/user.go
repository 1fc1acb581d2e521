package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-planner-api/internal/model"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		pool: pool,
	}
}

func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash
	`, u.ID, u.Email, u.PasswordHash).Scan(&u.ID, &u.Email, &u.PasswordHash)
	return u, mapError(err)
}

func (r *UserRepo) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.PasswordHash)
	return u, mapError(err)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash)
	return u, mapError(err)
}

func (r *UserRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)
	`, id).Scan(&exists)
	return exists, err
}

func (r *UserRepo) List(ctx context.Context, filter model.UserFilter, limit, skip int) ([]model.User, error) {
	where, args := buildUserWhere(filter)
	args = append(args, limit, skip)

	query := fmt.Sprintf(`
		SELECT id, email, password_hash
		FROM users
		%s
		ORDER BY email
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0, limit)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) Count(ctx context.Context, filter model.UserFilter) (int, error) {
	where, args := buildUserWhere(filter)

	var total int
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM users "+where, args...).Scan(&total)
	return total, err
}

func (r *UserRepo) Update(ctx context.Context, u model.User) (model.User, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE users
		SET email = $2, password_hash = $3
		WHERE id = $1
		RETURNING id, email, password_hash
	`, u.ID, u.Email, u.PasswordHash).Scan(&u.ID, &u.Email, &u.PasswordHash)
	return u, mapError(err)
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func buildUserWhere(filter model.UserFilter) (string, []any) {
	if filter.EmailContains == nil {
		return "", nil
	}
	return "WHERE email ILIKE '%' || $1 || '%'", []any{*filter.EmailContains}
}
