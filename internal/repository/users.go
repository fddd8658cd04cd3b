package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

const userColumns = `id, username, password_hash, full_name, team_id, role, is_active, created_at, version`

func scanUser(row scanner) (*domain.User, error) {
	user := &domain.User{}
	var teamID sql.NullInt64

	dst := []any{&user.ID, &user.Username, &user.PasswordHash, &user.FullName, &teamID, &user.Role, &user.IsActive, &user.CreatedAt, &user.Version}
	if err := row.Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if teamID.Valid {
		user.TeamID = &teamID.Int64
	}

	return user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanUser(r.dbpool.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanUser(r.dbpool.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET
			password_hash = $1,
			team_id = $2,
			role = $3,
			is_active = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING username, full_name, created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{user.PasswordHash, user.TeamID, user.Role, user.IsActive, user.ID, user.Version}
	dst := []any{&user.Username, &user.FullName, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return err
	}

	return nil
}

func (r *Repository) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO users (username, password_hash, full_name, team_id, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, version
	`

	args := []any{user.Username, user.PasswordHash, user.FullName, user.TeamID, user.Role}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.Version)
}
