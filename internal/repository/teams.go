package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

func (r *Repository) CreateTeam(ctx context.Context, team *domain.Team) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO teams (name) VALUES ($1)
		RETURNING id, created_at
	`

	return r.dbpool.QueryRowContext(ctx, query, team.Name).Scan(&team.ID, &team.CreatedAt)
}

func (r *Repository) GetAllTeams(ctx context.Context) ([]*domain.Team, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, `SELECT id, name, created_at FROM teams ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*domain.Team, 0)
	for rows.Next() {
		team := &domain.Team{}
		if err := rows.Scan(&team.ID, &team.Name, &team.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return teams, nil
}

// GetTeamByName 是组名到组 ID 的唯一映射，轮换配置中只保存组名
func (r *Repository) GetTeamByName(ctx context.Context, name string) (*domain.Team, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	team := &domain.Team{Name: name}
	err := r.dbpool.QueryRowContext(ctx, `SELECT id, created_at FROM teams WHERE name = $1`, name).Scan(&team.ID, &team.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}

	return team, nil
}

func (r *Repository) GetTeamByID(ctx context.Context, id int64) (*domain.Team, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	team := &domain.Team{ID: id}
	err := r.dbpool.QueryRowContext(ctx, `SELECT name, created_at FROM teams WHERE id = $1`, id).Scan(&team.Name, &team.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}

	return team, nil
}
