package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

const shiftPatternColumns = `id, valid_from, valid_to, cycle_length, pattern, roster, role_labels, memo, created_by, created_at, version`

func scanShiftPatternConfig(row scanner) (*domain.ShiftPatternConfig, error) {
	var (
		cfg        domain.ShiftPatternConfig
		validTo    sql.NullTime
		createdBy  sql.NullInt64
		pattern    []byte
		roster     []byte
		roleLabels []byte
	)

	dst := []any{&cfg.ID, &cfg.ValidFrom, &validTo, &cfg.CycleLength, &pattern, &roster, &roleLabels, &cfg.Memo, &createdBy, &cfg.CreatedAt, &cfg.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	cfg.ValidFrom = shiftclock.DateOf(cfg.ValidFrom)
	if validTo.Valid {
		to := shiftclock.DateOf(validTo.Time)
		cfg.ValidTo = &to
	}
	if createdBy.Valid {
		cfg.CreatedBy = &createdBy.Int64
	}

	if err := json.Unmarshal(pattern, &cfg.Pattern); err != nil {
		return nil, fmt.Errorf("解析配置 %d 的轮换表失败: %w", cfg.ID, err)
	}
	if err := json.Unmarshal(roster, &cfg.Roster); err != nil {
		return nil, fmt.Errorf("解析配置 %d 的名单失败: %w", cfg.ID, err)
	}
	if err := json.Unmarshal(roleLabels, &cfg.RoleLabels); err != nil {
		return nil, fmt.Errorf("解析配置 %d 的职责名称失败: %w", cfg.ID, err)
	}

	return &cfg, nil
}

func (r *Repository) queryShiftPatternConfigs(ctx context.Context, query string, args ...any) ([]*domain.ShiftPatternConfig, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	configs := make([]*domain.ShiftPatternConfig, 0)
	for rows.Next() {
		cfg, err := scanShiftPatternConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return configs, nil
}

// GetActiveShiftPatternConfig 选出 valid_from 不晚于该日且尚未失效的配置中最新的一份
func (r *Repository) GetActiveShiftPatternConfig(ctx context.Context, date time.Time) (*domain.ShiftPatternConfig, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT ` + shiftPatternColumns + `
		FROM shift_pattern_configs
		WHERE valid_from <= $1 AND (valid_to IS NULL OR valid_to >= $1)
		ORDER BY valid_from DESC, created_at DESC, id DESC
		LIMIT 1
	`

	cfg, err := scanShiftPatternConfig(r.dbpool.QueryRowContext(ctx, query, shiftclock.DateOf(date)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigurationMissing, shiftclock.FormatDate(date))
	}
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (r *Repository) GetShiftPatternConfigsBetween(ctx context.Context, from, to time.Time) ([]*domain.ShiftPatternConfig, error) {
	query := `
		SELECT ` + shiftPatternColumns + `
		FROM shift_pattern_configs
		WHERE valid_from <= $2 AND (valid_to IS NULL OR valid_to >= $1)
		ORDER BY valid_from DESC, created_at DESC, id DESC
	`

	return r.queryShiftPatternConfigs(ctx, query, shiftclock.DateOf(from), shiftclock.DateOf(to))
}

func (r *Repository) GetAllShiftPatternConfigs(ctx context.Context) ([]*domain.ShiftPatternConfig, error) {
	query := `
		SELECT ` + shiftPatternColumns + `
		FROM shift_pattern_configs
		ORDER BY valid_from DESC, created_at DESC, id DESC
	`

	return r.queryShiftPatternConfigs(ctx, query)
}

func (r *Repository) GetShiftPatternConfigByID(ctx context.Context, id int64) (*domain.ShiftPatternConfig, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + shiftPatternColumns + ` FROM shift_pattern_configs WHERE id = $1`

	cfg, err := scanShiftPatternConfig(r.dbpool.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrShiftPatternConfigNotFound
	}
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// CreateShiftPatternConfig 发布新配置。已发布的配置不再修改轮换表。
// 新配置长期有效时，之前长期有效的那份会在同一事务中被截止到新配置生效的前一天；
// 有期限的新配置只是临时覆盖，到期后旧配置继续生效。
func (r *Repository) CreateShiftPatternConfig(ctx context.Context, cfg *domain.ShiftPatternConfig) error {
	pattern, err := json.Marshal(cfg.Pattern)
	if err != nil {
		return err
	}
	roster := cfg.Roster
	if roster == nil {
		roster = map[string][]string{}
	}
	rosterJSON, err := json.Marshal(roster)
	if err != nil {
		return err
	}
	labels := cfg.RoleLabels
	if labels == nil {
		labels = []string{}
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return err
	}

	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	validFrom := shiftclock.DateOf(cfg.ValidFrom)

	capQuery := `
		UPDATE shift_pattern_configs
		SET valid_to = $1::date - 1, version = version + 1
		WHERE valid_to IS NULL AND valid_from < $1
	`
	if cfg.ValidTo == nil {
		if _, err := tx.ExecContext(ctx, capQuery, validFrom); err != nil {
			return err
		}
	}

	var validTo any
	if cfg.ValidTo != nil {
		validTo = shiftclock.DateOf(*cfg.ValidTo)
	}

	insertQuery := `
		INSERT INTO shift_pattern_configs (valid_from, valid_to, cycle_length, pattern, roster, role_labels, memo, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`
	args := []any{validFrom, validTo, cfg.CycleLength, string(pattern), string(rosterJSON), string(labelsJSON), cfg.Memo, cfg.CreatedBy}
	if err := tx.QueryRowContext(ctx, insertQuery, args...).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.Version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	cfg.ValidFrom = validFrom
	return nil
}
