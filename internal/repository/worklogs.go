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

const worklogSelect = `
	SELECT
		w.id,
		w.date,
		w.shift_type,
		w.team_id,
		t.name,
		w.status,
		w.workers,
		w.signatures,
		w.system_issues,
		w.is_auto_created,
		w.created_at,
		w.updated_at,
		w.version
	FROM worklogs w
	JOIN teams t ON t.id = w.team_id
`

func scanWorklog(row scanner) (*domain.Worklog, error) {
	var (
		w          domain.Worklog
		workers    []byte
		signatures []byte
		issues     []byte
	)

	dst := []any{&w.ID, &w.Date, &w.ShiftType, &w.TeamID, &w.TeamName, &w.Status, &workers, &signatures, &issues, &w.IsAutoCreated, &w.CreatedAt, &w.UpdatedAt, &w.Version}
	if err := row.Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWorklogNotFound
		}
		return nil, err
	}

	w.Date = shiftclock.DateOf(w.Date)

	if err := json.Unmarshal(workers, &w.Workers); err != nil {
		return nil, fmt.Errorf("解析工作日志 %d 的值班人员失败: %w", w.ID, err)
	}
	if err := json.Unmarshal(signatures, &w.Signatures); err != nil {
		return nil, fmt.Errorf("解析工作日志 %d 的签名失败: %w", w.ID, err)
	}
	if err := json.Unmarshal(issues, &w.SystemIssues); err != nil {
		return nil, fmt.Errorf("解析工作日志 %d 的记录失败: %w", w.ID, err)
	}

	if w.Signatures == nil {
		w.Signatures = domain.Signatures{}
	}
	if w.SystemIssues == nil {
		w.SystemIssues = []domain.SystemIssue{}
	}

	return &w, nil
}

func (r *Repository) queryWorklogs(ctx context.Context, query string, args ...any) ([]*domain.Worklog, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	worklogs := make([]*domain.Worklog, 0)
	for rows.Next() {
		w, err := scanWorklog(rows)
		if err != nil {
			return nil, err
		}
		worklogs = append(worklogs, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return worklogs, nil
}

func (r *Repository) GetWorklogByID(ctx context.Context, id int64) (*domain.Worklog, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanWorklog(r.dbpool.QueryRowContext(ctx, worklogSelect+` WHERE w.id = $1`, id))
}

func (r *Repository) FindWorklog(ctx context.Context, date time.Time, shiftType domain.ShiftType, teamID int64) (*domain.Worklog, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := worklogSelect + ` WHERE w.date = $1 AND w.shift_type = $2 AND w.team_id = $3`
	return scanWorklog(r.dbpool.QueryRowContext(ctx, query, shiftclock.DateOf(date), shiftType, teamID))
}

func (r *Repository) GetWorklogsByDate(ctx context.Context, date time.Time) ([]*domain.Worklog, error) {
	return r.queryWorklogs(ctx, worklogSelect+` WHERE w.date = $1 ORDER BY w.shift_type, w.id`, shiftclock.DateOf(date))
}

func (r *Repository) ListDraftWorklogs(ctx context.Context, from, to time.Time, shiftType domain.ShiftType) ([]*domain.Worklog, error) {
	query := worklogSelect + `
		WHERE w.status = $1 AND w.shift_type = $2 AND w.date BETWEEN $3 AND $4
		ORDER BY w.date, w.id
	`
	return r.queryWorklogs(ctx, query, domain.WorklogStatusDraft, shiftType, shiftclock.DateOf(from), shiftclock.DateOf(to))
}

// InsertWorklogIfAbsent 依赖 (date, shift_type, team_id) 唯一约束，
// 已有同键记录时不插入并返回 domain.ErrDuplicateCreate
func (r *Repository) InsertWorklogIfAbsent(ctx context.Context, w *domain.Worklog) error {
	workers, err := json.Marshal(w.Workers)
	if err != nil {
		return err
	}
	signatures := w.Signatures
	if signatures == nil {
		signatures = domain.Signatures{}
	}
	signaturesJSON, err := json.Marshal(signatures)
	if err != nil {
		return err
	}
	issues := w.SystemIssues
	if issues == nil {
		issues = []domain.SystemIssue{}
	}
	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return err
	}

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO worklogs (date, shift_type, team_id, status, workers, signatures, system_issues, is_auto_created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT worklogs_date_shift_type_team_id_key DO NOTHING
		RETURNING id, created_at, updated_at, version
	`
	args := []any{shiftclock.DateOf(w.Date), w.ShiftType, w.TeamID, w.Status, string(workers), string(signaturesJSON), string(issuesJSON), w.IsAutoCreated}
	err = r.dbpool.QueryRowContext(ctx, query, args...).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt, &w.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrDuplicateCreate
	}

	return err
}

// ConditionalUpdateWorklog 只在状态和版本号都没有变化时写入补丁，
// 否则返回 domain.ErrConcurrentModification，调用方不应覆盖别人的修改
func (r *Repository) ConditionalUpdateWorklog(ctx context.Context, id int64, expectedStatus domain.WorklogStatus, expectedVersion int32, patch domain.WorklogPatch) error {
	signatures, err := json.Marshal(patch.Signatures)
	if err != nil {
		return err
	}
	issues := patch.SystemIssues
	if issues == nil {
		issues = []domain.SystemIssue{}
	}
	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return err
	}

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE worklogs
		SET
			status = $1,
			signatures = $2,
			system_issues = $3,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $4 AND status = $5 AND version = $6
	`
	args := []any{patch.Status, string(signatures), string(issuesJSON), id, expectedStatus, expectedVersion}
	result, err := r.dbpool.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrConcurrentModification
	}

	return nil
}

// UpdateWorklogWorkers 修改值班人员，同样以版本号为条件
func (r *Repository) UpdateWorklogWorkers(ctx context.Context, w *domain.Worklog) error {
	workers, err := json.Marshal(w.Workers)
	if err != nil {
		return err
	}

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE worklogs
		SET workers = $1, updated_at = NOW(), version = version + 1
		WHERE id = $2 AND status = $3 AND version = $4
		RETURNING updated_at, version
	`
	err = r.dbpool.QueryRowContext(ctx, query, string(workers), w.ID, domain.WorklogStatusDraft, w.Version).Scan(&w.UpdatedAt, &w.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrConcurrentModification
	}

	return err
}
