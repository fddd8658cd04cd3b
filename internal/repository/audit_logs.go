package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

func (r *Repository) InsertAuditLog(ctx context.Context, entry *domain.AuditLog) error {
	changes := entry.Changes
	if changes == nil {
		changes = map[string]any{}
	}
	changesJSON, err := json.Marshal(changes)
	if err != nil {
		return err
	}

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO audit_logs (actor_id, action, target_type, target_id, changes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	args := []any{entry.ActorID, string(entry.Action), string(entry.TargetType), entry.TargetID, string(changesJSON)}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt)
}

// GetAuditLogs 按时间倒序返回最近的 limit 条记录
func (r *Repository) GetAuditLogs(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT a.id, a.actor_id, COALESCE(u.full_name, ''), a.action, a.target_type, a.target_id, a.changes, a.created_at
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.actor_id
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $1
	`

	rows, err := r.dbpool.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]*domain.AuditLog, 0)
	for rows.Next() {
		var (
			entry   domain.AuditLog
			actorID sql.NullInt64
			changes []byte
		)
		if err := rows.Scan(&entry.ID, &actorID, &entry.ActorName, &entry.Action, &entry.TargetType, &entry.TargetID, &changes, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if actorID.Valid {
			entry.ActorID = &actorID.Int64
		}
		if err := json.Unmarshal(changes, &entry.Changes); err != nil {
			return nil, fmt.Errorf("解析操作记录 %d 失败: %w", entry.ID, err)
		}
		logs = append(logs, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}
