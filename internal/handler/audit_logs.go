package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

const (
	defaultAuditLogLimit = 50
	maxAuditLogLimit     = 500
)

// audit 写入一条操作记录。写入失败只记日志，不影响请求本身的结果。
func (h *Handler) audit(r *http.Request, actorID *int64, action domain.AuditAction, target domain.AuditTarget, targetID string, changes map[string]any) {
	entry := &domain.AuditLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: target,
		TargetID:   targetID,
		Changes:    changes,
	}
	if err := h.repository.InsertAuditLog(r.Context(), entry); err != nil {
		slog.Error("写入操作记录失败", "action", action, "target", target, "targetID", targetID, "error", err)
	}
}

// subject 返回当前登录用户的 ID，解析失败时视为系统操作
func subject(r *http.Request) *int64 {
	sub, ok := r.Context().Value(SubCtxKey).(string)
	if !ok {
		return nil
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// userChanges 只保留发生变化的字段，密码只记录是否被重置
func userChanges(before, after *domain.User, passwordReset bool) map[string]any {
	changes := map[string]any{}

	if !sameTeam(before.TeamID, after.TeamID) {
		changes["teamID"] = map[string]any{"from": before.TeamID, "to": after.TeamID}
	}
	if before.Role != after.Role {
		changes["role"] = map[string]any{"from": before.Role, "to": after.Role}
	}
	if before.IsActive != after.IsActive {
		changes["isActive"] = map[string]any{"from": before.IsActive, "to": after.IsActive}
	}
	if passwordReset {
		changes["passwordReset"] = true
	}

	return changes
}

func sameTeam(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (h *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLogLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxAuditLogLimit {
			h.badRequest(w, r, errors.New("limit 必须在 1 到 500 之间"))
			return
		}
		limit = n
	}

	logs, err := h.repository.GetAuditLogs(r.Context(), limit)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取操作记录成功", logs)
}
