package domain

import "time"

type AuditAction string

const (
	AuditActionUpdateShiftPattern AuditAction = "UPDATE_SHIFT_PATTERN"
	AuditActionCreateWorker       AuditAction = "CREATE_WORKER"
	AuditActionUpdateWorker       AuditAction = "UPDATE_WORKER"
	AuditActionLogin              AuditAction = "LOGIN"
	AuditActionLogout             AuditAction = "LOGOUT"
	AuditActionHandoverComplete   AuditAction = "HANDOVER_COMPLETE"
)

type AuditTarget string

const (
	AuditTargetShiftConfig AuditTarget = "SHIFT_CONFIG"
	AuditTargetUser        AuditTarget = "USER"
	AuditTargetAuth        AuditTarget = "AUTH"
	AuditTargetSession     AuditTarget = "SESSION"
)

// AuditLog 是只追加的操作记录，ActorID 为空表示系统操作
type AuditLog struct {
	ID         int64          `json:"id"`
	ActorID    *int64         `json:"actorID"`
	ActorName  string         `json:"actorName,omitempty"`
	Action     AuditAction    `json:"action"`
	TargetType AuditTarget    `json:"targetType"`
	TargetID   string         `json:"targetID,omitempty"`
	Changes    map[string]any `json:"changes"`
	CreatedAt  time.Time      `json:"createdAt"`
}
