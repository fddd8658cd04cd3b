package domain

import "time"

type WorklogStatus string

const (
	WorklogStatusDraft  WorklogStatus = "draft"
	WorklogStatusClosed WorklogStatus = "closed"
)

type SignatureRole string

const (
	SignatureRoleOperation  SignatureRole = "operation"
	SignatureRoleMCR        SignatureRole = "mcr"
	SignatureRoleTeamLeader SignatureRole = "team_leader"
	SignatureRoleNetwork    SignatureRole = "network"
)

var SignatureRoles = []SignatureRole{
	SignatureRoleOperation,
	SignatureRoleMCR,
	SignatureRoleTeamLeader,
	SignatureRoleNetwork,
}

// PreSignRole 签过这个角色的日志在自动关闭时视为已事先批准
const PreSignRole = SignatureRoleOperation

const SystemSigner = "System Auto-Close"

func ParseSignatureRole(s string) (SignatureRole, bool) {
	for _, role := range SignatureRoles {
		if string(role) == s {
			return role, true
		}
	}
	return "", false
}

type Signature struct {
	Signer   string    `json:"signer"`
	SignedAt time.Time `json:"signedAt"`
	System   bool      `json:"system,omitempty"`
}

type Signatures map[SignatureRole]*Signature

func (s Signatures) Has(role SignatureRole) bool {
	sig, ok := s[role]
	return ok && sig != nil && sig.Signer != ""
}

func (s Signatures) Complete() bool {
	for _, role := range SignatureRoles {
		if !s.Has(role) {
			return false
		}
	}
	return true
}

func (s Signatures) Clone() Signatures {
	out := make(Signatures, len(s))
	for role, sig := range s {
		if sig == nil {
			continue
		}
		copied := *sig
		out[role] = &copied
	}
	return out
}

const SystemAuthor = "system"

type SystemIssue struct {
	ID        string    `json:"id"`
	Summary   string    `json:"summary"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

type Workers struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`
	Tertiary  []string `json:"tertiary"`
}

func EmptyWorkers() Workers {
	return Workers{
		Primary:   []string{},
		Secondary: []string{},
		Tertiary:  []string{},
	}
}

// Worklog 的 Date 是逻辑班次日期，夜班凌晨部分仍归属前一天
type Worklog struct {
	ID            int64         `json:"id"`
	Date          time.Time     `json:"date"`
	ShiftType     ShiftType     `json:"shiftType"`
	TeamID        int64         `json:"teamID"`
	TeamName      string        `json:"teamName"`
	Status        WorklogStatus `json:"status"`
	Workers       Workers       `json:"workers"`
	Signatures    Signatures    `json:"signatures"`
	SystemIssues  []SystemIssue `json:"systemIssues"`
	IsAutoCreated bool          `json:"isAutoCreated"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Version       int32         `json:"-"`
}

// WorklogPatch 整体替换这三个字段，只能通过条件更新写入
type WorklogPatch struct {
	Status       WorklogStatus
	Signatures   Signatures
	SystemIssues []SystemIssue
}
