package reconciler

import (
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeExists  Outcome = "exists"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

const (
	StageAutoClose  = "auto_close"
	StageAutoCreate = "auto_create"
)

type Failure struct {
	Stage     string `json:"stage"`
	WorklogID int64  `json:"worklogID,omitempty"`
	Error     string `json:"error"`
}

type CreateResult struct {
	Outcome   Outcome          `json:"outcome"`
	Date      time.Time        `json:"date"`
	ShiftType domain.ShiftType `json:"shiftType"`
	Team      string           `json:"team,omitempty"`
	WorklogID int64            `json:"worklogID,omitempty"`
	Reason    string           `json:"reason,omitempty"`
}

type Report struct {
	StartedAt   time.Time    `json:"startedAt"`
	FinishedAt  time.Time    `json:"finishedAt"`
	LockSkipped bool         `json:"lockSkipped"`
	Closed      []int64      `json:"closed"`
	Conflicts   []int64      `json:"conflicts"`
	Failures    []Failure    `json:"failures"`
	Create      CreateResult `json:"create"`
}

func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}
