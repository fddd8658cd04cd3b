// Package handover 判断一个组此刻能否登录接班。
package handover

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

type Calendar interface {
	Teams(ctx context.Context, date time.Time) (domain.ShiftTeams, error)
	NextOnShift(ctx context.Context, date time.Time, shiftType domain.ShiftType) (time.Time, domain.ShiftType, domain.ShiftAssignment, error)
}

type Request struct {
	CandidateTeam string
	// ClaimedShift 为空时不检查，否则必须与候选组将要接的班次一致
	ClaimedShift domain.ShiftType
	// ActiveTeam 是当前在岗会话的组，为空表示没有人在岗
	ActiveTeam string
}

type Decision struct {
	Accepted     bool             `json:"accepted"`
	Bypassed     bool             `json:"bypassed"`
	Reason       string           `json:"reason,omitempty"`
	LogicalDate  time.Time        `json:"logicalDate"`
	CurrentTeam  string           `json:"currentTeam"`
	CurrentShift domain.ShiftType `json:"currentShift"`
	NextDate     time.Time        `json:"nextDate"`
	NextTeam     string           `json:"nextTeam"`
	NextShift    domain.ShiftType `json:"nextShift"`
}

type Guard struct {
	calendar Calendar
	civil    shiftclock.CivilClock
	clock    shiftclock.Clock
	logger   *slog.Logger
	bypass   bool
}

type Option func(*Guard)

// WithBypass 跳过全部检查，只能在非生产环境开启
func WithBypass(enabled bool) Option {
	return func(g *Guard) {
		g.bypass = enabled
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

func NewGuard(calendar Calendar, civil shiftclock.CivilClock, clock shiftclock.Clock, opts ...Option) *Guard {
	g := &Guard{
		calendar: calendar,
		civil:    civil,
		clock:    clock,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) BypassEnabled() bool {
	return g.bypass
}

// Authorize 只接受当前班次的组（重新登录）和下一个班次的组（接班）。
// 没有生效的配置时返回 domain.ErrConfigurationMissing，调用方应当拒绝登录。
func (g *Guard) Authorize(ctx context.Context, req Request) (*Decision, error) {
	if g.bypass {
		g.logger.Warn("交接班检查已被跳过", slog.String("team", req.CandidateTeam))
		return &Decision{
			Accepted: true,
			Bypassed: true,
			Reason:   "交接班检查已关闭",
		}, nil
	}

	date, slot := g.civil.LogicalShiftAt(g.clock.Now())
	date, slot = shiftclock.SessionAwareShift(date, slot, req.ActiveTeam, func(d time.Time) (domain.ShiftTeams, error) {
		return g.calendar.Teams(ctx, d)
	})

	teams, err := g.calendar.Teams(ctx, date)
	if err != nil {
		return nil, err
	}
	current := teams.Assignment(slot)

	nextDate, nextShift, next, err := g.calendar.NextOnShift(ctx, date, slot)
	if err != nil {
		return nil, err
	}

	decision := &Decision{
		LogicalDate:  date,
		CurrentTeam:  current.Team,
		CurrentShift: slot,
		NextDate:     nextDate,
		NextTeam:     next.Team,
		NextShift:    nextShift,
	}

	var takes []domain.ShiftType
	if req.CandidateTeam == current.Team {
		takes = append(takes, slot)
	}
	if req.CandidateTeam == next.Team {
		takes = append(takes, nextShift)
	}

	if len(takes) == 0 {
		decision.Reason = fmt.Sprintf("当前值班组为 %s（%s），下一班为 %s（%s），%s 不能登录",
			current.Team, shiftLabel(slot), next.Team, shiftLabel(nextShift), req.CandidateTeam)
		return decision, nil
	}

	if req.ClaimedShift != "" && !slices.Contains(takes, req.ClaimedShift) {
		decision.Reason = fmt.Sprintf("%s 接的是%s，不是%s", req.CandidateTeam, shiftLabel(takes[0]), shiftLabel(req.ClaimedShift))
		return decision, nil
	}

	decision.Accepted = true
	return decision, nil
}

func shiftLabel(t domain.ShiftType) string {
	switch t {
	case domain.ShiftTypeDay:
		return "白班"
	case domain.ShiftTypeNight:
		return "夜班"
	default:
		return string(t)
	}
}
