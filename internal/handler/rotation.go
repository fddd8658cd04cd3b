package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

// rotationError 把轮换相关的领域错误转换成提示信息
func (h *Handler) rotationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrConfigurationMissing):
		h.errorResponse(w, r, "该日期没有生效的轮换配置")
	case errors.Is(err, domain.ErrPatternIndexMissing):
		h.errorResponse(w, r, "轮换配置损坏，缺少对应日期的排班")
	default:
		h.internalServerError(w, r, err)
	}
}

type currentRotation struct {
	Now         time.Time             `json:"now"`
	LogicalDate time.Time             `json:"logicalDate"`
	ShiftType   domain.ShiftType      `json:"shiftType"`
	Team        string                `json:"team"`
	IsSwap      bool                  `json:"isSwap"`
	Members     domain.RoleAssignment `json:"members"`
	NextDate    time.Time             `json:"nextDate"`
	NextShift   domain.ShiftType      `json:"nextShift"`
	NextTeam    string                `json:"nextTeam"`
	Active      *domain.DutySession   `json:"activeSession"`
	Pending     *domain.DutySession   `json:"pendingSession"`
	BypassGuard bool                  `json:"bypassGuard"`
}

func (h *Handler) GetCurrentRotation(w http.ResponseWriter, r *http.Request) {
	date, slot, active, err := h.logicalNow(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	assignment, members, err := h.calendar.Assignment(r.Context(), date, slot)
	if err != nil {
		h.rotationError(w, r, err)
		return
	}

	nextDate, nextShift, next, err := h.calendar.NextOnShift(r.Context(), date, slot)
	if err != nil {
		h.rotationError(w, r, err)
		return
	}

	pending, err := h.sessions.Pending(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取当前班次成功", currentRotation{
		Now:         h.clock.Now().In(h.civil.Location()),
		LogicalDate: date,
		ShiftType:   slot,
		Team:        assignment.Team,
		IsSwap:      assignment.IsSwap,
		Members:     members,
		NextDate:    nextDate,
		NextShift:   nextShift,
		NextTeam:    next.Team,
		Active:      active,
		Pending:     pending,
		BypassGuard: h.guard.BypassEnabled(),
	})
}

func (h *Handler) GetRotationTeams(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", h.civil.CivilDate(h.clock.Now()))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	teams, err := h.calendar.Teams(r.Context(), date)
	if err != nil {
		h.rotationError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取值班组成功", teams)
}

// GetTeamShifts 返回某个组在一段日期内每天的班次，默认从今天起 30 天
func (h *Handler) GetTeamShifts(w http.ResponseWriter, r *http.Request) {
	team := r.URL.Query().Get("team")
	if team == "" {
		h.errorResponse(w, r, "缺少参数 team")
		return
	}

	today := h.civil.CivilDate(h.clock.Now())
	from, err := dateParam(r, "from", today)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	to, err := dateParam(r, "to", shiftclock.AddDays(from, 29))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if to.Before(from) {
		h.errorResponse(w, r, "结束日期不能早于开始日期")
		return
	}
	if shiftclock.DaysBetween(from, to) >= rotation.MaxRangeDays {
		h.errorResponse(w, r, "查询的日期范围过大")
		return
	}

	shifts, err := h.calendar.ResolveRange(r.Context(), from, to, team)
	if err != nil {
		h.rotationError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次成功", shifts)
}

func (h *Handler) GetShiftAssignment(w http.ResponseWriter, r *http.Request) {
	date, slot, _, err := h.logicalNow(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	date, err = dateParam(r, "date", date)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	slot, err = shiftTypeParam(r, "shiftType", slot)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment, members, err := h.calendar.Assignment(r.Context(), date, slot)
	if err != nil {
		h.rotationError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取值班人员成功", struct {
		Date      time.Time             `json:"date"`
		ShiftType domain.ShiftType      `json:"shiftType"`
		Team      string                `json:"team"`
		IsSwap    bool                  `json:"isSwap"`
		Members   domain.RoleAssignment `json:"members"`
	}{date, slot, assignment.Team, assignment.IsSwap, members})
}
