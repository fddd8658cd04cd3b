package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

// dateParam 读取 YYYY-MM-DD 格式的查询参数，缺省时返回 fallback
func dateParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback, nil
	}

	date, err := shiftclock.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("参数 %s 的日期格式应为 YYYY-MM-DD", name)
	}
	return date, nil
}

func shiftTypeParam(r *http.Request, name string, fallback domain.ShiftType) (domain.ShiftType, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback, nil
	}
	return domain.ParseShiftType(value)
}

// logicalNow 返回此刻的逻辑班次，会参考当前在岗的组
func (h *Handler) logicalNow(r *http.Request) (time.Time, domain.ShiftType, *domain.DutySession, error) {
	active, err := h.sessions.Active(r.Context())
	if err != nil {
		return time.Time{}, "", nil, err
	}

	date, slot := h.civil.LogicalShiftAt(h.clock.Now())
	if active != nil {
		date, slot = shiftclock.SessionAwareShift(date, slot, active.TeamName, func(d time.Time) (domain.ShiftTeams, error) {
			return h.calendar.Teams(r.Context(), d)
		})
	}

	return date, slot, active, nil
}
