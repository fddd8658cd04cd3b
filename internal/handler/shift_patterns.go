package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

func (h *Handler) GetAllShiftPatternConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.repository.GetAllShiftPatternConfigs(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	rotation.SortConfigs(configs)
	h.successResponse(w, r, "获取轮换配置成功", configs)
}

func (h *Handler) CreateShiftPatternConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ValidFrom   string                     `json:"validFrom" validate:"required,datetime=2006-01-02"`
		ValidTo     *string                    `json:"validTo" validate:"omitempty,datetime=2006-01-02"`
		CycleLength int                        `json:"cycleLength" validate:"required,min=1,max=366"`
		Teams       []string                   `json:"teams" validate:"omitempty,min=2,dive,required"`
		Pattern     []domain.DailyShiftPattern `json:"pattern"`
		Roster      map[string][]string        `json:"roster"`
		RoleLabels  []string                   `json:"roleLabels" validate:"omitempty,max=3"`
		Memo        string                     `json:"memo" validate:"max=256"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	validFrom, err := shiftclock.ParseDate(req.ValidFrom)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	cfg := &domain.ShiftPatternConfig{
		ValidFrom:   validFrom,
		CycleLength: req.CycleLength,
		Pattern:     req.Pattern,
		Roster:      req.Roster,
		RoleLabels:  req.RoleLabels,
		Memo:        req.Memo,
		CreatedBy:   &myInfo.ID,
	}
	if req.ValidTo != nil {
		validTo, err := shiftclock.ParseDate(*req.ValidTo)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		cfg.ValidTo = &validTo
	}

	// 没有给出轮换表时按组的顺序生成默认轮换
	if len(cfg.Pattern) == 0 && len(req.Teams) > 0 {
		cfg.Pattern = rotation.GenerateDefaultPattern(cfg.CycleLength, req.Teams)
	}

	if err := rotation.Validate(cfg); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidShiftPatternConfig):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 轮换表和名单中的组都必须已经存在，否则自动创建日志时找不到组
	names := rotation.Teams(cfg)
	for team := range cfg.Roster {
		names = append(names, team)
	}
	for _, name := range names {
		if _, err := h.repository.GetTeamByName(r.Context(), name); err != nil {
			switch {
			case errors.Is(err, domain.ErrTeamNotFound):
				h.errorResponse(w, r, fmt.Sprintf("组 %s 不存在", name))
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}

	if err := h.repository.CreateShiftPatternConfig(r.Context(), cfg); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	changes := map[string]any{
		"validFrom":   shiftclock.FormatDate(cfg.ValidFrom),
		"cycleLength": cfg.CycleLength,
		"teams":       rotation.Teams(cfg),
		"memo":        cfg.Memo,
	}
	if cfg.ValidTo != nil {
		changes["validTo"] = shiftclock.FormatDate(*cfg.ValidTo)
	}
	h.audit(r, &myInfo.ID, domain.AuditActionUpdateShiftPattern, domain.AuditTargetShiftConfig, strconv.FormatInt(cfg.ID, 10), changes)

	h.successResponse(w, r, "发布轮换配置成功", cfg)
}

func (h *Handler) GetActiveShiftPatternConfig(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", h.civil.CivilDate(h.clock.Now()))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	cfg, err := h.calendar.Config(r.Context(), date)
	if err != nil {
		h.rotationError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取生效的轮换配置成功", struct {
		Date   time.Time                  `json:"date"`
		Config *domain.ShiftPatternConfig `json:"config"`
	}{date, cfg})
}

func (h *Handler) GetShiftPatternConfig(w http.ResponseWriter, r *http.Request) {
	cfg := r.Context().Value(ShiftPatternConfigCtx).(*domain.ShiftPatternConfig)
	h.successResponse(w, r, "获取轮换配置成功", cfg)
}
