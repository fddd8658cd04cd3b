package handler

import (
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/worklog"
)

// canOperate 组员只能操作本组的日志，管理员不受限制
func canOperate(user *domain.User, wl *domain.Worklog) bool {
	if user.Role == domain.RoleAdmin {
		return true
	}
	return user.TeamID != nil && *user.TeamID == wl.TeamID
}

func workersFrom(members domain.RoleAssignment) domain.Workers {
	workers := domain.EmptyWorkers()
	if members.Primary != "" {
		workers.Primary = append(workers.Primary, members.Primary)
	}
	if members.Secondary != "" {
		workers.Secondary = append(workers.Secondary, members.Secondary)
	}
	workers.Tertiary = append(workers.Tertiary, members.Tertiary...)
	return workers
}

func (h *Handler) worklogWriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrConcurrentModification):
		h.errorResponse(w, r, "工作日志已被修改，请刷新后重试")
	case errors.Is(err, domain.ErrWorklogClosed):
		h.errorResponse(w, r, "工作日志已关闭")
	case errors.Is(err, domain.ErrAlreadySigned):
		h.errorResponse(w, r, "该职责已经签名")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetWorklogs(w http.ResponseWriter, r *http.Request) {
	today, _, _, err := h.logicalNow(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	date, err := dateParam(r, "date", today)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	worklogs, err := h.repository.GetWorklogsByDate(r.Context(), date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取工作日志成功", worklogs)
}

// CreateWorklog 为某个班次创建草稿，默认是当前班次，值班人员按名单填入
func (h *Handler) CreateWorklog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
		ShiftType string `json:"shiftType" validate:"omitempty,oneof=day night"`
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

	date, slot, _, err := h.logicalNow(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if req.Date != "" {
		if date, err = shiftclock.ParseDate(req.Date); err != nil {
			h.badRequest(w, r, err)
			return
		}
	}
	if req.ShiftType != "" {
		slot = domain.ShiftType(req.ShiftType)
	}

	assignment, members, err := h.calendar.Assignment(r.Context(), date, slot)
	if err != nil {
		h.rotationError(w, r, err)
		return
	}

	team, err := h.repository.GetTeamByName(r.Context(), assignment.Team)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTeamNotFound):
			h.errorResponse(w, r, "值班组不存在，请检查轮换配置")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	wl := worklog.NewDraft(date, slot, team, false)
	if !canOperate(myInfo, wl) {
		h.errorResponse(w, r, "只能为本组的班次创建工作日志")
		return
	}
	wl.Workers = workersFrom(members)

	if err := h.repository.InsertWorklogIfAbsent(r.Context(), wl); err != nil {
		if !errors.Is(err, domain.ErrDuplicateCreate) {
			h.internalServerError(w, r, err)
			return
		}

		existing, err := h.repository.FindWorklog(r.Context(), date, slot, team.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		h.successResponse(w, r, "工作日志已存在", existing)
		return
	}

	h.successResponse(w, r, "创建工作日志成功", wl)
}

func (h *Handler) GetWorklog(w http.ResponseWriter, r *http.Request) {
	wl := r.Context().Value(WorklogCtx).(*domain.Worklog)
	h.successResponse(w, r, "获取工作日志成功", wl)
}

func (h *Handler) UpdateWorklogWorkers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Primary   []string `json:"primary" validate:"required,dive,required"`
		Secondary []string `json:"secondary" validate:"required,dive,required"`
		Tertiary  []string `json:"tertiary" validate:"required,dive,required"`
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
	wl := r.Context().Value(WorklogCtx).(*domain.Worklog)

	if !canOperate(myInfo, wl) {
		h.errorResponse(w, r, "权限不足")
		return
	}
	if wl.Status == domain.WorklogStatusClosed {
		h.errorResponse(w, r, "工作日志已关闭")
		return
	}

	wl.Workers = domain.Workers{
		Primary:   req.Primary,
		Secondary: req.Secondary,
		Tertiary:  req.Tertiary,
	}
	if err := h.repository.UpdateWorklogWorkers(r.Context(), wl); err != nil {
		h.worklogWriteError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新值班人员成功", wl)
}

// applyPatch 以读到的状态和版本号为条件写入补丁，成功后重新读取最新记录
func (h *Handler) applyPatch(w http.ResponseWriter, r *http.Request, wl *domain.Worklog, patch domain.WorklogPatch, msg string) {
	if err := h.repository.ConditionalUpdateWorklog(r.Context(), wl.ID, wl.Status, wl.Version, patch); err != nil {
		h.worklogWriteError(w, r, err)
		return
	}

	updated, err := h.repository.GetWorklogByID(r.Context(), wl.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, msg, updated)
}

func (h *Handler) SignWorklog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role" validate:"required,oneof=operation mcr team_leader network"`
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
	wl := r.Context().Value(WorklogCtx).(*domain.Worklog)

	if !canOperate(myInfo, wl) {
		h.errorResponse(w, r, "权限不足")
		return
	}

	role, _ := domain.ParseSignatureRole(req.Role)
	patch, err := worklog.Sign(wl, role, myInfo.FullName, h.clock.Now())
	if err != nil {
		h.worklogWriteError(w, r, err)
		return
	}

	msg := "签名成功"
	if patch.Status == domain.WorklogStatusClosed {
		msg = "签名成功，工作日志已完成"
	}
	h.applyPatch(w, r, wl, patch, msg)
}

func (h *Handler) FinalizeWorklog(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	wl := r.Context().Value(WorklogCtx).(*domain.Worklog)

	if !canOperate(myInfo, wl) {
		h.errorResponse(w, r, "权限不足")
		return
	}

	patch, err := worklog.Finalize(wl, myInfo.FullName, h.clock.Now())
	if err != nil {
		h.worklogWriteError(w, r, err)
		return
	}

	h.applyPatch(w, r, wl, patch, "工作日志已结束")
}
