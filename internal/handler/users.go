package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetAllUserInfo(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取用户列表成功", users)
}

// checkTeam 确认组存在，teamID 为空表示不属于任何组
func (h *Handler) checkTeam(w http.ResponseWriter, r *http.Request, teamID *int64) bool {
	if teamID == nil {
		return true
	}
	if _, err := h.repository.GetTeamByID(r.Context(), *teamID); err != nil {
		switch {
		case errors.Is(err, domain.ErrTeamNotFound):
			h.errorResponse(w, r, "所属组不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return false
	}
	return true
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		FullName string `json:"fullName" validate:"required"`
		TeamID   *int64 `json:"teamID"`
		Role     string `json:"role" validate:"required,oneof=组员 管理员"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if domain.Role(req.Role) == domain.RoleMember && req.TeamID == nil {
		h.errorResponse(w, r, "组员必须属于一个组")
		return
	}
	if !h.checkTeam(w, r, req.TeamID) {
		return
	}

	// 生成随机密码
	password, err := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 对密码进行哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		TeamID:       req.TeamID,
		Role:         domain.Role(req.Role),
	}

	if err := h.repository.CreateUser(r.Context(), user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "users_username_key":
				h.badRequest(w, r, errors.New("用户名已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.audit(r, subject(r), domain.AuditActionCreateWorker, domain.AuditTargetUser, strconv.FormatInt(user.ID, 10), map[string]any{
		"username": user.Username,
		"fullName": user.FullName,
		"teamID":   user.TeamID,
		"role":     user.Role,
	})

	// 初始密码只在创建时返回一次
	h.successResponse(w, r, "用户创建成功", struct {
		*domain.User
		Password string `json:"password"`
	}{user, password})
}

func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.successResponse(w, r, "获取用户信息成功", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TeamID    *int64  `json:"teamID"`
		ClearTeam bool    `json:"clearTeam"`
		Role      *string `json:"role" validate:"omitempty,oneof=组员 管理员"`
		IsActive  *bool   `json:"isActive"`
		Password  *string `json:"password" validate:"omitempty,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if !h.checkTeam(w, r, req.TeamID) {
		return
	}

	user := r.Context().Value(UserInfoCtx).(*domain.User)
	before := *user

	switch {
	case req.ClearTeam:
		user.TeamID = nil
	case req.TeamID != nil:
		user.TeamID = req.TeamID
	}
	if req.Role != nil {
		user.Role = domain.Role(*req.Role)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		user.PasswordHash = string(hashedPassword)
	}

	if user.Role == domain.RoleMember && user.TeamID == nil {
		h.errorResponse(w, r, "组员必须属于一个组")
		return
	}

	if err := h.repository.UpdateUser(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			h.errorResponse(w, r, "更新用户信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 停用或调组之后原来的在岗会话不再有效
	if !user.IsActive || req.ClearTeam || req.TeamID != nil {
		if err := h.sessions.Clear(r.Context(), user.ID); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.audit(r, subject(r), domain.AuditActionUpdateWorker, domain.AuditTargetUser, strconv.FormatInt(user.ID, 10), userChanges(&before, user, req.Password != nil))

	h.successResponse(w, r, "更新用户信息成功", user)
}
