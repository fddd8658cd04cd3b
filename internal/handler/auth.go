package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/handover"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/session"
	"golang.org/x/crypto/bcrypt"
)

const (
	loginModeDefault  = "default"
	loginModeHandover = "handover"
)

type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type loginResult struct {
	User     *domain.User        `json:"user"`
	Session  *domain.DutySession `json:"session,omitempty"`
	Decision *handover.Decision  `json:"decision,omitempty"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username     string `json:"username" validate:"required"`
		Password     string `json:"password" validate:"required"`
		Mode         string `json:"mode" validate:"omitempty,oneof=default handover"`
		ClaimedShift string `json:"claimedShift" validate:"omitempty,oneof=day night"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.Mode == "" {
		req.Mode = loginModeDefault
	}

	// 验证用户名和密码
	user, err := h.repository.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			h.errorResponse(w, r, "用户名不存在或密码错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.errorResponse(w, r, "用户名不存在或密码错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if !user.IsActive {
		h.errorResponse(w, r, "账号已停用")
		return
	}

	result := &loginResult{User: user}

	// 不属于任何组的用户（管理员）不参与交接班
	if user.TeamID != nil {
		team, err := h.repository.GetTeamByID(r.Context(), *user.TeamID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		sess, decision, err := h.startDuty(r.Context(), user, team, req.Mode, domain.ShiftType(req.ClaimedShift))
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if !decision.Accepted {
			h.rejectResponse(w, r, decision.Reason, decision)
			return
		}
		result.Session, result.Decision = sess, decision
	}

	if err := h.setTokenCookie(w, user); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	changes := map[string]any{"mode": req.Mode}
	if result.Session != nil {
		changes["team"] = result.Session.TeamName
	}
	h.audit(r, &user.ID, domain.AuditActionLogin, domain.AuditTargetAuth, user.Username, changes)

	h.successResponse(w, r, "登录成功", result)
}

// startDuty 检查 team 能否在当前时刻登录并记录值班会话。
// team 为 nil 时不做任何检查。被拒绝时返回的会话为 nil，已有会话保持不变。
func (h *Handler) startDuty(ctx context.Context, user *domain.User, team *domain.Team, mode string, claimed domain.ShiftType) (*domain.DutySession, *handover.Decision, error) {
	if team == nil {
		return nil, nil, nil
	}

	active, err := h.sessions.Active(ctx)
	if err != nil {
		return nil, nil, err
	}

	hreq := handover.Request{
		CandidateTeam: team.Name,
		ClaimedShift:  claimed,
	}
	if active != nil {
		hreq.ActiveTeam = active.TeamName
	}

	decision, err := h.guard.Authorize(ctx, hreq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConfigurationMissing):
			return nil, &handover.Decision{Reason: "没有生效的轮换配置，无法确认值班组"}, nil
		default:
			return nil, nil, err
		}
	}
	if !decision.Accepted {
		return nil, decision, nil
	}

	sess := &domain.DutySession{
		TeamID:    team.ID,
		TeamName:  team.Name,
		UserID:    user.ID,
		Username:  user.Username,
		StartedAt: h.clock.Now(),
	}

	switch {
	case mode == loginModeHandover && active != nil && active.TeamID != team.ID:
		err = h.sessions.SetPending(ctx, sess)
	default:
		// 没有人在岗或者是同一组重新登录时直接成为在岗会话
		err = h.sessions.SetActive(ctx, sess)
	}
	if err != nil {
		return nil, nil, err
	}
	return sess, decision, nil
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, user *domain.User) error {
	// 生成 JWT
	expiration := time.Now().Add(time.Duration(h.config.JWT.Expiration) * time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		return err
	}

	// 通过 http-only 的 cookie 返回给客户端
	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    ss,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)
	return nil
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sub, err := strconv.ParseInt(r.Context().Value(SubCtxKey).(string), 10, 64)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.sessions.Clear(r.Context(), sub); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:    tokenCookieName,
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		Path:    "/",
	})

	h.audit(r, &sub, domain.AuditActionLogout, domain.AuditTargetAuth, "", nil)

	h.successResponse(w, r, "登出成功", nil)
}

// CompleteHandover 由接班人或管理员确认交接完成
func (h *Handler) CompleteHandover(w http.ResponseWriter, r *http.Request) {
	sub, err := strconv.ParseInt(r.Context().Value(SubCtxKey).(string), 10, 64)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	role := domain.Role(r.Context().Value(RoleCtxKey).(string))

	pending, err := h.sessions.Pending(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if pending == nil {
		h.errorResponse(w, r, "没有等待接班的会话")
		return
	}
	if pending.UserID != sub && role != domain.RoleAdmin {
		h.errorResponse(w, r, "只有接班人可以完成交接")
		return
	}

	var previousTeam string
	active, err := h.sessions.Active(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if active != nil {
		previousTeam = active.TeamName
	}

	sess, err := h.sessions.CompleteHandover(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoPendingHandover):
			h.errorResponse(w, r, "没有等待接班的会话")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.audit(r, &sub, domain.AuditActionHandoverComplete, domain.AuditTargetSession, strconv.FormatInt(sess.TeamID, 10), map[string]any{
		"previousTeam": previousTeam,
		"newTeam":      sess.TeamName,
	})

	h.successResponse(w, r, "交接完成", sess)
}
