package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

func (h *Handler) GetAllTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.repository.GetAllTeams(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取组列表成功", teams)
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name" validate:"required,max=32"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	team := &domain.Team{Name: req.Name}
	if err := h.repository.CreateTeam(r.Context(), team); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "teams_name_key":
			h.badRequest(w, r, errors.New("组名已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建组成功", team)
}
