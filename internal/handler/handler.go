package handler

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/handover"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/reconciler"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/session"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

type Handler struct {
	validate         *validator.Validate
	config           *config.Config
	repository       *repository.Repository
	translator       ut.Translator
	reconcileChannel *amqp.Channel

	civil      shiftclock.CivilClock
	clock      shiftclock.Clock
	calendar   *rotation.Calendar
	guard      *handover.Guard
	sessions   *session.Store
	reconciler *reconciler.Reconciler

	Mux *chi.Mux
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, err
	}
	return validate, trans, nil
}

func NewHandler(cfg *config.Config, repo *repository.Repository, reconcileCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, err
	}

	civil := shiftclock.NewCivilClock(cfg.Shift.UTCOffsetMinutes)
	clock := shiftclock.SystemClock{}
	calendar := rotation.NewCalendar(repo)

	return &Handler{
		validate:         validate,
		config:           cfg,
		repository:       repo,
		translator:       trans,
		reconcileChannel: reconcileCh,

		civil:    civil,
		clock:    clock,
		calendar: calendar,
		guard: handover.NewGuard(calendar, civil, clock,
			handover.WithBypass(cfg.Handover.BypassEnabled),
			handover.WithLogger(slog.Default()),
		),
		sessions:   session.NewStore(rdb, time.Duration(cfg.Redis.OperationExpiration)*time.Second),
		reconciler: reconciler.NewFromConfig(cfg, repo, rdb, slog.Default()),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.Post("/logout", h.Logout)
			r.Post("/handover/complete", h.CompleteHandover)
		})
	})

	// 由外部定时器调用，使用单独的令牌而不是登录态
	h.Mux.Route("/cron", func(r chi.Router) {
		r.Use(h.reconcilerToken)
		r.Get("/check-worklog", h.CheckWorklog)
		r.Post("/check-worklog", h.CheckWorklog)
		r.Post("/check-worklog/enqueue", h.EnqueueCheckWorklog)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).Patch("/", h.UpdateUser)
			})
		})

		r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Get("/audit-logs", h.GetAuditLogs)

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.GetAllTeams)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateTeam)
		})

		r.Route("/rotation", func(r chi.Router) {
			r.Get("/current", h.GetCurrentRotation)
			r.Get("/teams", h.GetRotationTeams)
			r.Get("/shifts", h.GetTeamShifts)
			r.Get("/assignments", h.GetShiftAssignment)
		})

		r.Route("/shift-patterns", func(r chi.Router) {
			r.Get("/", h.GetAllShiftPatternConfigs)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).With(h.myInfo).Post("/", h.CreateShiftPatternConfig)
			r.Get("/active", h.GetActiveShiftPatternConfig)
			r.With(h.shiftPatternConfig).Get("/{id}", h.GetShiftPatternConfig)
		})

		r.Route("/worklogs", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetWorklogs)
			r.Post("/", h.CreateWorklog)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.worklog)
				r.Get("/", h.GetWorklog)
				r.Put("/workers", h.UpdateWorklogWorkers)
				r.Post("/signatures", h.SignWorklog)
				r.Post("/finalize", h.FinalizeWorklog)
			})
		})
	})
}
