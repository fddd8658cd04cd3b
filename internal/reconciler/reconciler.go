// Package reconciler 定期关闭过期的工作日志，并为当前班次补建缺失的工作日志。
//
// 两个步骤相互独立：自动关闭只处理已经存在的记录，不依赖当前的轮换配置；
// 自动补建在找不到配置时跳过并报告。单条记录的失败只会被记录，不会中断整次检查。
package reconciler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/worklog"
)

type Calendar interface {
	TeamOnShift(ctx context.Context, date time.Time, shiftType domain.ShiftType) (domain.ShiftAssignment, error)
}

type TeamRegistry interface {
	// 找不到时返回 domain.ErrTeamNotFound
	GetTeamByName(ctx context.Context, name string) (*domain.Team, error)
}

type WorklogStore interface {
	// 找不到时返回 domain.ErrWorklogNotFound
	FindWorklog(ctx context.Context, date time.Time, shiftType domain.ShiftType, teamID int64) (*domain.Worklog, error)
	// 违反 (date, shift_type, team_id) 唯一约束时返回 domain.ErrDuplicateCreate
	InsertWorklogIfAbsent(ctx context.Context, w *domain.Worklog) error
	// 记录的状态或版本号已变化时返回 domain.ErrConcurrentModification
	ConditionalUpdateWorklog(ctx context.Context, id int64, expectedStatus domain.WorklogStatus, expectedVersion int32, patch domain.WorklogPatch) error
	ListDraftWorklogs(ctx context.Context, from, to time.Time, shiftType domain.ShiftType) ([]*domain.Worklog, error)
}

// Locker 防止两次检查同时进行，拿不到锁时本次检查直接跳过
type Locker interface {
	TryLock(ctx context.Context) (unlock func(context.Context) error, acquired bool, err error)
}

type Reconciler struct {
	calendar Calendar
	teams    TeamRegistry
	store    WorklogStore
	civil    shiftclock.CivilClock
	clock    shiftclock.Clock
	logger   *slog.Logger

	graceMinutes int
	lookbackDays int
	locker       Locker
}

type Option func(*Reconciler)

func WithGraceMinutes(minutes int) Option {
	return func(r *Reconciler) {
		r.graceMinutes = minutes
	}
}

// WithLookbackDays 让自动关闭额外检查更早的若干个逻辑日期
func WithLookbackDays(days int) Option {
	return func(r *Reconciler) {
		r.lookbackDays = days
	}
}

func WithLocker(locker Locker) Option {
	return func(r *Reconciler) {
		r.locker = locker
	}
}

func New(calendar Calendar, teams TeamRegistry, store WorklogStore, civil shiftclock.CivilClock, clock shiftclock.Clock, logger *slog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		calendar:     calendar,
		teams:        teams,
		store:        store,
		civil:        civil,
		clock:        clock,
		logger:       logger,
		graceMinutes: 10,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sweep 依次执行自动关闭和自动补建，总是返回报告而不是错误
func (r *Reconciler) Sweep(ctx context.Context) *Report {
	now := r.clock.Now()
	report := &Report{
		StartedAt: now,
		Closed:    []int64{},
		Conflicts: []int64{},
		Failures:  []Failure{},
	}

	if r.locker != nil {
		unlock, acquired, err := r.locker.TryLock(ctx)
		switch {
		case err != nil:
			// 锁只用来减少重复工作，拿锁失败时照常执行
			r.logger.Warn("获取检查锁失败", slog.String("error", err.Error()))
		case !acquired:
			r.logger.Info("已有检查正在进行，本次跳过")
			report.LockSkipped = true
			report.Create = CreateResult{Outcome: OutcomeSkipped, Reason: "已有检查正在进行"}
			report.FinishedAt = r.clock.Now()
			return report
		default:
			defer func() {
				if err := unlock(context.WithoutCancel(ctx)); err != nil {
					r.logger.Warn("释放检查锁失败", slog.String("error", err.Error()))
				}
			}()
		}
	}

	r.autoClose(ctx, now, report)
	r.autoCreate(ctx, now, report)

	report.FinishedAt = r.clock.Now()
	r.logger.Info("工作日志检查完成",
		slog.Int("closed", len(report.Closed)),
		slog.Int("conflicts", len(report.Conflicts)),
		slog.Int("failures", len(report.Failures)),
		slog.String("create", string(report.Create.Outcome)),
	)
	return report
}

func (r *Reconciler) autoClose(ctx context.Context, now time.Time, report *Report) {
	today := r.civil.CivilDate(now)
	minute := r.civil.MinuteOfDay(now)

	for _, shiftType := range []domain.ShiftType{domain.ShiftTypeDay, domain.ShiftTypeNight} {
		latest := shiftclock.LatestClosableDate(today, minute, shiftType, r.graceMinutes)
		from := shiftclock.AddDays(latest, -r.lookbackDays)

		logs, err := r.store.ListDraftWorklogs(ctx, from, latest, shiftType)
		if err != nil {
			r.logger.Error("查询待关闭的工作日志失败", slog.String("shiftType", string(shiftType)), slog.String("error", err.Error()))
			report.Failures = append(report.Failures, Failure{Stage: StageAutoClose, Error: err.Error()})
			continue
		}

		for _, w := range logs {
			patch, ok := worklog.AutoClose(w, r.graceMinutes, now)
			if !ok {
				continue
			}

			err := r.store.ConditionalUpdateWorklog(ctx, w.ID, w.Status, w.Version, patch)
			switch {
			case err == nil:
				report.Closed = append(report.Closed, w.ID)
				r.logger.Info("工作日志已自动关闭", slog.Int64("id", w.ID), slog.String("date", shiftclock.FormatDate(w.Date)), slog.String("shiftType", string(w.ShiftType)))
			case errors.Is(err, domain.ErrConcurrentModification):
				// 其他操作已经处理过这条记录
				report.Conflicts = append(report.Conflicts, w.ID)
			default:
				r.logger.Error("自动关闭工作日志失败", slog.Int64("id", w.ID), slog.String("error", err.Error()))
				report.Failures = append(report.Failures, Failure{Stage: StageAutoClose, WorklogID: w.ID, Error: err.Error()})
			}
		}
	}
}

func (r *Reconciler) autoCreate(ctx context.Context, now time.Time, report *Report) {
	date, shiftType := r.civil.LogicalShiftAt(now)
	result := &report.Create
	result.Date = date
	result.ShiftType = shiftType

	assignment, err := r.calendar.TeamOnShift(ctx, date, shiftType)
	if err != nil {
		if errors.Is(err, domain.ErrConfigurationMissing) {
			r.logger.Warn("没有生效的轮换配置，跳过自动创建", slog.String("date", shiftclock.FormatDate(date)))
			result.Outcome = OutcomeSkipped
		} else {
			r.logger.Error("计算值班组失败", slog.String("error", err.Error()))
			result.Outcome = OutcomeFailed
			report.Failures = append(report.Failures, Failure{Stage: StageAutoCreate, Error: err.Error()})
		}
		result.Reason = err.Error()
		return
	}
	result.Team = assignment.Team

	team, err := r.teams.GetTeamByName(ctx, assignment.Team)
	if err != nil {
		r.logger.Error("找不到值班组", slog.String("team", assignment.Team), slog.String("error", err.Error()))
		result.Outcome = OutcomeFailed
		result.Reason = err.Error()
		report.Failures = append(report.Failures, Failure{Stage: StageAutoCreate, Error: err.Error()})
		return
	}

	existing, err := r.store.FindWorklog(ctx, date, shiftType, team.ID)
	switch {
	case err == nil:
		result.Outcome = OutcomeExists
		result.WorklogID = existing.ID
		return
	case !errors.Is(err, domain.ErrWorklogNotFound):
		r.createFailed(report, err)
		return
	}

	w := worklog.NewDraft(date, shiftType, team, true)
	err = r.store.InsertWorklogIfAbsent(ctx, w)
	switch {
	case err == nil:
		r.logger.Info("已自动创建工作日志", slog.Int64("id", w.ID), slog.String("date", shiftclock.FormatDate(date)), slog.String("shiftType", string(shiftType)), slog.String("team", team.Name))
		result.Outcome = OutcomeCreated
		result.WorklogID = w.ID
	case errors.Is(err, domain.ErrDuplicateCreate):
		// 并发的检查先插入了，按已存在处理
		existing, err := r.store.FindWorklog(ctx, date, shiftType, team.ID)
		if err != nil {
			r.createFailed(report, err)
			return
		}
		result.Outcome = OutcomeExists
		result.WorklogID = existing.ID
	default:
		r.createFailed(report, err)
	}
}

func (r *Reconciler) createFailed(report *Report, err error) {
	r.logger.Error("自动创建工作日志失败", slog.String("error", err.Error()))
	report.Create.Outcome = OutcomeFailed
	report.Create.Reason = err.Error()
	report.Failures = append(report.Failures, Failure{Stage: StageAutoCreate, Error: err.Error()})
}
