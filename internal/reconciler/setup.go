package reconciler

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/lock"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

const lockKey = "lock:check_worklog"

// NewFromConfig 组装 API 与后台消费者共用的 Reconciler，rdb 为空时不加锁
func NewFromConfig(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, logger *slog.Logger) *Reconciler {
	opts := []Option{
		WithGraceMinutes(cfg.Shift.CloseGraceMinutes),
		WithLookbackDays(cfg.Reconciler.CloseLookbackDays),
	}
	if rdb != nil {
		opts = append(opts, WithLocker(lock.NewRedisLock(rdb, lockKey, time.Duration(cfg.Reconciler.LockTTL)*time.Second)))
	}

	return New(
		rotation.NewCalendar(repo),
		repo,
		repo,
		shiftclock.NewCivilClock(cfg.Shift.UTCOffsetMinutes),
		shiftclock.SystemClock{},
		logger,
		opts...,
	)
}
