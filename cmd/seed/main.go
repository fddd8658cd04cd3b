package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/seed"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var teams string
	var rosterPath string
	var validFrom string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机组员并发布默认轮换, 2: 按名单文件导入)")
	flag.IntVar(&n, "n", 4, "每个组的随机组员数量")
	flag.StringVar(&teams, "teams", strings.Join(seed.DefaultTeams, ","), "逗号分隔的组名")
	flag.StringVar(&rosterPath, "roster", "./roster.csv", "名单文件路径")
	flag.StringVar(&validFrom, "valid-from", "", "轮换配置的生效日期 (YYYY-MM-DD)，默认为今天")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	from := shiftclock.NewCivilClock(cfg.Shift.UTCOffsetMinutes).CivilDate(time.Now())
	if validFrom != "" {
		if from, err = shiftclock.ParseDate(validFrom); err != nil {
			logger.Error("生效日期格式错误", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	if err := repository.ApplyMigrations(context.Background(), dbpool); err != nil {
		logger.Error("无法执行数据库迁移", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的组员数量")
			return
		}
		if err := seed.SeedRandom(context.Background(), repo, strings.Split(teams, ","), n, cfg.Seed.User.Password, from); err != nil {
			slog.Error("插入随机数据失败", slog.String("error", err.Error()))
			return
		}
		slog.Info("插入随机数据成功")
	case 2:
		if err := seed.SeedRoster(context.Background(), repo, rosterPath, cfg.Seed.User.Password, from); err != nil {
			slog.Error("导入名单失败", slog.String("error", err.Error()))
			return
		}
		slog.Info("导入名单成功")
	default:
		slog.Error("指定的操作非法")
	}
}
