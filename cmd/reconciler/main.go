package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/reconciler"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", slog.String("error", err.Error()))
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer pingCancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("无法连接到数据库", slog.String("error", err.Error()))
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 连接 redis，连不上时不加锁继续运行
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer rdb.Close()

	redisCtx, redisCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
	defer redisCancel()
	if err := rdb.Ping(redisCtx).Err(); err != nil {
		logger.Warn("无法连接到 redis，将不使用分布式锁", slog.String("error", err.Error()))
		rdb = nil
	}

	rec := reconciler.NewFromConfig(cfg, repo, rdb, logger)

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// 创建通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	// 声明队列
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.ReconcileQueue, // 队列名称
		true,                        // 是否持久化
		false,                       // 是否自动删除
		false,                       // 是否独占
		false,                       // 是否不等待
		nil,                         // 额外参数
	)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	// 一次只处理一个请求，多个实例之间靠锁和条件更新保证正确
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error("无法设置预取数量", slog.String("error", err.Error()))
		return
	}

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 消费消息
	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，由 RabbitMQ 自动分配
		false,  // 手动确认
		false,  // 是否独占队列
		false,  // RabbitMQ 不支持 no-local
		false,  // 是否不等待
		nil,    // 额外参数
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("消息通道已关闭")
					return
				}

				req := domain.ReconcileRequest{}
				if err := json.Unmarshal(msg.Body, &req); err != nil {
					logger.Error("检查请求反序列化失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				// 过期的请求没有意义，下一次定时请求会重新检查
				if !req.RequestedAt.IsZero() && time.Since(req.RequestedAt) > time.Duration(cfg.Reconciler.LockTTL)*time.Second {
					logger.Info("丢弃过期的检查请求", slog.Time("requestedAt", req.RequestedAt))
					_ = msg.Ack(false)
					continue
				}

				report := rec.Sweep(ctx)
				logger.Info("检查工作日志完成",
					slog.String("source", req.Source),
					slog.Bool("lockSkipped", report.LockSkipped),
					slog.Int("closed", len(report.Closed)),
					slog.Int("conflicts", len(report.Conflicts)),
					slog.Int("failures", len(report.Failures)),
					slog.String("create", string(report.Create.Outcome)),
				)

				// 单条记录失败已经记录在报告里，不重新入队
				_ = msg.Ack(false)
			}
		}
	}()

	// 等待 CTRL+C 信号
	logger.Info("等待检查请求...（按 CTRL+C 退出）")
	<-sigChan

	// 优雅退出
	slog.Info("正在关闭 reconciler worker...")
	cancel()
	wg.Wait()
	slog.Info("reconciler worker 已成功关闭")
}
