package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"管理员"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // 小时，14 天
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD" envDefault:"password"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
		ReconcileQueue string `env:"RECONCILE_QUEUE" envDefault:"reconcile_queue"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD,required"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	Shift struct {
		UTCOffsetMinutes  int `env:"UTC_OFFSET_MINUTES" envDefault:"540"` // KST
		CloseGraceMinutes int `env:"CLOSE_GRACE_MINUTES" envDefault:"10"`
	} `envPrefix:"SHIFT_"`
	Handover struct {
		BypassEnabled bool `env:"BYPASS_ENABLED" envDefault:"false"`
	} `envPrefix:"HANDOVER_"`
	Reconciler struct {
		Token             string `env:"TOKEN,required"`
		LockTTL           int    `env:"LOCK_TTL" envDefault:"120"`
		CloseLookbackDays int    `env:"CLOSE_LOOKBACK_DAYS" envDefault:"0"`
	} `envPrefix:"RECONCILER_"`
}

var ErrBypassInProduction = errors.New("生产环境禁止开启交接班校验跳过开关")

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Handover.BypassEnabled && cfg.Environment == "production" {
		return ErrBypassInProduction
	}
	if cfg.Reconciler.CloseLookbackDays < 0 {
		return errors.New("RECONCILER_CLOSE_LOOKBACK_DAYS 不能为负数")
	}
	if cfg.Shift.CloseGraceMinutes < 0 {
		return errors.New("SHIFT_CLOSE_GRACE_MINUTES 不能为负数")
	}
	return nil
}
