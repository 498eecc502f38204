package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/scheduler"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"120"` // 自动排程可能耗时较长
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
		FullName string `env:"FULL_NAME" envDefault:"赛事管理员"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // 单位为小时，即 14 天
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD,required"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN,required"`
		SMTP       struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD,required"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	OTP struct {
		Expiration int `env:"EXPIRATION" envDefault:"900"` // 15 分钟
	} `envPrefix:"OTP_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
	Optimizer OptimizerConfig `envPrefix:"OPTIMIZER_"`
}

// OptimizerConfig 是自动排程的默认参数，请求中给出的参数会覆盖这里的值
type OptimizerConfig struct {
	CloneRate          float64 `env:"CLONE_RATE" envDefault:"0.1"`
	CrossoverRate      float64 `env:"CROSSOVER_RATE" envDefault:"0.8"`
	PopulationSize     int     `env:"POPULATION_SIZE" envDefault:"300"`
	NewPopulationSize  int     `env:"NEW_POPULATION_SIZE" envDefault:"1000"`
	MaxGenerations     int     `env:"MAX_GENERATIONS" envDefault:"1000"`
	MaxStagnation      int     `env:"MAX_STAGNATION" envDefault:"100"`
	MutationChanges    int     `env:"MUTATION_CHANGES" envDefault:"2"`
	Workers            int     `env:"WORKERS" envDefault:"4"`
	RestFairnessWeight float64 `env:"REST_FAIRNESS_WEIGHT" envDefault:"0"`
	Timeout            int     `env:"TIMEOUT" envDefault:"100"`          // 单次排程的最长时间，应小于服务器的写超时，单位为秒
	LockExpiration     int     `env:"LOCK_EXPIRATION" envDefault:"300"` // 同一赛事同时只能有一个排程任务，单位为秒
}

func (c OptimizerConfig) Parameters() scheduler.Parameters {
	return scheduler.Parameters{
		CloneRate:         c.CloneRate,
		CrossoverRate:     c.CrossoverRate,
		PopulationSize:    c.PopulationSize,
		NewPopulationSize: c.NewPopulationSize,
		MaxGenerations:    c.MaxGenerations,
		MaxStagnation:     c.MaxStagnation,
		MutationChanges:   c.MutationChanges,
		Workers:           c.Workers,
	}
}

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

	return cfg, nil
}

// LoadOptimizerConfig 只读取排程参数，供不需要数据库等配置的命令行工具使用
func LoadOptimizerConfig() (*OptimizerConfig, error) {
	cfg := &OptimizerConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "OPTIMIZER_"}); err != nil {
		return nil, err
	}
	return cfg, nil
}
