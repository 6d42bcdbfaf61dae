package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// BotConfig 机器人配置
type BotConfig struct {
	Token       string `yaml:"token"`
	Workers     int    `yaml:"workers"`
	Currency    string `yaml:"currency"`
	PollTimeout int    `yaml:"poll_timeout"` // 长轮询超时（秒）
	Debug       bool   `yaml:"debug"`
}

// StorageConfig 存储配置，driver 为 sqlite 或 postgres
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"` // sqlite 文件路径
}

// DBConfig 数据库配置（postgres）
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`

	MaxConns  int32         `yaml:"max_conns"`
	MinConns  int32         `yaml:"min_conns"`
	SlowQuery time.Duration `yaml:"slow_query"` // 超过该耗时的查询记为慢查询
}

// DSN builds the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}

// RedisConfig Redis配置，Addr 为空时不启用去重
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	DedupTTL time.Duration `yaml:"dedup_ttl"`
}

// MQConfig 消息队列配置，URL 为空时不发布事件
type MQConfig struct {
	URL string `yaml:"url"`
}

// ServerConfig 运维 HTTP 服务配置
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Storage StorageConfig `yaml:"storage"`
	DB      DBConfig      `yaml:"db"`
	Redis   RedisConfig   `yaml:"redis"`
	MQ      MQConfig      `yaml:"mq"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Default 返回默认配置
func Default() Config {
	return Config{
		Bot: BotConfig{
			Workers:     4,
			Currency:    "RUB",
			PollTimeout: 60,
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   "ledgerbot.db",
		},
		DB: DBConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "ledgerbot",
			Name:      "ledgerbot",
			MaxConns:  10,
			MinConns:  2,
			SlowQuery: 100 * time.Millisecond,
		},
		Redis: RedisConfig{
			DedupTTL: time.Hour,
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.Name == "" {
			return fmt.Errorf("db.host and db.name are required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Bot.Workers <= 0 {
		return fmt.Errorf("bot.workers must be positive, got %d", c.Bot.Workers)
	}
	return nil
}

// OverrideFromEnv 从环境变量覆盖配置
func OverrideFromEnv(cfg *Config) {
	OverrideBotFromEnv(&cfg.Bot)
	OverrideStorageFromEnv(&cfg.Storage)
	OverrideDBFromEnv(&cfg.DB)
	OverrideRedisFromEnv(&cfg.Redis)
	OverrideMQFromEnv(&cfg.MQ)
	OverrideServerFromEnv(&cfg.Server)
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}

// OverrideBotFromEnv 从环境变量覆盖机器人配置
func OverrideBotFromEnv(cfg *BotConfig) {
	if token := os.Getenv("BOT_TOKEN"); token != "" {
		cfg.Token = token
	}
	if workers := os.Getenv("BOT_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			cfg.Workers = w
		}
	}
}

// OverrideStorageFromEnv 从环境变量覆盖存储配置
func OverrideStorageFromEnv(cfg *StorageConfig) {
	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		cfg.Driver = driver
	}
	if path := os.Getenv("STORAGE_PATH"); path != "" {
		cfg.Path = path
	}
}

// OverrideDBFromEnv 从环境变量覆盖数据库配置
func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
}

// OverrideMQFromEnv 从环境变量覆盖MQ配置
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

// OverrideRedisFromEnv 从环境变量覆盖Redis配置
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

// OverrideServerFromEnv 从环境变量覆盖服务器配置
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}
