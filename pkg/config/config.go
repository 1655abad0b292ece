package config

import (
	"os"
	"strconv"
	"time"
)

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Mode            string        `yaml:"mode"` // gin mode: debug, release, test
}

// RedisConfig Redis配置，Addr 为空时使用内存去重
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MQConfig 消息队列配置，URL 为空时不发布事件
type MQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
	// PublishTimeout bounds each publish; it runs while habit changes wait.
	PublishTimeout time.Duration `yaml:"publish_timeout"`
}

// FormConfig 表单令牌配置
type FormConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// DedupConfig 表单重复提交窗口
type DedupConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	MQ     MQConfig     `yaml:"mq"`
	Form   FormConfig   `yaml:"form"`
	Dedup  DedupConfig  `yaml:"dedup"`
}

// Default returns the configuration used when no config files exist.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			Mode:            "release",
		},
		MQ:    MQConfig{Exchange: "habit.events", PublishTimeout: 500 * time.Millisecond},
		Form:  FormConfig{TokenTTL: 12 * time.Hour},
		Dedup: DedupConfig{TTL: 10 * time.Minute},
	}
}

// OverrideServerFromEnv 从环境变量覆盖服务器配置
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Mode = mode
	}
	if raw := os.Getenv("SHUTDOWN_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.ShutdownTimeout = d
		}
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
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.DB = n
		}
	}
}

// OverrideMQFromEnv 从环境变量覆盖MQ配置
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
	if exchange := os.Getenv("MQ_EXCHANGE"); exchange != "" {
		cfg.Exchange = exchange
	}
	if raw := os.Getenv("MQ_PUBLISH_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.PublishTimeout = d
		}
	}
}

// OverrideFormFromEnv 从环境变量覆盖表单令牌密钥
func OverrideFormFromEnv(cfg *FormConfig) {
	if secret := os.Getenv("FORM_SECRET"); secret != "" {
		cfg.Secret = secret
	}
}
