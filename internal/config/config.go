package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Prompt    PromptConfig    `mapstructure:"prompt"`
	Redis     RedisConfig
	Storage   StorageConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Pairing   PairingConfig   `mapstructure:"pairing"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

// SupabaseConfig 托管后端（GoTrue 认证 + PostgREST 数据表）
type SupabaseConfig struct {
	ProjectURL string `mapstructure:"project_url"`
	AnonKey    string `mapstructure:"anon_key"`
	ServiceKey string `mapstructure:"service_key"`
	JWTSecret  string `mapstructure:"jwt_secret"`
}

// PromptConfig AI写作灵感接口（OpenAI兼容）
type PromptConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// SyncConfig 本地状态与远端的同步节奏
type SyncConfig struct {
	FlushIntervalSeconds int `mapstructure:"flush_interval_seconds"`
	LeaderboardPageSize  int `mapstructure:"leaderboard_page_size"`
}

// FlushInterval 写作内容的定时落库间隔，默认30秒
func (c SyncConfig) FlushInterval() time.Duration {
	if c.FlushIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.FlushIntervalSeconds) * time.Second
}

// PairingConfig 网页伴侣编辑器配对
type PairingConfig struct {
	CodeTTLMinutes    int `mapstructure:"code_ttl_minutes"`
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes"`
	MaxActiveSessions int `mapstructure:"max_active_sessions"`
}

func (c PairingConfig) CodeTTL() time.Duration {
	if c.CodeTTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.CodeTTLMinutes) * time.Minute
}

func (c PairingConfig) SessionTTL() time.Duration {
	if c.SessionTTLMinutes <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// MaxSessions 单个用户同时有效的编辑器会话上限，默认3
func (c PairingConfig) MaxSessions() int {
	if c.MaxActiveSessions <= 0 {
		return 3
	}
	return c.MaxActiveSessions
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("WRITEQUEST")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Supabase
	viper.BindEnv("supabase.project_url", "SUPABASE_URL")
	viper.BindEnv("supabase.anon_key", "SUPABASE_ANON_KEY")
	viper.BindEnv("supabase.service_key", "SUPABASE_SERVICE_KEY")
	viper.BindEnv("supabase.jwt_secret", "SUPABASE_JWT_SECRET")

	// Prompt
	viper.BindEnv("prompt.base_url", "PROMPT_BASE_URL")
	viper.BindEnv("prompt.api_key", "PROMPT_API_KEY")
	viper.BindEnv("prompt.model", "PROMPT_MODEL")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Supabase.ProjectURL == "" {
		return nil, fmt.Errorf("supabase project URL is required")
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
