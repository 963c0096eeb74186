package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string         `mapstructure:"env"`
	Server   ServerConfig   `mapstructure:"http_server"`
	Database DatabaseConfig `mapstructure:"database"`
	Security SecurityConfig `mapstructure:"security"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	CookieSecret  string        `mapstructure:"cookie_secret"`
	CookieName    string        `mapstructure:"cookie_name"`
	CookieDomain  string        `mapstructure:"cookie_domain"`
	TokenDuration time.Duration `mapstructure:"token_duration"`
	BCryptCost    int           `mapstructure:"bcrypt_cost"`
}

type OpenAIConfig struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	Model           string `mapstructure:"model"`
	MaxContextChars int    `mapstructure:"max_context_chars"`
}

type StorageConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PublicURL     string        `mapstructure:"public_url"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

type RedisConfig struct {
	Addr      string          `mapstructure:"addr"`
	Password  string          `mapstructure:"password"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type UploadsConfig struct {
	Dir       string `mapstructure:"dir"`
	MaxSizeMB int64  `mapstructure:"max_size_mb"`
}

func (u UploadsConfig) MaxBytes() int64 {
	return u.MaxSizeMB << 20
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	DefaultCookieName    = "auth_token"
	DefaultTokenDuration = 7 * 24 * time.Hour
	DefaultModel         = "gpt-4.1-mini-2025-04-14"
	DefaultContextChars  = 15000
	DefaultUploadsDir    = "uploads"
)

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ApplyDefaults fills the optional knobs a config file may leave out.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Security.CookieName == "" {
		c.Security.CookieName = DefaultCookieName
	}
	if c.Security.TokenDuration <= 0 {
		c.Security.TokenDuration = DefaultTokenDuration
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 10
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = DefaultModel
	}
	if c.OpenAI.MaxContextChars <= 0 {
		c.OpenAI.MaxContextChars = DefaultContextChars
	}
	if c.Storage.PresignExpiry <= 0 {
		c.Storage.PresignExpiry = 15 * time.Minute
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = DefaultUploadsDir
	}
	if c.Uploads.MaxSizeMB <= 0 {
		c.Uploads.MaxSizeMB = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// ----------------- ENV LOADING -----------------

func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 5000),
			BaseURL:           getEnv("BASE_URL", ""),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),
			ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 120*time.Second),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			Source:          getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Security: SecurityConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			CookieSecret:  getEnv("COOKIE_SECRET", ""),
			CookieName:    getEnv("COOKIE_NAME", DefaultCookieName),
			CookieDomain:  getEnv("COOKIE_DOMAIN", ""),
			TokenDuration: getEnvAsDuration("TOKEN_DURATION", DefaultTokenDuration),
			BCryptCost:    getEnvAsInt("BCRYPT_COST", 10),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			BaseURL:         getEnv("OPENAI_BASE_URL", ""),
			Model:           getEnv("OPENAI_MODEL", DefaultModel),
			MaxContextChars: getEnvAsInt("MAX_CONTEXT_CHARS", DefaultContextChars),
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:     getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:     getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:        getEnv("STORAGE_BUCKET", "juris-ia"),
			UseSSL:        getEnv("STORAGE_USE_SSL", "false") == "true",
			PublicURL:     getEnv("STORAGE_PUBLIC_URL", ""),
			PresignExpiry: getEnvAsDuration("STORAGE_PRESIGN_EXPIRY", 15*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			RateLimit: RateLimitConfig{
				Requests: getEnvAsInt("RATE_LIMIT_REQUESTS", 10),
				Window:   getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
			},
		},
		Uploads: UploadsConfig{
			Dir:       getEnv("UPLOADS_DIR", DefaultUploadsDir),
			MaxSizeMB: int64(getEnvAsInt("UPLOADS_MAX_SIZE_MB", 10)),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.OpenAI.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("openai config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Redis.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("redis config: %v", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	for _, origin := range c.Origins() {
		if origin == "*" {
			return errors.New("allowed_origins cannot contain * since the session cookie is sent with credentials")
		}
		if _, err := url.ParseRequestURI(origin); err != nil {
			return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt secret must be at least 32 characters")
	}
	if len(c.CookieSecret) < 32 {
		return errors.New("cookie secret must be at least 32 characters")
	}
	if c.BCryptCost < 10 || c.BCryptCost > 15 {
		return fmt.Errorf("bcrypt cost %d out of range [10, 15]", c.BCryptCost)
	}
	return nil
}

func (c *OpenAIConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("api_key is required")
	}
	if c.BaseURL != "" {
		if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
			return fmt.Errorf("invalid base_url: %w", err)
		}
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if c.Bucket == "" {
		return errors.New("bucket is required")
	}
	if c.PublicURL == "" {
		return errors.New("public_url is required")
	}
	if _, err := url.ParseRequestURI(c.PublicURL); err != nil {
		return fmt.Errorf("invalid public_url: %w", err)
	}
	return nil
}

func (c *RedisConfig) Validate() error {
	if c.Addr == "" {
		return nil
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window < time.Millisecond {
		return errors.New("rate_limit requires positive requests and a window of at least 1ms")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level %q", c.Level)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}
