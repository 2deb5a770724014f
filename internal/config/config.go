// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	DBDriver    string
	DBPath      string
	DatabaseURL string

	APIBaseURL      string
	WebBaseURL      string
	ProxyURLs       []string
	UserAgent       string
	MaxRetries      int
	RequestTimeout  time.Duration
	PlatformRPS     float64
	SubCommentDelay time.Duration
	SignerURL       string

	SessionPolicy       string
	MaxConcurrentPasses int
	PassTimeout         time.Duration
	MonitorTimeout      time.Duration

	TelegramBotToken string
	TelegramChatID   int64

	LogLevel  string
	LogFormat string
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	proxyURLs, err := parseProxyURLs(os.Getenv("PROXY_URLS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 35*time.Minute),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBPath:      getEnv("DB_PATH", "data/monitor.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		APIBaseURL:      strings.TrimRight(getEnv("API_BASE_URL", "https://edith.xiaohongshu.com"), "/"),
		WebBaseURL:      strings.TrimRight(getEnv("WEB_BASE_URL", "https://www.xiaohongshu.com"), "/"),
		ProxyURLs:       proxyURLs,
		UserAgent:       getEnv("USER_AGENT", ""),
		MaxRetries:      getEnvInt("PROXY_MAX_RETRIES", 3),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		PlatformRPS:     getEnvFloat("PLATFORM_RPS", 2),
		SubCommentDelay: getEnvDuration("SUB_COMMENT_DELAY", 2*time.Second),
		SignerURL:       os.Getenv("SIGNER_URL"),

		SessionPolicy:       strings.ToLower(getEnv("SESSION_POLICY", "random")),
		MaxConcurrentPasses: getEnvInt("MAX_CONCURRENT_PASSES", 1),
		PassTimeout:         getEnvDuration("PASS_TIMEOUT", 5*time.Minute),
		MonitorTimeout:      getEnvDuration("MONITOR_TIMEOUT", 30*time.Minute),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   getEnvInt64("TELEGRAM_CHAT_ID", 0),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER %q, must be %s or %s", c.DBDriver, DriverSQLite, DriverPostgres)
	}

	switch c.SessionPolicy {
	case "random", "lru":
	default:
		return fmt.Errorf("invalid SESSION_POLICY %q, must be random or lru", c.SessionPolicy)
	}

	if c.MaxConcurrentPasses < 1 {
		return fmt.Errorf("MAX_CONCURRENT_PASSES must be at least 1, got %d", c.MaxConcurrentPasses)
	}
	if c.MonitorTimeout < c.PassTimeout {
		return fmt.Errorf("MONITOR_TIMEOUT (%s) must not be shorter than PASS_TIMEOUT (%s)", c.MonitorTimeout, c.PassTimeout)
	}
	if c.PlatformRPS <= 0 {
		return fmt.Errorf("PLATFORM_RPS must be positive, got %v", c.PlatformRPS)
	}
	if c.SignerURL != "" {
		if _, err := url.ParseRequestURI(c.SignerURL); err != nil {
			return fmt.Errorf("invalid SIGNER_URL: %w", err)
		}
	}

	return nil
}

// TelegramEnabled reports whether new-comment notifications should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func parseProxyURLs(raw string) ([]string, error) {
	var proxyURLs []string

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	for _, proxy := range strings.Split(raw, ",") {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}

		if !strings.HasPrefix(proxy, "http://") && !strings.HasPrefix(proxy, "https://") && !strings.HasPrefix(proxy, "socks5://") {
			return nil, fmt.Errorf("invalid proxy URL format, must start with http://, https:// or socks5://: %s", proxy)
		}

		if _, err := url.Parse(proxy); err != nil {
			return nil, fmt.Errorf("invalid proxy URL %s: %w", proxy, err)
		}

		proxyURLs = append(proxyURLs, proxy)
	}

	return proxyURLs, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
