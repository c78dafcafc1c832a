package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Fixtures FixturesConfig `yaml:"fixtures"`
	Legacy   LegacyConfig   `yaml:"legacy"`
	Limits   LimitsConfig   `yaml:"limits"`
	Log      LogConfig      `yaml:"log"`
	Mock     MockConfig     `yaml:"mock"`
}

type ServerConfig struct {
	Addr        string     `yaml:"addr"`
	BodyLimitMB int        `yaml:"bodyLimitMB"`
	Cors        CorsConfig `yaml:"cors"`
}

type CorsConfig struct {
	AllowOrigins     []string `yaml:"allowOrigins"`
	AllowCredentials bool     `yaml:"allowCredentials"`
	AllowHeaders     []string `yaml:"allowHeaders"`
	AllowMethods     []string `yaml:"allowMethods"`
	ExposeHeaders    []string `yaml:"exposeHeaders"`
	MaxAgeSeconds    int      `yaml:"maxAgeSeconds"`
}

type StorageConfig struct {
	// SQLitePath 为空或 ":memory:" 时数据只保存在内存中，重启即丢失。
	SQLitePath string `yaml:"sqlitePath"`
}

type FixturesConfig struct {
	// Dir 覆盖内置的种子数据目录（同名 JSON 文件）。
	Dir string `yaml:"dir"`
}

type LegacyConfig struct {
	BaseURL   string         `yaml:"baseURL"`
	TimeoutMs int            `yaml:"timeoutMs"`
	Retry     LegacyRetryCfg `yaml:"retry"`
	// 每个浏览器一个上游 cookie jar，闲置超时或超出上限时回收最久未用的。
	SessionIdleMinutes int `yaml:"sessionIdleMinutes"`
	MaxSessions        int `yaml:"maxSessions"`
}

type LegacyRetryCfg struct {
	Count     int `yaml:"count"`
	WaitMs    int `yaml:"waitMs"`
	MaxWaitMs int `yaml:"maxWaitMs"`
}

type LimitsConfig struct {
	// QPS <= 0 disables rate limiting.
	QPS   float64 `yaml:"qps"`
	Burst int     `yaml:"burst"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	BusSize    int    `yaml:"busSize"`
}

type MockConfig struct {
	SMSCode             string  `yaml:"smsCode"`
	ExtensionHourlyRate float64 `yaml:"extensionHourlyRate"`
}

func (c LegacyConfig) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c LegacyConfig) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

func (c LegacyRetryCfg) Wait() time.Duration {
	if c.WaitMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(c.WaitMs) * time.Millisecond
}

func (c LegacyRetryCfg) MaxWait() time.Duration {
	if c.MaxWaitMs <= 0 {
		return 1200 * time.Millisecond
	}
	return time.Duration(c.MaxWaitMs) * time.Millisecond
}

func (c ServerConfig) BodyLimitBytes() int64 {
	return int64(c.BodyLimitMB) << 20
}

// envOverrides are applied on top of the YAML file.
type envOverrides struct {
	Addr          string   `env:"MOCK_ADDR"`
	SQLitePath    string   `env:"MOCK_SQLITE_PATH"`
	FixturesDir   string   `env:"MOCK_FIXTURES_DIR"`
	LegacyBaseURL string   `env:"MOCK_LEGACY_BASE_URL"`
	LogLevel      string   `env:"MOCK_LOG_LEVEL"`
	LogFile       string   `env:"MOCK_LOG_FILE"`
	CorsOrigins   []string `env:"MOCK_CORS_ORIGINS" envSeparator:","`
	QPS           string   `env:"MOCK_QPS"`
}

// Load reads the YAML config at path, then applies .env and MOCK_* overrides.
// A missing file is not an error: the defaults describe a complete local setup.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(ov); err != nil {
		return Config{}, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(ov envOverrides) error {
	if ov.Addr != "" {
		c.Server.Addr = ov.Addr
	}
	if ov.SQLitePath != "" {
		c.Storage.SQLitePath = ov.SQLitePath
	}
	if ov.FixturesDir != "" {
		c.Fixtures.Dir = ov.FixturesDir
	}
	if ov.LegacyBaseURL != "" {
		c.Legacy.BaseURL = ov.LegacyBaseURL
	}
	if ov.LogLevel != "" {
		c.Log.Level = ov.LogLevel
	}
	if ov.LogFile != "" {
		c.Log.File = ov.LogFile
	}
	if len(ov.CorsOrigins) > 0 {
		c.Server.Cors.AllowOrigins = ov.CorsOrigins
	}
	if ov.QPS != "" {
		qps, err := strconv.ParseFloat(strings.TrimSpace(ov.QPS), 64)
		if err != nil {
			return fmt.Errorf("MOCK_QPS: %w", err)
		}
		c.Limits.QPS = qps
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":6009"
	}
	if c.Server.BodyLimitMB <= 0 {
		c.Server.BodyLimitMB = 50
	}
	if len(c.Server.Cors.AllowOrigins) == 0 {
		c.Server.Cors.AllowOrigins = []string{"*"}
	}
	if len(c.Server.Cors.AllowHeaders) == 0 {
		c.Server.Cors.AllowHeaders = []string{"Content-Type", "Authorization", "X-Request-Id", "token", "x-token"}
	}
	if len(c.Server.Cors.AllowMethods) == 0 {
		c.Server.Cors.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(c.Server.Cors.ExposeHeaders) == 0 {
		c.Server.Cors.ExposeHeaders = []string{"X-Request-Id", "Retry-After"}
	}
	if c.Server.Cors.MaxAgeSeconds <= 0 {
		c.Server.Cors.MaxAgeSeconds = 600
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = ":memory:"
	}
	if c.Limits.QPS > 0 && c.Limits.Burst <= 0 {
		c.Limits.Burst = int(c.Limits.QPS) + 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 20
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.BusSize <= 0 {
		c.Log.BusSize = 200
	}
	if c.Mock.SMSCode == "" {
		c.Mock.SMSCode = "123456"
	}
	if c.Mock.ExtensionHourlyRate <= 0 {
		c.Mock.ExtensionHourlyRate = 45
	}
	if c.Legacy.SessionIdleMinutes <= 0 {
		c.Legacy.SessionIdleMinutes = 30
	}
	if c.Legacy.MaxSessions <= 0 {
		c.Legacy.MaxSessions = 2000
	}
	if c.Legacy.Retry.Count < 0 {
		c.Legacy.Retry.Count = 0
	}
	c.Legacy.BaseURL = strings.TrimSpace(c.Legacy.BaseURL)
}

func (c Config) validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// Default returns the configuration used when no file or environment is present.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}
