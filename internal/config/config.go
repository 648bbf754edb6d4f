package config

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "CRIME_SCANNER_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	storageDriverEnv  = "STORAGE_DRIVER"
	redisAddrEnv      = "REDIS_ADDR"
	redisPasswordEnv  = "REDIS_PASSWORD"
	httpAddrEnv       = "HTTP_ADDR"
	logLevelEnv       = "LOG_LEVEL"
	chatGPTAPIKeyEnv  = "CHATGPT_API_KEY"
	chatGPTModelEnv   = "CHATGPT_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

//go:embed sources.yaml
var defaultSourcesYAML []byte

// Config holds high-level settings required across the application.
type Config struct {
	HTTP          HTTPConfig         `yaml:"http"`
	Storage       StorageConfig      `yaml:"storage"`
	Redis         RedisConfig        `yaml:"redis"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Fetcher       FetcherConfig      `yaml:"fetcher"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Classifier    ClassifierConfig   `yaml:"classifier"`
	ChatGPT       ChatGPTConfig      `yaml:"chatgpt"`
	ML            MLConfig           `yaml:"ml"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
	Sources       []SourceConfig     `yaml:"sources"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// StorageConfig selects the store backend. DSN is used by postgres only.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// RedisConfig enables the shared sweep lock when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockKey  string        `yaml:"lockKey"`
	LockTTL  time.Duration `yaml:"lockTTL"`
}

// SchedulerConfig defines when sweeps run on their own.
type SchedulerConfig struct {
	Enabled    bool           `yaml:"enabled"`
	Interval   time.Duration  `yaml:"interval"`
	RunOnStart bool           `yaml:"runOnStart"`
	Timezone   string         `yaml:"timezone"`
	location   *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.UTC
}

// FetcherConfig bounds every outbound GET.
type FetcherConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes"`
	UserAgent    string        `yaml:"userAgent"`
}

// PipelineConfig tunes a sweep.
type PipelineConfig struct {
	MaxLinksPerSource  int `yaml:"maxLinksPerSource"`
	ArticleConcurrency int `yaml:"articleConcurrency"`
}

// ClassifierConfig names the registered classifier used by sweeps.
type ClassifierConfig struct {
	Name string `yaml:"name"`
}

// ChatGPTConfig defines how to contact the ChatGPT API.
type ChatGPTConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Timeout      time.Duration `yaml:"timeout"`
}

// MLConfig describes an external inference service used as a classifier.
type MLConfig struct {
	InferenceURL string        `yaml:"inferenceUrl"`
	APIKey       string        `yaml:"apiKey"`
	Timeout      time.Duration `yaml:"timeout"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BaseURL  string `yaml:"baseUrl"`
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SourceConfig is one entry of the seed catalog.
type SourceConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Logo     string `yaml:"logo"`
	Country  string `yaml:"country"`
	Nigerian bool   `yaml:"nigerian"`
	Disabled bool   `yaml:"disabled"`
}

// Load applies defaults, the YAML file named by CRIME_SCANNER_CONFIG and environment overrides.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("config: storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return fmt.Errorf("config: scheduler.interval must be positive")
	}
	if c.Pipeline.ArticleConcurrency < 1 {
		return fmt.Errorf("config: pipeline.articleConcurrency must be at least 1")
	}
	if c.Pipeline.MaxLinksPerSource < 1 {
		return fmt.Errorf("config: pipeline.maxLinksPerSource must be at least 1")
	}
	if c.Fetcher.Timeout <= 0 {
		return fmt.Errorf("config: fetcher.timeout must be positive")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DSN = v
	}

	if v := os.Getenv(storageDriverEnv); v != "" {
		c.Storage.Driver = strings.ToLower(v)
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Redis.Addr = v
	}

	if v := os.Getenv(redisPasswordEnv); v != "" {
		c.Redis.Password = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.HTTP.Addr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(chatGPTAPIKeyEnv); v != "" {
		c.ChatGPT.APIKey = v
	}

	if v := os.Getenv(chatGPTModelEnv); v != "" {
		c.ChatGPT.Model = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc = time.UTC
	}
	c.Scheduler.location = loc
}

// DefaultSources returns the embedded seed catalog.
func DefaultSources() []SourceConfig {
	var catalog struct {
		Sources []SourceConfig `yaml:"sources"`
	}
	if err := yaml.Unmarshal(defaultSourcesYAML, &catalog); err != nil {
		panic(fmt.Sprintf("config: embedded sources.yaml is invalid: %v", err))
	}
	return catalog.Sources
}

func defaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":5000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{Driver: StorageMemory},
		Redis:   RedisConfig{LockKey: "crimescanner:sweep:lock", LockTTL: 30 * time.Minute},
		Scheduler: SchedulerConfig{
			Enabled:    true,
			Interval:   24 * time.Hour,
			RunOnStart: true,
			Timezone:   defaultTimezone,
			location:   time.UTC,
		},
		Fetcher: FetcherConfig{
			Timeout:      15 * time.Second,
			MaxBodyBytes: 5 << 20,
			UserAgent:    "CrimeScanner/1.0",
		},
		Pipeline: PipelineConfig{MaxLinksPerSource: 5, ArticleConcurrency: 3},
		Classifier: ClassifierConfig{Name: "keyword"},
		ChatGPT: ChatGPTConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
			Timeout:  20 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
