package config

import (
	"fmt"
	"time"
)

const (
	BackendFile      = "file"
	BackendRedis     = "redis"
	BackendFirestore = "firestore"

	SummaryProviderService = "service"
	SummaryProviderGemini  = "gemini"
)

type Config struct {
	Processing  ProcessingConfig  `yaml:"processing"`
	Polling     PollingConfig     `yaml:"polling"`
	Upload      UploadConfig      `yaml:"upload"`
	Store       StoreConfig       `yaml:"store"`
	Redis       RedisConfig       `yaml:"redis"`
	Firestore   FirestoreConfig   `yaml:"firestore"`
	Auth        AuthConfig        `yaml:"auth"`
	Summary     SummaryConfig     `yaml:"summary"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Paths       PathsConfig       `yaml:"paths"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
}

type ProcessingConfig struct {
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`
}

type PollingConfig struct {
	Interval      time.Duration `yaml:"interval"`
	RedirectDelay time.Duration `yaml:"redirect_delay"`
}

type UploadConfig struct {
	MaxAudioMB  int64 `yaml:"max_audio_mb"`
	MaxSlidesMB int64 `yaml:"max_slides_mb"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type FirestoreConfig struct {
	ProjectID string `yaml:"project_id"`
}

type AuthConfig struct {
	// UserID is the identity used by the CLI commands.
	UserID string `yaml:"user_id"`
	// Tokens maps bearer tokens accepted by the HTTP API to user ids.
	Tokens map[string]string `yaml:"tokens"`
}

type SummaryConfig struct {
	Provider string `yaml:"provider"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

type PathsConfig struct {
	Inbox    string `yaml:"inbox"`
	Archived string `yaml:"archived"`
	Temp     string `yaml:"temp"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	BaseURL        string   `yaml:"base_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// UploadRetention is how long a finished upload stays queryable.
	UploadRetention time.Duration `yaml:"upload_retention"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// MaxAudioBytes returns the audio size limit in bytes.
func (c *Config) MaxAudioBytes() int64 {
	return c.Upload.MaxAudioMB * 1024 * 1024
}

// MaxSlidesBytes returns the slides size limit in bytes.
func (c *Config) MaxSlidesBytes() int64 {
	return c.Upload.MaxSlidesMB * 1024 * 1024
}

func (c *Config) Validate() error {
	if c.Processing.BaseURL == "" {
		return fmt.Errorf("processing.base_url is required")
	}

	if c.Store.Backend == "" {
		c.Store.Backend = BackendFile
	}
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Path == "" {
			c.Store.Path = "data/lecturelink.json"
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis store")
		}
	case BackendFirestore:
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("firestore.project_id is required for the firestore store")
		}
	default:
		return fmt.Errorf("store.backend %q is not supported", c.Store.Backend)
	}

	if c.Summary.Provider == "" {
		c.Summary.Provider = SummaryProviderService
	}
	switch c.Summary.Provider {
	case SummaryProviderService:
	case SummaryProviderGemini:
		if len(c.Gemini.APIKeys) == 0 {
			return fmt.Errorf("gemini.api_keys is required for the gemini summary provider")
		}
	default:
		return fmt.Errorf("summary.provider %q is not supported", c.Summary.Provider)
	}

	if c.Processing.Timeout == 0 {
		c.Processing.Timeout = 10 * time.Minute
	}
	if c.Polling.Interval == 0 {
		c.Polling.Interval = 3 * time.Second
	}
	if c.Polling.RedirectDelay == 0 {
		c.Polling.RedirectDelay = 1500 * time.Millisecond
	}
	if c.Upload.MaxAudioMB == 0 {
		c.Upload.MaxAudioMB = 500
	}
	if c.Upload.MaxSlidesMB == 0 {
		c.Upload.MaxSlidesMB = 50
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = "data/inbox"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = fmt.Sprintf("http://localhost:%s", c.Server.Port)
	}
	if c.Server.UploadRetention == 0 {
		c.Server.UploadRetention = 15 * time.Minute
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
