package processing

import (
	"net/http"
	"strings"
	"time"

	"github.com/thivian17/lecturelink/internal/logger"
)

const defaultTimeout = 10 * time.Minute

type Config struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
}

type implService struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	logger     logger.Logger
}

// New creates a Service talking to the processing API at cfg.BaseURL.
func New(cfg Config, log logger.Logger) Service {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &implService{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}
