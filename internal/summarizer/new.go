package summarizer

import (
	"context"
	"sync"

	"github.com/thivian17/lecturelink/internal/logger"
)

const defaultModel = "gemini-2.5-flash"

type implSummarizer struct {
	apiKeys []string
	logger  logger.Logger
	model   string

	mu         sync.Mutex
	currentKey int

	// generate is the model call. Replaced in tests.
	generate func(ctx context.Context, apiKey, prompt string) (string, error)
}

// New creates a Summarizer that rotates through the supplied Gemini API keys.
func New(apiKeys []string, model string, log logger.Logger) Summarizer {
	if model == "" {
		model = defaultModel
	}
	s := &implSummarizer{
		apiKeys: apiKeys,
		logger:  log,
		model:   model,
	}
	s.generate = s.callGemini
	return s
}
