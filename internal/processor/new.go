package processor

import (
	"github.com/thivian17/lecturelink/internal/config"
	"github.com/thivian17/lecturelink/internal/logger"
	"github.com/thivian17/lecturelink/internal/orchestrator"
)

type implProcessor struct {
	cfg             *config.Config
	newOrchestrator orchestrator.Factory
	logger          logger.Logger
}

// New creates a new Processor instance
func New(cfg *config.Config, factory orchestrator.Factory, log logger.Logger) Processor {
	return &implProcessor{
		cfg:             cfg,
		newOrchestrator: factory,
		logger:          log,
	}
}
