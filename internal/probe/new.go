package probe

import (
	"github.com/thivian17/lecturelink/internal/logger"
	"github.com/thivian17/lecturelink/pkg/executor"
)

type implProber struct {
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Prober that shells out to ffprobe for audio and reads PDFs
// in process.
func New(exec executor.Executor, log logger.Logger) Prober {
	return &implProber{
		executor: exec,
		logger:   log,
	}
}
