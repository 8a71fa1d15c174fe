package orchestrator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/thivian17/lecturelink/internal/logger"
	"github.com/thivian17/lecturelink/internal/processing"
	"github.com/thivian17/lecturelink/internal/store"
	"github.com/thivian17/lecturelink/internal/upload"
)

const (
	DefaultPollInterval  = 3 * time.Second
	DefaultRedirectDelay = 1500 * time.Millisecond
)

type Deps struct {
	Processing processing.Service
	// Summaries overrides the service's own summary generation.
	Summaries processing.SummaryGenerator
	Store     store.Store
	Navigator Navigator
	Prober    MediaProber
	Logger    logger.Logger
}

type Options struct {
	PollInterval  time.Duration
	RedirectDelay time.Duration
	Limits        upload.Limits
	Language      string
	JobOptions    map[string]interface{}
	// OnChange is called with every new snapshot. It must not block.
	OnChange func(Snapshot)
}

type implOrchestrator struct {
	processing processing.Service
	summaries  processing.SummaryGenerator
	store      store.Store
	navigator  Navigator
	prober     MediaProber
	logger     logger.Logger
	opts       Options
	newTicker  func(time.Duration) ticker

	mu        sync.Mutex
	snap      Snapshot
	seq       uint64
	err       error
	title     string
	selection upload.Selection
	navTimer  *time.Timer

	// completed is the single-use guard taken by the first terminal poll.
	completed atomic.Bool
	closed    atomic.Bool

	pollTicker ticker
	stopPoll   chan struct{}
	stopOnce   sync.Once

	done     chan struct{}
	doneOnce sync.Once

	// publishMu orders OnChange calls; published is the last sequence sent.
	publishMu sync.Mutex
	published uint64
}

// New creates an Orchestrator for a single submission.
func New(deps Deps, opts Options) Orchestrator {
	return newOrchestrator(deps, opts)
}

func newOrchestrator(deps Deps, opts Options) *implOrchestrator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.RedirectDelay <= 0 {
		opts.RedirectDelay = DefaultRedirectDelay
	}
	if opts.Limits == (upload.Limits{}) {
		opts.Limits = upload.DefaultLimits()
	}

	summaries := deps.Summaries
	if summaries == nil {
		summaries = deps.Processing
	}

	return &implOrchestrator{
		processing: deps.Processing,
		summaries:  summaries,
		store:      deps.Store,
		navigator:  deps.Navigator,
		prober:     deps.Prober,
		logger:     deps.Logger,
		opts:       opts,
		newTicker:  newRealTicker,
		snap:       Snapshot{Stage: StageIdle},
		stopPoll:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}
