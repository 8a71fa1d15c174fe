package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/thivian17/lecturelink/internal/config"
	"github.com/thivian17/lecturelink/internal/logger"
	"github.com/thivian17/lecturelink/internal/orchestrator"
	"github.com/thivian17/lecturelink/internal/probe"
	"github.com/thivian17/lecturelink/internal/processing"
	"github.com/thivian17/lecturelink/internal/store"
	"github.com/thivian17/lecturelink/internal/summarizer"
	"github.com/thivian17/lecturelink/internal/upload"
	"github.com/thivian17/lecturelink/pkg/executor"
)

const usage = `Usage: lecturelink [-config config.yaml] <command> [flags]

Commands:
  submit    upload one lecture and wait for it to finish
  watch     submit every recording dropped into the inbox
  serve     run the HTTP API
  export    write a lecture summary to a .docx file
  orphans   list (and optionally fail) lectures stuck in processing

A lecture records its job id only when processing ends, so orphans cannot
tell a long-running job from an abandoned one. Only records older than
-older-than (default 24h) are listed; raise it if jobs run longer.
`

// app holds the dependencies shared by every command.
type app struct {
	cfg        *config.Config
	log        logger.Logger
	store      store.Store
	processing processing.Service
	summaries  processing.SummaryGenerator
	prober     probe.Prober
}

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.close(ctx)

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "submit":
		err = a.runSubmit(ctx, args)
	case "watch":
		err = a.runWatch(ctx, args)
	case "serve":
		err = a.runServe(ctx, args)
	case "export":
		err = a.runExport(ctx, args)
	case "orphans":
		err = a.runOrphans(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		flag.Usage()
		a.close(ctx)
		os.Exit(2)
	}

	if err != nil {
		a.log.Error(ctx, "%s failed: %v", cmd, err)
		a.close(ctx)
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	st, err := store.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	svc := processing.New(processing.Config{
		BaseURL:  cfg.Processing.BaseURL,
		APIKey:   cfg.Processing.APIKey,
		Language: cfg.Processing.Language,
		Timeout:  cfg.Processing.Timeout,
	}, log)

	a := &app{
		cfg:        cfg,
		log:        log,
		store:      st,
		processing: svc,
		prober:     probe.New(executor.New(), log),
	}

	if cfg.Summary.Provider == config.SummaryProviderGemini {
		a.summaries = summarizer.New(cfg.Gemini.APIKeys, cfg.Gemini.Model, log)
		log.Info(ctx, "Summaries generated with Gemini (%s, %d keys)", cfg.Gemini.Model, len(cfg.Gemini.APIKeys))
	}

	return a, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.store.Close(); err != nil {
		a.log.Warn(ctx, "Failed to close store: %v", err)
	}
}

// orchestrators returns a factory for orchestrators wired to the shared
// services. nav and onChange may be nil.
func (a *app) orchestrators(nav orchestrator.Navigator, onChange func(orchestrator.Snapshot)) orchestrator.Factory {
	return func() orchestrator.Orchestrator {
		return orchestrator.New(orchestrator.Deps{
			Processing: a.processing,
			Summaries:  a.summaries,
			Store:      a.store,
			Navigator:  nav,
			Prober:     a.prober,
			Logger:     a.log,
		}, orchestrator.Options{
			PollInterval:  a.cfg.Polling.Interval,
			RedirectDelay: a.cfg.Polling.RedirectDelay,
			Limits: upload.Limits{
				MaxAudioBytes:  a.cfg.MaxAudioBytes(),
				MaxSlidesBytes: a.cfg.MaxSlidesBytes(),
			},
			Language: a.cfg.Processing.Language,
			OnChange: onChange,
		})
	}
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
