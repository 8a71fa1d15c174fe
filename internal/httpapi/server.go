package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thivian17/lecturelink/internal/config"
	"github.com/thivian17/lecturelink/internal/logger"
	"github.com/thivian17/lecturelink/internal/orchestrator"
	"github.com/thivian17/lecturelink/internal/store"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	engine *gin.Engine
	api    *API
	cfg    *config.Config
	logger logger.Logger
}

func NewServer(cfg *config.Config, st store.Store, factory orchestrator.Factory, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(log))
	engine.Use(MaxBodySize(cfg.MaxAudioBytes() + cfg.MaxSlidesBytes() + 1<<20))
	engine.Use(CORS(cfg.Server.AllowedOrigins))

	api := NewAPI(cfg, st, factory, log)
	registerRoutes(engine, api, Auth(cfg.Auth.Tokens, cfg.Auth.UserID))

	return &Server{engine: engine, api: api, cfg: cfg, logger: log}
}

// Run serves until ctx is done, then shuts down and closes every live
// upload.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.Server.Port),
		Handler: s.engine,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	s.logger.Info(ctx, "API listening on %s", srv.Addr)

	select {
	case err := <-errChan:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.api.uploads.closeAll()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
