package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/twilight-hud/internal/domain/media"
	"github.com/yanqian/twilight-hud/internal/domain/messaging"
	"github.com/yanqian/twilight-hud/internal/domain/story"
	"github.com/yanqian/twilight-hud/internal/domain/twilight"
	"github.com/yanqian/twilight-hud/internal/infra/config"
	"github.com/yanqian/twilight-hud/internal/scheduler"
)

// TerminalUI runs a foreground dashboard until the user quits or ctx ends.
type TerminalUI func(ctx context.Context, source *twilight.Service, player *media.Service) error

// App encapsulates the HTTP server and scheduler lifecycle.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	scheduler *scheduler.Scheduler
	twilight  *twilight.Service
	media     *media.Service
	messages  *messaging.Service
	stories   *story.Service
}

// NewApp is used by Wire to build the runnable app.
func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	sched *scheduler.Scheduler,
	twilightSvc *twilight.Service,
	mediaSvc *media.Service,
	messageSvc *messaging.Service,
	storySvc *story.Service,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger.With("component", "bootstrap"),
		server:    server,
		scheduler: sched,
		twilight:  twilightSvc,
		media:     mediaSvc,
		messages:  messageSvc,
		stories:   storySvc,
	}
}

// Run starts the scheduler and the HTTP server and blocks until shutdown.
// A non-nil ui runs in the foreground and ends the app when it returns.
func (a *App) Run(ctx context.Context, ui TerminalUI) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.twilight.Start(ctx)
	if _, err := a.messages.Restore(ctx); err != nil {
		a.logger.Error("failed to restore pending messages", "error", err)
	}
	a.registerJobs()

	schedDone := make(chan error, 1)
	go func() {
		schedDone <- a.scheduler.Run(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	uiDone := make(chan error, 1)
	if ui != nil {
		go func() {
			uiDone <- ui(ctx, a.twilight, a.media)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-uiDone:
		a.logger.Info("terminal hud closed")
		runErr = err
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := a.server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	if _, err := a.media.Stop(shutdownCtx); err != nil {
		a.logger.Warn("failed to stop playback", "error", err)
	}
	if err := <-schedDone; err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (a *App) registerJobs() {
	sched := a.cfg.Schedule
	a.scheduler.Every("clock", sched.ClockEvery, func(ctx context.Context) {
		a.twilight.Tick(ctx)
	})
	a.scheduler.Every("alerts", sched.AlertEvery, func(ctx context.Context) {
		a.twilight.CheckAlerts(ctx)
	})
	if a.cfg.Story.Auto && a.stories.Enabled() {
		a.scheduler.EveryDelayed("story", sched.StoryEvery, func(ctx context.Context) {
			if _, err := a.stories.Tell(ctx, ""); err != nil {
				a.logger.Error("story generation failed", "error", err)
			}
		})
	} else {
		a.logger.Info("automatic stories disabled")
	}
}
