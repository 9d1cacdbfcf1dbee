package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/SeanReardon/let-food-into-civic/internal/config"
	"github.com/SeanReardon/let-food-into-civic/internal/domain"
	"github.com/SeanReardon/let-food-into-civic/internal/notify"
	"github.com/SeanReardon/let-food-into-civic/internal/snooze"
	"github.com/SeanReardon/let-food-into-civic/internal/store"
	"github.com/SeanReardon/let-food-into-civic/internal/telnyx"
	"github.com/SeanReardon/let-food-into-civic/internal/web"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	reg     *domain.Registry
	httpSrv *http.Server
	repo    store.Repo
}

// New validates the configuration and builds the recipient registry.
// A notify number that cannot be normalized is fatal here, not at
// dispatch time.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	reg, err := domain.NewRegistry(cfg.NotifyNumbers)
	if err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	ownNumber := cfg.TelnyxNumber
	if ownNumber != "" {
		ownNumber, err = domain.NormalizePhone(cfg.TelnyxNumber)
		if err != nil {
			return nil, fmt.Errorf("configuration: telnyx number: %w", err)
		}
	}
	cfg.TelnyxNumber = ownNumber

	return &App{cfg: cfg, log: log, reg: reg}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting let-food-into-civic",
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("unlock_digit", a.cfg.UnlockDigit),
		zap.Int("iterations", a.cfg.Iterations),
		zap.Int("notify_numbers", len(a.reg.All())),
		zap.Bool("telnyx_configured", a.cfg.TelnyxAPIKey != ""),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	client := telnyx.New(a.cfg.TelnyxAPIKey)
	notifier := notify.New(client, repo, a.cfg.TelnyxNumber, a.log)

	snoozeStore := snooze.NewStore(a.cfg.SnoozePath(), a.log)
	coordinator := snooze.NewCoordinator(snoozeStore, a.reg, notifier, a.log)

	if a.cfg.TelnyxAPIKey != "" && a.cfg.TelnyxNumber != "" {
		if err := notifier.EnsureOptIns(ctx, a.reg.All()); err != nil {
			a.log.Error("opt-in initialization failed", zap.Error(err))
		}
	}

	engine, err := web.New(a.log, web.Config{
		UnlockDigit:   a.cfg.UnlockDigit,
		Iterations:    a.cfg.Iterations,
		PauseSeconds:  a.cfg.PauseDuration.Seconds(),
		DTMFAudioURL:  a.cfg.DTMFAudioURL,
		OwnNumber:     a.cfg.TelnyxNumber,
		APIConfigured: a.cfg.TelnyxAPIKey != "",
	}, coordinator, a.reg, repo, notifier)
	if err != nil {
		return err
	}

	a.httpSrv = &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		a.log.Error("http server error", zap.Error(err))
		_ = a.repo.Close()
		return err

	case <-ctx.Done():
		a.log.Info("shutdown signal received")

		// Create a short-lived shutdown context and cancel it immediately after use.
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := a.httpSrv.Shutdown(shCtx)
		cancel()

		if err != nil {
			a.log.Warn("http server shutdown error", zap.Error(err))
		}
		if a.repo != nil {
			_ = a.repo.Close()
		}
		return nil
	}
}
