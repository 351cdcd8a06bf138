package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"DeltaV/internal/rocket"
)

type AppConfig struct {
	ConfigPath string
	Overrides  CalcOverrides
	Debug      bool
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		ConfigPath: "configs/calculator.json",
	}
}

// App carries what the handlers share. Nothing in it changes after startup.
type App struct {
	calc   *rocket.Calculator
	logger kitlog.Logger
}

func NewApp(calc *rocket.Calculator, logger kitlog.Logger) *App {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &App{calc: calc, logger: logger}
}

func resolveCalcSettings(cfg AppConfig, logger kitlog.Logger) CalcSettings {
	settings := DefaultCalcSettings()
	loaded, err := loadCalcSettings(cfg.ConfigPath, settings)
	if err != nil {
		level.Warn(logger).Log("msg", "calculator config unusable, using defaults", "err", err)
	} else {
		settings = loaded
	}
	return applyCalcOverrides(settings, cfg.Overrides)
}

// StartApp serves until SIGINT or SIGTERM, then drains in-flight requests.
func StartApp(addr string, cfg AppConfig) error {
	logger := NewLogger(os.Stderr, cfg.Debug)

	settings := resolveCalcSettings(cfg, logger)
	calc, err := settings.NewCalculator()
	if err != nil {
		return err
	}
	app := NewApp(calc, logger)

	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		level.Info(logger).Log("msg", "starting web server", "addr", addr,
			"policy", calc.Policy(), "materials", len(calc.Catalog().MaterialNames()),
			"fuels", len(calc.Catalog().FuelNames()), "escape_velocity", settings.EscapeVelocity)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	level.Info(logger).Log("msg", "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
