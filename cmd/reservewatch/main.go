package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reservewatch/pkg/browser"
	"reservewatch/pkg/config"
	"reservewatch/pkg/logger"
	"reservewatch/pkg/monitor"
	"reservewatch/pkg/notifier"
	"reservewatch/pkg/server"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logger.Error("Reservation watcher failed", zap.Error(err))
		_ = logger.Sync()
		fmt.Fprintf(os.Stderr, "reservewatch: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// LoadConfig resolves RESERVEWATCH_CONFIG and the default locations itself
	cfg, err := config.LoadConfig("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.InitLogger(!cfg.App.IsProduction(), cfg.App.LogFile, cfg.App.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("Reservation watcher starting",
		zap.String("environment", cfg.App.Environment),
		zap.String("log_level", cfg.App.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tg := notifier.NewTelegramNotifier(cfg.Telegram)

	mon, err := monitor.New(cfg, tg, chromeSessionFactory(cfg.Browser),
		monitor.WithHeartbeat(watchdogPing),
	)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	var httpServer *server.HTTPServer
	if cfg.Server.Enabled {
		httpServer = server.NewHTTPServer(cfg.Server, cfg.App, mon.Status())
		go func() {
			if err := httpServer.Start(); err != nil {
				logger.Error("Status server stopped", zap.Error(err))
			}
		}()
	}

	sdNotify(daemon.SdNotifyReady)

	runErr := mon.Run(ctx)

	sdNotify(daemon.SdNotifyStopping)
	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Status server shutdown failed", zap.Error(err))
		}
	}

	if runErr != nil {
		return runErr
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		logger.Info("Shutdown signal received, reservation watcher stopped")
	}
	return nil
}

func chromeSessionFactory(bc *config.BrowserConfig) monitor.SessionFactory {
	return func(ctx context.Context) (monitor.Session, error) {
		session, err := browser.NewChromeSession(ctx, browser.Options{
			ExecPath:     bc.ExecPath,
			Headless:     bc.Headless,
			UserAgent:    bc.UserAgent,
			WindowWidth:  bc.WindowWidth,
			WindowHeight: bc.WindowHeight,
		})
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}

func watchdogPing() {
	sdNotify(daemon.SdNotifyWatchdog)
}

// sdNotify is a no-op when NOTIFY_SOCKET is unset.
func sdNotify(state string) {
	if _, err := daemon.SdNotify(false, state); err != nil {
		logger.Debug("sd_notify failed", zap.String("state", state), zap.Error(err))
	}
}
