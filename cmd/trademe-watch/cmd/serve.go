package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/trademe/api/openapi"
	"github.com/donaldgifford/trademe/internal/api/handlers"
	"github.com/donaldgifford/trademe/internal/api/middleware"
	"github.com/donaldgifford/trademe/internal/app"
	"github.com/donaldgifford/trademe/internal/config"
	"github.com/donaldgifford/trademe/internal/metrics"
	"github.com/donaldgifford/trademe/internal/notify"
	"github.com/donaldgifford/trademe/internal/watch"
	"github.com/donaldgifford/trademe/pkg/logger"
	"github.com/donaldgifford/trademe/pkg/trademe"
)

var pollOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and the poll scheduler",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().
		BoolVar(&pollOnStart, "poll-on-start", true, "poll every search once at startup instead of waiting one interval")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := app.OpenStore(ctx, &cfg.TokenStore)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := app.NewClient(ctx, cfg, st, log, metrics.NewRecorder())
	if err != nil {
		return err
	}
	log.Info("trade me client ready",
		"environment", cfg.TradeMe.Environment,
		"auth", client.State().String(),
	)

	poller := watch.NewPoller(
		client.Search,
		st,
		newNotifier(cfg, log),
		watch.SearchesFromConfig(cfg.Watch.Searches),
		log,
		watch.WithEnvironment(trademe.Environment(cfg.TradeMe.Environment)),
	)

	sched, err := watch.NewScheduler(poller, cfg.Watch.Interval, log)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Recovery(log))
	e.Use(middleware.Metrics())

	handlers.Register(e,
		handlers.NewHealthHandler(st, client),
		handlers.NewSearchesHandler(poller, sched),
	)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	openapi.RegisterRoutes(e)

	addr := cfg.Server.Addr()
	log.Info("starting server", "addr", addr, "searches", len(cfg.Watch.Searches))

	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sched.Start()
	if pollOnStart && len(cfg.Watch.Searches) > 0 {
		go func() {
			if err := sched.RunNow(ctx); err != nil {
				log.Error("initial poll failed", "error", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		log.Error("server error", "error", err)
	}

	log.Info("shutting down")
	<-sched.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func newNotifier(cfg *config.Config, log *slog.Logger) notify.Notifier {
	d := cfg.Notifications.Discord
	if d.Enabled {
		log.Info("discord notifications enabled")
		return notify.NewDiscordNotifier(d.WebhookURL)
	}
	return notify.NewLogNotifier(log)
}
