package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/tgtg-watcher/internal/api/handlers"
	"github.com/donaldgifford/tgtg-watcher/internal/api/middleware"
	"github.com/donaldgifford/tgtg-watcher/internal/watch"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and stock watcher",
		Long: "Logs in, opens the snapshot store, and serves the HTTP API. When\n" +
			"watch.enabled is set, saved searches run on watch.interval and restocks\n" +
			"are sent to the configured notifier.",
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	log := a.log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	sc, err := a.login(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	sess := sc.Session()
	log.Info("logged in", "email", sess.Email(), "expires_at", sc.ExpiresAt())

	w := a.newWatcher(sc, st)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = a.cfg.Server.ReadTimeout
	e.Server.WriteTimeout = a.cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(st, sess)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("tgtg-watcher", Version))
	handlers.RegisterSessionRoutes(api, handlers.NewSessionHandler(sess, sc,
		handlers.WithLogin(ctx, sc, log),
	))
	handlers.RegisterSearchRoutes(api, handlers.NewSearchHandler(sc))
	handlers.RegisterSnapshotRoutes(api, handlers.NewSnapshotsHandler(st))
	handlers.RegisterWatchRoutes(api, handlers.NewWatchHandler(w))

	if a.cfg.Watch.Enabled {
		sched, err := watch.NewScheduler(w, a.cfg.Watch.Interval, log)
		if err != nil {
			return fmt.Errorf("creating scheduler: %w", err)
		}
		sched.Start()
		log.Info("watcher started",
			"interval", a.cfg.Watch.Interval,
			"searches", len(w.Searches()),
			"next_run", sched.NextRun(),
		)
		defer func() {
			<-sched.Stop().Done()
			log.Info("watcher stopped")
		}()
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	log.Info("starting server", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("serving http: %w", err)
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}
