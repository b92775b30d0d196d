package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/syaquiii/innoventum-sub001/config"
	httpx "github.com/syaquiii/innoventum-sub001/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunHTTPServer builds the handler stack, serves until the process receives
// SIGINT/SIGTERM, then drains in-flight requests.
func RunHTTPServer(ctx context.Context, cfg *HTTPServerConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := buildHTTPHandler(httpHandlerConfig{
		Logger:   logger,
		Services: cfg.Services,
		App:      appCfg,
	})

	addr := appCfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Services ServiceContainer
	App      *config.AppConfig
}

// buildHTTPHandler assembles the middleware stack.
// Order: Recover -> Logging -> NavigationGuard -> Router.
func buildHTTPHandler(cfg httpHandlerConfig) http.Handler {
	table := httpx.DefaultRouteTable()

	router := httpx.NewRouter(httpx.RouterServices{
		Auth:          cfg.Services.Auth,
		Catalog:       cfg.Services.Catalog,
		OAuth:         cfg.Services.OAuth,
		Table:         table,
		CookieDomain:  cfg.App.HTTP.CookieDomain,
		SessionMaxAge: int(cfg.App.Auth.TokenTTL.Seconds()),
		Logger:        cfg.Logger,
	})

	h := httpx.NavigationGuard(httpx.GuardConfig{
		Authority:    cfg.Services.Auth,
		Table:        table,
		RefreshAfter: cfg.App.Auth.RefreshAfter,
		CookieDomain: cfg.App.HTTP.CookieDomain,
		Logger:       cfg.Logger,
	})(router)

	h = httpx.Logging(cfg.Logger)(h)
	h = httpx.Recover(cfg.Logger)(h)

	return h
}
