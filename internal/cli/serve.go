package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/vitrine/internal/config"
	"github.com/roach88/vitrine/internal/httpapi"
	"github.com/roach88/vitrine/internal/listing"
	"github.com/roach88/vitrine/internal/logx"
	"github.com/roach88/vitrine/internal/money"
	"github.com/roach88/vitrine/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database string
	Addr     string

	// Ready receives the bound address once the server accepts
	// connections. Used by tests that listen on port 0.
	Ready chan<- string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the listing API",
		Long: `Serve the product listing API over HTTP.

Every route answers at /x and /api/x. The database is opened once and
shared by all requests; SIGINT or SIGTERM drains in-flight requests
before exiting.

Example:
  vitrine serve --db ./data/shopee-analytics.db
  vitrine serve --addr 127.0.0.1:8080 --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $DATABASE_PATH)")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default $HOST:$PORT)")

	return cmd
}

func openStore(cfg config.DatabaseConfig, readOnly bool) (*store.Store, error) {
	st, err := store.OpenWithOptions(cfg.Path, store.Options{
		ReadOnly:     readOnly || cfg.ReadOnly,
		MaxOpenConns: cfg.MaxOpenConns,
		BusyTimeout:  cfg.BusyTimeout,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func newService(cfg config.Config, st *store.Store) (*listing.Service, error) {
	prices, err := money.New(cfg.Locale.Language, cfg.Locale.Currency, cfg.Locale.Symbol)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid locale", err)
	}
	return listing.NewService(st, listing.Options{
		Prices:        prices,
		DatabasePath:  st.Path(),
		Environment:   cfg.Environment(),
		HealthTimeout: cfg.Server.HealthTimeout,
		Logger:        logx.Logger(),
	}), nil
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}
	addr := opts.Addr
	if addr == "" {
		addr = cfg.Server.Addr()
	}
	if cfg.Environment().IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logx.Info().Str("path", cfg.Database.Path).Msg("opening database")
	st, err := openStore(cfg.Database, false)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logx.Error().Err(closeErr).Msg("error closing database")
		}
	}()

	svc, err := newService(cfg, st)
	if err != nil {
		return err
	}

	var limiter *httpapi.IPRateLimiter
	if cfg.Server.RateLimit > 0 {
		limiter = httpapi.NewIPRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, 3*time.Minute)
	}
	router := httpapi.NewRouter(svc, httpapi.RouterOptions{
		Logger:      logx.Logger(),
		CORSOrigins: cfg.Server.CORSOrigins,
		Limiter:     limiter,
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}
	srv := &http.Server{
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logx.Info().Stringer("signal", sig).Msg("received signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	if limiter != nil {
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					limiter.Sweep()
				}
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	bound := ln.Addr().String()
	logx.Info().Str("addr", bound).Str("env", cfg.Environment().String()).Msg("server started")
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s%s\n", bound, "/api")
	if opts.Ready != nil {
		opts.Ready <- bound
	}

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}
	logx.Info().Msg("server stopped gracefully")
	return nil
}
