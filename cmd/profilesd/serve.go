package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithictech/go-profiles/api"
	"github.com/lithictech/go-profiles/api/preflight"
	"github.com/lithictech/go-profiles/async"
	"github.com/lithictech/go-profiles/config"
	"github.com/lithictech/go-profiles/logctx"
	"github.com/lithictech/go-profiles/profile"
	"github.com/lithictech/go-profiles/profileapi"
	"github.com/lithictech/go-profiles/profilestore"
	"github.com/lithictech/go-profiles/seed"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on, overrides PROFILES_PORT")
	rootCmd.AddCommand(serveCmd)
}

// newStore returns a store, seeding it from cfg.SeedFile through goer if it is set.
// Records that fail validation are logged and skipped;
// a missing or malformed file is an error.
func newStore(ctx context.Context, cfg config.Config, logger *logrus.Entry, goer async.Goer) (*profilestore.Store, *seed.Progress, error) {
	store := profilestore.New(profile.NewValidator(time.Now), profilestore.WithLogger(logger))
	if cfg.SeedFile == "" {
		return store, seed.Finished(), nil
	}
	ctx = logctx.WithTracingLogger(logctx.WithTraceId(logctx.WithLogger(ctx, logger), logctx.JobTraceIdKey))
	records, err := seed.LoadFile(cfg.SeedFile)
	if err != nil {
		return nil, nil, err
	}
	progress := seed.Start(ctx, goer, store, records, cfg.SeedParallelism)
	go func() {
		if _, err := progress.Wait(ctx); err != nil {
			logctx.Logger(ctx).WithError(err).Warn("seed_incomplete")
		}
	}()
	return store, progress, nil
}

// newApp serves store. Profile endpoints wait for seeding to finish.
func newApp(cfg config.Config, logger *logrus.Entry, store *profilestore.Store, seeding *seed.Progress) *echo.Echo {
	e := api.New(api.Config{
		Logger:        logger,
		CorsOrigins:   cfg.CorsOrigins,
		BodyLimit:     cfg.BodyLimit,
		Debug:         api.DebugMiddlewareConfig{Enabled: cfg.DebugHTTP, DumpAll: true},
		StatusHandler: profileapi.StatusHandler(store, cfg.BuildSha),
	})
	seeded := preflight.MiddlewareWithConfig(preflight.Config{
		Check:        func(echo.Context) error { return seeding.Err() },
		MaxTotalWait: cfg.SeedWait,
	})
	profileapi.Register(e, profileapi.Config{Store: store, Middleware: []echo.MiddlewareFunc{seeded}})
	return e
}

func serve(ctx context.Context, cfg config.Config, logger *logrus.Entry) error {
	store, seeding, err := newStore(ctx, cfg, logger, async.Async)
	if err != nil {
		return err
	}
	e := newApp(cfg, logger, store, seeding)

	errc := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"addr": cfg.Addr(), "profiles": store.Len()}).Info("server_starting")
		errc <- e.Start(cfg.Addr())
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "starting server")
	case <-ctx.Done():
	}
	logger.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
