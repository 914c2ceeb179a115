package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nekruzvatanshoev/carval/pkg/carval/blackbook"
	"github.com/nekruzvatanshoev/carval/pkg/carval/config"
	"github.com/nekruzvatanshoev/carval/pkg/carval/listings"
	"github.com/nekruzvatanshoev/carval/pkg/carval/logger"
	"github.com/nekruzvatanshoev/carval/pkg/carval/nhtsa"
	"github.com/nekruzvatanshoev/carval/pkg/carval/server"
)

var RootCmd = &cobra.Command{
	Use:   RootCmdName,
	Short: RootCmdShort,
	Long:  RootCmdLong,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagKeys maps serve flags to configuration keys.
var flagKeys = map[string]string{
	"address":    "server.address",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

func init() {
	flags := ServeCmd.Flags()
	flags.String("address", "", "listen address, e.g. :5000")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console or json)")

	RootCmd.AddCommand(ServeCmd)
}

var (
	ServeCmd = &cobra.Command{
		Use:          ServeCmdName,
		Short:        ServeCmdShort,
		Long:         ServeCmdLong,
		RunE:         serveCmdFunc(),
		SilenceUsage: true,
	}
)

func serveCmdFunc() func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		for flag, key := range flagKeys {
			if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}

		cfg, err := config.Load(v)
		if err != nil {
			return err
		}

		zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer func() { _ = zl.Sync() }()
		log := logger.NewZapAdapter(zl)

		if cfg.Blackbook.GraphQLURL == "" || cfg.Blackbook.ID == "" || cfg.Blackbook.Password == "" {
			log.Warn("blackbook is not fully configured; valuation endpoints will fail", nil)
		}

		srv := server.NewHTTPServer(cfg.Server.Address, server.Services{
			Valuator: blackbook.NewClient(cfg.Blackbook, log),
			Decoder:  nhtsa.NewClient(cfg.NHTSA, log),
			Listings: listings.NewScraper(cfg.Listings, log),
		}, server.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MaxListings:    cfg.Listings.MaxResults,
		}, log)

		return run(cmd.Context(), srv, cfg.Server, log)
	}
}

// run serves until SIGINT/SIGTERM or a listener failure, then shuts down
// within cfg.ShutdownTimeout.
func run(ctx context.Context, srv *http.Server, cfg config.ServerConfig, log logger.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down the server", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
