package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/immunization-sim/backend/api"
	"github.com/gilchrisn/immunization-sim/backend/config"
	"github.com/gilchrisn/immunization-sim/backend/service"
	"github.com/gilchrisn/immunization-sim/pkg/store"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve simulation jobs over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			zerolog.TimeFieldFormat = time.RFC3339
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				if l, err := zerolog.ParseLevel(level); err == nil {
					zerolog.SetGlobalLevel(l)
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Server.Address = addr
			}
			if path, _ := cmd.Flags().GetString("db"); path != "" {
				cfg.Storage.DBPath = path
			}

			simCfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			registry := simCfg.Registry()

			var (
				history     api.HistoryStore
				resultStore service.ResultStore
			)
			if cfg.Storage.DBPath != "" {
				s, err := store.Open(cfg.Storage.DBPath)
				if err != nil {
					return err
				}
				defer s.Close()
				history, resultStore = s, s
			}

			jobService := service.NewJobService(cfg.Jobs, registry, resultStore)
			defer jobService.Close()
			trialService := service.NewTrialService(registry, cfg.Jobs.MaxNodes)

			handlers := api.NewHandlers(jobService, trialService, history)

			server := &http.Server{
				Addr:         cfg.Server.Address,
				Handler:      api.NewRouter(handlers, cfg.Server.AllowedOrigins),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			log.Info().
				Str("address", cfg.Server.Address).
				Int("max_workers", cfg.Jobs.MaxWorkers).
				Int("max_nodes", cfg.Jobs.MaxNodes).
				Dur("job_timeout", cfg.Jobs.JobTimeout).
				Bool("storage", history != nil).
				Msg("Configuration loaded")

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("address", cfg.Server.Address).Msg("HTTP server starting")
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-quit:
				log.Info().Msg("Shutdown signal received")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				return err
			}

			log.Info().Msg("Server shutdown complete")
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default: SERVER_ADDRESS or :8080)")
	cmd.Flags().String("db", "", "SQLite database for completed runs (default: DB_PATH)")
	return cmd
}
