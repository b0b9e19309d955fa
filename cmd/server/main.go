package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"misfit-alliance/internal/config"
	"misfit-alliance/internal/constants"
	fxmodules "misfit-alliance/internal/fx"
	"misfit-alliance/internal/middleware"
	"misfit-alliance/internal/proxy"
	"misfit-alliance/internal/server"
	"misfit-alliance/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(bootstrapLeague),
		fx.Invoke(runServer),
	).Run()
}

// bootstrapLeague seeds a brand-new database before the first request.
func bootstrapLeague(lc fx.Lifecycle, dashboard *service.DashboardService) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return dashboard.Bootstrap(ctx)
		},
	})
}

func runServer(
	lc fx.Lifecycle,
	allianceServer *server.AllianceServer,
	health *server.Health,
	aiProxy *proxy.Handler,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})

	requestIDMiddleware := middleware.RequestID(logger)

	path, handler := allianceServer.Handler()
	mux.Handle(path, requestIDMiddleware(c.Handler(handler)))
	mux.Handle(proxy.Prefix, requestIDMiddleware(c.Handler(aiProxy)))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", requestIDMiddleware(health))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           mux,
		ReadHeaderTimeout: constants.ReadHeaderTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Bool("ai_enabled", cfg.AIEnabled()).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
