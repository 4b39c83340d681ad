package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	adapthttp "steplog/internal/adapter/http"
	"steplog/internal/adapter/postgres"
	"steplog/internal/app"

	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if os.Getenv("LOG_PRETTY") != "" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	addr := env("ADDR", ":8080")
	webDir := env("WEB_DIR", "web")

	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	db, err := postgres.Open(connStr)
	if err != nil {
		logger.Fatal().Err(err).Msg("db open")
	}
	defer func() { _ = db.Close() }()

	sessionRepo := postgres.NewSessionRepo(db)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := sessionRepo.DeleteExpired(context.Background()); err != nil {
				logger.Warn().Err(err).Msg("session sweep")
			}
		}
	}()

	stepsSvc := app.NewStepsService(db)
	reportSvc := app.NewReportService(stepsSvc)
	authSvc := app.NewAuthService(postgres.NewUserRepo(db), sessionRepo)

	oidcCfg, err := adapthttp.NewOIDC(context.Background(),
		os.Getenv("OIDC_ISSUER"),
		os.Getenv("OIDC_CLIENT_ID"),
		os.Getenv("OIDC_CLIENT_SECRET"),
		os.Getenv("OIDC_REDIRECT_URL"),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("oidc setup")
	}

	h := adapthttp.New(stepsSvc, reportSvc, authSvc, oidcCfg, webDir, logger).Handler()
	logger.Info().Str("addr", addr).Msg("listening")
	if err := http.ListenAndServe(addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server")
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
