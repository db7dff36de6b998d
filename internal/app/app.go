package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gridfan/pitwall/external/openf1"
	"github.com/gridfan/pitwall/external/predictor"
	"github.com/gridfan/pitwall/internal/config"
	"github.com/gridfan/pitwall/internal/interfaces/httpapi"
	"github.com/gridfan/pitwall/internal/platform/cache"
	"github.com/gridfan/pitwall/internal/platform/logging"
	"github.com/gridfan/pitwall/internal/platform/resilience"
	"github.com/gridfan/pitwall/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, error) {
	openF1Client := openf1.NewClient(openf1.ClientConfig{
		BaseURL: cfg.OpenF1BaseURL,
		Timeout: cfg.OpenF1Timeout,
		Logger:  logging.Default(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.OpenF1CircuitEnabled,
			FailureThreshold: cfg.OpenF1CircuitFailureCount,
			OpenTimeout:      cfg.OpenF1CircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.OpenF1CircuitHalfOpenMaxReq,
		},
	})

	predictorClient := predictor.NewClient(predictor.ClientConfig{
		BaseURL: cfg.PredictorBaseURL,
		Timeout: cfg.PredictorTimeout,
		Logger:  logging.Default(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.PredictorCircuitEnabled,
			FailureThreshold: cfg.PredictorCircuitFailureCount,
			OpenTimeout:      cfg.PredictorCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.PredictorCircuitHalfOpenMaxReq,
		},
	})

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	standingsSvc := usecase.NewStandingsService(openF1Client, logging.Default(), usecase.StandingsConfig{
		TargetSeasonYear:   cfg.TargetSeasonYear,
		HistorySeasonYear:  cfg.HistorySeasonYear,
		FallbackSessionKey: cfg.FallbackSessionKey,
	})
	profileSvc := usecase.NewProfileService(openF1Client, standingsSvc, logging.Default(), usecase.ProfileConfig{
		HistorySeasonYear: cfg.HistorySeasonYear,
		HistoryLimit:      cfg.HistoryLimit,
	})
	predictionSvc := usecase.NewPredictionService(predictorClient, store, logging.Default())

	handler := httpapi.NewHandler(standingsSvc, profileSvc, predictionSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
