package usecase

import (
	"context"

	"github.com/gridfan/pitwall/internal/domain/driver"
	"github.com/gridfan/pitwall/internal/domain/session"
)

// RaceDataSource is the read-only telemetry provider the standings pipeline
// is built on.
type RaceDataSource interface {
	FetchRaceSessions(ctx context.Context, year int) ([]session.Session, error)
	FetchParticipants(ctx context.Context, sessionKey int64) ([]driver.Participant, error)
	FetchChampionship(ctx context.Context, sessionKey int64) ([]driver.ChampionshipEntry, error)
	FetchPositions(ctx context.Context, sessionKey int64, driverNumber int) ([]driver.PositionRecord, error)
}

// PredictionInput is a podium prediction request forwarded to the model
// service.
type PredictionInput struct {
	Driver       string
	Circuit      string
	GridPosition int
	RecentForm   string
	Weather      string
}

// PredictionFactor is one feature contribution reported by the model.
type PredictionFactor struct {
	Factor string
	Impact string
	Icon   string
}

// PredictionResult is the model service's scored outcome for one request.
type PredictionResult struct {
	Driver              string
	Circuit             string
	PodiumProbability   float64
	PredictedPosition   int
	Confidence          string
	ContributingFactors []PredictionFactor
}

// ExternalPredictor is the podium prediction model service.
type ExternalPredictor interface {
	Predict(ctx context.Context, input PredictionInput) (PredictionResult, error)
	ListDrivers(ctx context.Context) ([]string, error)
	ListCircuits(ctx context.Context) ([]string, error)
}
