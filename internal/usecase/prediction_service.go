package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/gridfan/pitwall/internal/platform/cache"
	"github.com/gridfan/pitwall/internal/platform/logging"
)

const (
	cacheKeyPredictorDrivers  = "predictor:drivers"
	cacheKeyPredictorCircuits = "predictor:circuits"
)

var allowedRecentForms = map[string]struct{}{
	"Excellent": {},
	"Good":      {},
	"Average":   {},
	"Poor":      {},
}

var allowedWeather = map[string]struct{}{
	"Dry":   {},
	"Mixed": {},
	"Wet":   {},
}

// PredictionService fronts the podium prediction model. Reference lists are
// cached; prediction requests always hit the model.
type PredictionService struct {
	predictor ExternalPredictor
	cache     *cache.Store
	logger    *logging.Logger
}

func NewPredictionService(predictor ExternalPredictor, store *cache.Store, logger *logging.Logger) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{
		predictor: predictor,
		cache:     store,
		logger:    logger,
	}
}

func (s *PredictionService) Predict(ctx context.Context, input PredictionInput) (PredictionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "PredictionService.Predict")
	defer span.End()

	input.Driver = strings.TrimSpace(input.Driver)
	input.Circuit = strings.TrimSpace(input.Circuit)
	input.RecentForm = strings.TrimSpace(input.RecentForm)
	input.Weather = strings.TrimSpace(input.Weather)

	if input.Driver == "" {
		return PredictionResult{}, fmt.Errorf("%w: driver is required", ErrInvalidInput)
	}
	if input.Circuit == "" {
		return PredictionResult{}, fmt.Errorf("%w: circuit is required", ErrInvalidInput)
	}
	if input.GridPosition < 1 || input.GridPosition > 20 {
		return PredictionResult{}, fmt.Errorf("%w: grid position must be between 1 and 20", ErrInvalidInput)
	}
	if _, ok := allowedRecentForms[input.RecentForm]; !ok {
		return PredictionResult{}, fmt.Errorf("%w: unsupported recent form %q", ErrInvalidInput, input.RecentForm)
	}
	if _, ok := allowedWeather[input.Weather]; !ok {
		return PredictionResult{}, fmt.Errorf("%w: unsupported weather %q", ErrInvalidInput, input.Weather)
	}

	result, err := s.predictor.Predict(ctx, input)
	if err != nil {
		return PredictionResult{}, classifyPredictorError(err, "predict podium")
	}
	return result, nil
}

func (s *PredictionService) ListDrivers(ctx context.Context) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "PredictionService.ListDrivers")
	defer span.End()

	return s.cachedList(ctx, cacheKeyPredictorDrivers, s.predictor.ListDrivers, "list drivers")
}

func (s *PredictionService) ListCircuits(ctx context.Context) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "PredictionService.ListCircuits")
	defer span.End()

	return s.cachedList(ctx, cacheKeyPredictorCircuits, s.predictor.ListCircuits, "list circuits")
}

func (s *PredictionService) cachedList(ctx context.Context, key string, loader func(context.Context) ([]string, error), op string) ([]string, error) {
	if s.cache == nil {
		items, err := loader(ctx)
		if err != nil {
			return nil, classifyPredictorError(err, op)
		}
		return items, nil
	}

	items, err := s.cache.GetOrLoad(ctx, key, loader)
	if err != nil {
		return nil, classifyPredictorError(err, op)
	}
	return items, nil
}

func classifyPredictorError(err error, op string) error {
	if stderrors.Is(err, ErrDependencyUnavailable) ||
		stderrors.Is(err, ErrInvalidInput) ||
		stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrDependencyUnavailable, err)
}
