package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gridfan/pitwall/internal/usecase"
)

type Handler struct {
	standingsService  *usecase.StandingsService
	profileService    *usecase.ProfileService
	predictionService *usecase.PredictionService
	logger            *slog.Logger
	validator         *validator.Validate
}

func NewHandler(
	standingsService *usecase.StandingsService,
	profileService *usecase.ProfileService,
	predictionService *usecase.PredictionService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		standingsService:  standingsService,
		profileService:    profileService,
		predictionService: predictionService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStandings")
	defer span.End()

	set, err := h.standingsService.BuildStandings(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "build standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(set))
}

func (h *Handler) ListDriverStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDriverStandings")
	defer span.End()

	set, err := h.standingsService.BuildStandings(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "build driver standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]driverStandingDTO, 0, len(set.Drivers))
	for _, row := range set.Drivers {
		items = append(items, driverStandingToDTO(row))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListConstructorStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListConstructorStandings")
	defer span.End()

	set, err := h.standingsService.BuildStandings(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "build constructor standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]constructorStandingDTO, 0, len(set.Teams))
	for _, row := range set.Teams {
		items = append(items, constructorStandingToDTO(row))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetDriverProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDriverProfile")
	defer span.End()

	raw := r.PathValue("driverNumber")
	driverNumber, err := strconv.Atoi(raw)
	if err != nil || driverNumber <= 0 {
		writeError(ctx, w, fmt.Errorf("%w: driver number %q is not a positive integer", usecase.ErrInvalidInput, raw))
		return
	}

	profile, found, err := h.profileService.BuildProfile(ctx, driverNumber)
	if err != nil {
		h.logger.WarnContext(ctx, "build driver profile failed", "driver_number", driverNumber, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !found {
		writeError(ctx, w, fmt.Errorf("%w: driver=%d", usecase.ErrNotFound, driverNumber))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileToDTO(profile))
}
