package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/gridfan/pitwall/internal/usecase"
)

func (h *Handler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePrediction")
	defer span.End()

	var req predictionRequestDTO
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validator.StructCtx(ctx, req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	result, err := h.predictionService.Predict(ctx, usecase.PredictionInput{
		Driver:       req.Driver,
		Circuit:      req.Circuit,
		GridPosition: req.GridPosition,
		RecentForm:   req.RecentForm,
		Weather:      req.Weather,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "predict podium failed", "driver", req.Driver, "circuit", req.Circuit, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(result))
}

func (h *Handler) ListReferenceDrivers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListReferenceDrivers")
	defer span.End()

	drivers, err := h.predictionService.ListDrivers(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list reference drivers failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, referenceDriversDTO{
		Count:   len(drivers),
		Drivers: drivers,
	})
}

func (h *Handler) ListReferenceCircuits(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListReferenceCircuits")
	defer span.End()

	circuits, err := h.predictionService.ListCircuits(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list reference circuits failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, referenceCircuitsDTO{
		Count:    len(circuits),
		Circuits: circuits,
	})
}
