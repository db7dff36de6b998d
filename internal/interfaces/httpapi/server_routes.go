package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerStandingsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/standings", handler.GetStandings)
	mux.HandleFunc("GET /v1/standings/drivers", handler.ListDriverStandings)
	mux.HandleFunc("GET /v1/standings/constructors", handler.ListConstructorStandings)
	mux.HandleFunc("GET /v1/drivers/{driverNumber}", handler.GetDriverProfile)
}

func registerPredictionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/predictions", handler.CreatePrediction)
	mux.HandleFunc("GET /v1/reference/drivers", handler.ListReferenceDrivers)
	mux.HandleFunc("GET /v1/reference/circuits", handler.ListReferenceCircuits)
}
