package predictor

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gridfan/pitwall/internal/platform/resilience"
	"github.com/gridfan/pitwall/internal/usecase"
)

func TestClient_Predict_RoundTrip(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/predict" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected content type %q", got)
		}

		raw, _ := io.ReadAll(r.Body)
		var req map[string]any
		if err := sonic.Unmarshal(raw, &req); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		if got, _ := req["driver"].(string); got != "Max Verstappen" {
			t.Errorf("unexpected driver %q", got)
		}
		if got, _ := req["grid_position"].(float64); got != 3 {
			t.Errorf("unexpected grid_position %v", req["grid_position"])
		}
		if got, _ := req["recent_form"].(string); got != "Good" {
			t.Errorf("unexpected recent_form %q", got)
		}
		if got, _ := req["weather"].(string); got != "Dry" {
			t.Errorf("unexpected weather %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"driver":"Max Verstappen",
			"circuit":"Monza",
			"podium_probability":0.83,
			"predicted_position":2,
			"confidence":"High",
			"contributing_factors":[{"factor":"Grid position","impact":"positive","icon":"chart"}]
		}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	got, err := client.Predict(context.Background(), usecase.PredictionInput{
		Driver:       "Max Verstappen",
		Circuit:      "Monza",
		GridPosition: 3,
		RecentForm:   "Good",
		Weather:      "Dry",
	})
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}
	if got.PodiumProbability != 0.83 || got.PredictedPosition != 2 || got.Confidence != "High" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if len(got.ContributingFactors) != 1 || got.ContributingFactors[0].Factor != "Grid position" {
		t.Fatalf("unexpected factors: %+v", got.ContributingFactors)
	}
}

func TestClient_ListDriversAndCircuits(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/drivers":
			_, _ = w.Write([]byte(`{"count":2,"drivers":["Max Verstappen","Lando Norris"]}`))
		case "/api/circuits":
			_, _ = w.Write([]byte(`{"count":1,"circuits":["Monza"]}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	drivers, err := client.ListDrivers(context.Background())
	if err != nil {
		t.Fatalf("ListDrivers error: %v", err)
	}
	if len(drivers) != 2 || drivers[0] != "Max Verstappen" {
		t.Fatalf("unexpected drivers: %v", drivers)
	}

	circuits, err := client.ListCircuits(context.Background())
	if err != nil {
		t.Fatalf("ListCircuits error: %v", err)
	}
	if len(circuits) != 1 || circuits[0] != "Monza" {
		t.Fatalf("unexpected circuits: %v", circuits)
	}
}

func TestClient_PredictNonSuccessStatusFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"unknown driver"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	_, err := client.Predict(context.Background(), usecase.PredictionInput{Driver: "Nobody", Circuit: "Monza", GridPosition: 1, RecentForm: "Good", Weather: "Dry"})
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected model rejection to map to invalid input, got %v", err)
	}
	if !strings.Contains(err.Error(), "status=422") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestClient_CircuitBreakerRejectsWhenOpen(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := client.ListDrivers(context.Background()); err == nil {
		t.Fatalf("expected failure from upstream")
	}

	_, err := client.ListCircuits(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable once circuit is open, got %v", err)
	}
}

func TestShellQuote(t *testing.T) {
	t.Parallel()

	if got := shellQuote(`{"driver":"O'Ward"}`); got != `'{"driver":"O'"'"'Ward"}'` {
		t.Fatalf("unexpected quoting: %s", got)
	}
}
