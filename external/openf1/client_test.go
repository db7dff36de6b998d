package openf1

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gridfan/pitwall/internal/platform/resilience"
	"github.com/gridfan/pitwall/internal/usecase"
)

func TestClient_FetchRaceSessions(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("year"); got != "2024" {
			t.Errorf("unexpected year %q", got)
		}
		if got := r.URL.Query().Get("session_type"); got != "Race" {
			t.Errorf("unexpected session_type %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"session_key":9472,"meeting_key":1229,"year":2024,"location":"Sakhir","country_name":"Bahrain","circuit_short_name":"Sakhir","session_type":"Race","session_name":"Race","date_start":"2024-03-02T15:00:00+00:00"},
			{"session_key":9480,"meeting_key":1230,"year":2024,"location":"Jeddah","session_type":"Race","session_name":"Race","date_start":"2024-03-09T17:00:00+00:00"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	got, err := client.FetchRaceSessions(context.Background(), 2024)
	if err != nil {
		t.Fatalf("FetchRaceSessions error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(got))
	}
	if got[0].Key != 9472 || got[0].Location != "Sakhir" {
		t.Fatalf("unexpected first session: %+v", got[0])
	}
	want := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	if !got[0].DateStart.Equal(want) {
		t.Fatalf("unexpected date_start: %v", got[0].DateStart)
	}
}

func TestClient_FetchChampionship(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/championship_drivers" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("session_key"); got != "9472" {
			t.Errorf("unexpected session_key %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"driver_number":1,"position_current":1,"points_current":312.5},
			{"driver_number":0,"position_current":2,"points_current":99}
		]`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	got, err := client.FetchChampionship(context.Background(), 9472)
	if err != nil {
		t.Fatalf("FetchChampionship error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected rows without driver number to be dropped, got %d", len(got))
	}
	if got[0].Number != 1 || got[0].Points != 312.5 {
		t.Fatalf("unexpected entry: %+v", got[0])
	}
}

func TestClient_FetchPositions(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("driver_number"); got != "81" {
			t.Errorf("unexpected driver_number %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"driver_number":81,"position":5,"date":"2024-03-02T15:03:00+00:00"},
			{"driver_number":81,"position":2,"date":"2024-03-02T16:45:00+00:00"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	got, err := client.FetchPositions(context.Background(), 9472, 81)
	if err != nil {
		t.Fatalf("FetchPositions error: %v", err)
	}
	if len(got) != 2 || got[len(got)-1].Position != 2 {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestClient_NonSuccessStatusFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	if _, err := client.FetchParticipants(context.Background(), 9472); err == nil {
		t.Fatalf("expected error for non-2xx response")
	}
}

func TestClient_CircuitBreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	for i := int64(0); i < 2; i++ {
		if _, err := client.FetchParticipants(context.Background(), 9000+i); err == nil {
			t.Fatalf("expected failure on attempt %d", i)
		}
	}

	_, err := client.FetchParticipants(context.Background(), 9999)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable once circuit is open, got %v", err)
	}
}
