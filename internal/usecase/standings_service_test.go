package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gridfan/pitwall/internal/domain/driver"
	"github.com/gridfan/pitwall/internal/domain/session"
	"github.com/gridfan/pitwall/internal/domain/standing"
)

type stubRaceDataSource struct {
	sessionsByYear  map[int][]session.Session
	sessionsErr     map[int]error
	participants    map[int64][]driver.Participant
	participantsErr error
	championship    map[int64][]driver.ChampionshipEntry
	championshipErr error
	positions       map[string][]driver.PositionRecord
	positionsErr    map[string]error
}

func (s *stubRaceDataSource) FetchRaceSessions(_ context.Context, year int) ([]session.Session, error) {
	if err := s.sessionsErr[year]; err != nil {
		return nil, err
	}
	return s.sessionsByYear[year], nil
}

func (s *stubRaceDataSource) FetchParticipants(_ context.Context, sessionKey int64) ([]driver.Participant, error) {
	if s.participantsErr != nil {
		return nil, s.participantsErr
	}
	return s.participants[sessionKey], nil
}

func (s *stubRaceDataSource) FetchChampionship(_ context.Context, sessionKey int64) ([]driver.ChampionshipEntry, error) {
	if s.championshipErr != nil {
		return nil, s.championshipErr
	}
	return s.championship[sessionKey], nil
}

func (s *stubRaceDataSource) FetchPositions(_ context.Context, sessionKey int64, driverNumber int) ([]driver.PositionRecord, error) {
	key := positionKey(sessionKey, driverNumber)
	if err := s.positionsErr[key]; err != nil {
		return nil, err
	}
	return s.positions[key], nil
}

func positionKey(sessionKey int64, driverNumber int) string {
	return fmt.Sprintf("%d:%d", sessionKey, driverNumber)
}

func raceSession(key int64, year int, location string, start time.Time) session.Session {
	return session.Session{
		Key:       key,
		Year:      year,
		Location:  location,
		Type:      session.TypeRace,
		DateStart: start,
	}
}

func TestStandingsService_BuildStandings_RanksByPointsAndJoinsRoster(t *testing.T) {
	t.Parallel()

	source := &stubRaceDataSource{
		sessionsByYear: map[int][]session.Session{
			2025: {
				raceSession(9001, 2025, "Sakhir", time.Date(2025, 3, 2, 15, 0, 0, 0, time.UTC)),
				raceSession(9002, 2025, "Jeddah", time.Date(2025, 3, 9, 17, 0, 0, 0, time.UTC)),
			},
		},
		participants: map[int64][]driver.Participant{
			9002: {
				{Number: 1, FullName: "Max Verstappen", TeamName: "Red Bull Racing", TeamColour: "3671C6", HeadshotURL: "https://example.com/1.png"},
				{Number: 4, FullName: "Lando Norris", TeamName: "McLaren", TeamColour: "FF8000"},
				{Number: 16, FullName: "Charles Leclerc", TeamName: "Ferrari", TeamColour: ""},
			},
		},
		championship: map[int64][]driver.ChampionshipEntry{
			9002: {
				// Provider positions are deliberately wrong; ranking must come
				// from points alone.
				{Number: 16, Position: 9, Points: 61},
				{Number: 1, Position: 3, Points: 77},
				{Number: 4, Position: 1, Points: 77},
				{Number: 99, Position: 2, Points: 12},
			},
		},
	}
	service := NewStandingsService(source, nil, StandingsConfig{})

	set, err := service.BuildStandings(context.Background())
	if err != nil {
		t.Fatalf("BuildStandings error: %v", err)
	}
	if len(set.Drivers) != 4 {
		t.Fatalf("expected 4 driver rows, got %d", len(set.Drivers))
	}

	// Equal points keep provider order: 1 before 4.
	if set.Drivers[0].DriverNumber != 1 || set.Drivers[0].Position != 1 {
		t.Fatalf("unexpected rank 1 row: %+v", set.Drivers[0])
	}
	if set.Drivers[1].DriverNumber != 4 || set.Drivers[1].Position != 2 {
		t.Fatalf("unexpected rank 2 row: %+v", set.Drivers[1])
	}
	if set.Drivers[2].DriverNumber != 16 || set.Drivers[2].Position != 3 {
		t.Fatalf("unexpected rank 3 row: %+v", set.Drivers[2])
	}

	if got := set.Drivers[0].TeamColour; got != "#3671C6" {
		t.Fatalf("expected roster colour to be hex-prefixed, got %q", got)
	}
	if got := set.Drivers[2].TeamColour; got != "#E8002D" {
		t.Fatalf("expected static team colour for missing roster colour, got %q", got)
	}

	orphan := set.Drivers[3]
	if orphan.DriverNumber != 99 || orphan.Position != 4 {
		t.Fatalf("unexpected orphan row: %+v", orphan)
	}
	if orphan.DriverName != standing.UnknownName || orphan.TeamName != standing.UnknownName || orphan.TeamColour != standing.UnknownColour {
		t.Fatalf("expected sentinel values for missing roster record, got %+v", orphan)
	}
	if orphan.Wins != 0 || orphan.Podiums != 0 {
		t.Fatalf("expected zero-filled wins and podiums, got %+v", orphan)
	}
}

func TestStandingsService_BuildStandings_FoldsConstructors(t *testing.T) {
	t.Parallel()

	source := &stubRaceDataSource{
		sessionsByYear: map[int][]session.Session{
			2025: {raceSession(9010, 2025, "Suzuka", time.Date(2025, 4, 6, 6, 0, 0, 0, time.UTC))},
		},
		participants: map[int64][]driver.Participant{
			9010: {
				{Number: 1, FullName: "Max Verstappen", TeamName: "Red Bull Racing", TeamColour: "3671C6"},
				{Number: 22, FullName: "Yuki Tsunoda", TeamName: "Red Bull Racing", TeamColour: "3671C6"},
				{Number: 44, FullName: "Lewis Hamilton", TeamName: "Ferrari", TeamColour: "E8002D"},
			},
		},
		championship: map[int64][]driver.ChampionshipEntry{
			9010: {
				{Number: 1, Points: 50},
				{Number: 22, Points: 6},
				{Number: 44, Points: 40},
			},
		},
	}
	service := NewStandingsService(source, nil, StandingsConfig{})

	set, err := service.BuildStandings(context.Background())
	if err != nil {
		t.Fatalf("BuildStandings error: %v", err)
	}
	if len(set.Teams) != 2 {
		t.Fatalf("expected 2 constructor rows, got %d", len(set.Teams))
	}

	redBull := set.Teams[0]
	if redBull.TeamName != "Red Bull Racing" || redBull.Points != 56 || redBull.Position != 1 {
		t.Fatalf("unexpected leading constructor: %+v", redBull)
	}
	if redBull.TeamColour != "#3671C6" {
		t.Fatalf("expected first driver colour, got %q", redBull.TeamColour)
	}
	if set.Teams[1].TeamName != "Ferrari" || set.Teams[1].Points != 40 || set.Teams[1].Position != 2 {
		t.Fatalf("unexpected second constructor: %+v", set.Teams[1])
	}
}

func TestStandingsService_ResolveLatestRaceSession_FallsBackAcrossSeasons(t *testing.T) {
	t.Parallel()

	source := &stubRaceDataSource{
		sessionsErr: map[int]error{2025: errors.New("season not published")},
		sessionsByYear: map[int][]session.Session{
			2024: {
				raceSession(9101, 2024, "Sakhir", time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)),
				raceSession(9102, 2024, "Jeddah", time.Date(2024, 3, 9, 17, 0, 0, 0, time.UTC)),
			},
		},
	}
	service := NewStandingsService(source, nil, StandingsConfig{})

	got := service.ResolveLatestRaceSession(context.Background())
	if got.Key != 9102 {
		t.Fatalf("expected latest session of previous season, got key=%d", got.Key)
	}
}

func TestStandingsService_ResolveLatestRaceSession_SkipsNonRaceSessions(t *testing.T) {
	t.Parallel()

	qualifying := session.Session{
		Key:       9103,
		Year:      2025,
		Location:  "Jeddah",
		Type:      "Qualifying",
		DateStart: time.Date(2025, 3, 8, 17, 0, 0, 0, time.UTC),
	}
	source := &stubRaceDataSource{
		sessionsByYear: map[int][]session.Session{
			2025: {
				raceSession(9101, 2025, "Sakhir", time.Date(2025, 3, 2, 15, 0, 0, 0, time.UTC)),
				qualifying,
			},
		},
	}
	service := NewStandingsService(source, nil, StandingsConfig{})

	got := service.ResolveLatestRaceSession(context.Background())
	if got.Key != 9101 {
		t.Fatalf("expected last race session, got key=%d", got.Key)
	}
}

func TestStandingsService_ResolveLatestRaceSession_PinnedFallback(t *testing.T) {
	t.Parallel()

	source := &stubRaceDataSource{
		sessionsErr: map[int]error{
			2025: errors.New("down"),
			2024: errors.New("down"),
		},
	}
	service := NewStandingsService(source, nil, StandingsConfig{})

	got := service.ResolveLatestRaceSession(context.Background())
	if got.Key != defaultFallbackSessionKey {
		t.Fatalf("expected pinned fallback session key %d, got %d", defaultFallbackSessionKey, got.Key)
	}
}

func TestStandingsService_BuildStandings_DependencyFailure(t *testing.T) {
	t.Parallel()

	source := &stubRaceDataSource{
		sessionsByYear: map[int][]session.Session{
			2025: {raceSession(9020, 2025, "Monza", time.Date(2025, 9, 7, 13, 0, 0, 0, time.UTC))},
		},
		championshipErr: errors.New("connection reset"),
	}
	service := NewStandingsService(source, nil, StandingsConfig{})

	_, err := service.BuildStandings(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}
