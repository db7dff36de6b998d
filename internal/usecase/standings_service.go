package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/gridfan/pitwall/internal/domain/driver"
	"github.com/gridfan/pitwall/internal/domain/session"
	"github.com/gridfan/pitwall/internal/domain/standing"
	"github.com/gridfan/pitwall/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultTargetSeasonYear   = 2025
	defaultHistorySeasonYear  = 2024
	defaultFallbackSessionKey = 9472
)

type StandingsConfig struct {
	TargetSeasonYear   int
	HistorySeasonYear  int
	FallbackSessionKey int64
}

func normalizeStandingsConfig(cfg StandingsConfig) StandingsConfig {
	if cfg.TargetSeasonYear <= 0 {
		cfg.TargetSeasonYear = defaultTargetSeasonYear
	}
	if cfg.HistorySeasonYear <= 0 {
		cfg.HistorySeasonYear = defaultHistorySeasonYear
	}
	if cfg.FallbackSessionKey <= 0 {
		cfg.FallbackSessionKey = defaultFallbackSessionKey
	}
	return cfg
}

// StandingsService derives championship tables from raw telemetry reads.
type StandingsService struct {
	source RaceDataSource
	logger *logging.Logger
	cfg    StandingsConfig
}

func NewStandingsService(source RaceDataSource, logger *logging.Logger, cfg StandingsConfig) *StandingsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StandingsService{
		source: source,
		logger: logger,
		cfg:    normalizeStandingsConfig(cfg),
	}
}

// ResolveLatestRaceSession finds the most recent race session to read the
// championship from. It tries the target season, then the previous season,
// then falls back to a pinned session key. Resolution never fails: a provider
// outage here degrades the answer, it does not take the endpoint down.
func (s *StandingsService) ResolveLatestRaceSession(ctx context.Context) session.Session {
	ctx, span := startUsecaseSpan(ctx, "StandingsService.ResolveLatestRaceSession")
	defer span.End()

	for _, year := range []int{s.cfg.TargetSeasonYear, s.cfg.HistorySeasonYear} {
		sessions, err := s.source.FetchRaceSessions(ctx, year)
		if err != nil {
			s.logger.WarnContext(ctx, "resolve race session: season fetch failed", "year", year, "error", err)
			continue
		}
		if latest, ok := latestSession(sessions); ok {
			return latest
		}
		s.logger.WarnContext(ctx, "resolve race session: season has no race sessions", "year", year)
	}

	s.logger.WarnContext(ctx, "resolve race session: falling back to pinned session", "session_key", s.cfg.FallbackSessionKey)
	return session.Session{
		Key:  s.cfg.FallbackSessionKey,
		Year: s.cfg.HistorySeasonYear,
	}
}

// BuildStandings produces the full driver and constructor tables as of the
// latest resolved race session.
func (s *StandingsService) BuildStandings(ctx context.Context) (standing.Set, error) {
	ctx, span := startUsecaseSpan(ctx, "StandingsService.BuildStandings")
	defer span.End()

	latest := s.ResolveLatestRaceSession(ctx)

	var participants []driver.Participant
	var entries []driver.ChampionshipEntry

	group := pool.New().WithErrors().WithContext(ctx)
	group.Go(func(ctx context.Context) error {
		items, err := s.source.FetchParticipants(ctx, latest.Key)
		if err != nil {
			return fmt.Errorf("fetch roster: %w", err)
		}
		participants = items
		return nil
	})
	group.Go(func(ctx context.Context) error {
		items, err := s.source.FetchChampionship(ctx, latest.Key)
		if err != nil {
			return fmt.Errorf("fetch championship: %w", err)
		}
		entries = items
		return nil
	})
	if err := group.Wait(); err != nil {
		if stderrors.Is(err, ErrDependencyUnavailable) || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return standing.Set{}, err
		}
		return standing.Set{}, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	drivers := joinDriverStandings(entries, participants)
	return standing.Set{
		Drivers: drivers,
		Teams:   foldConstructorStandings(drivers),
	}, nil
}

// latestSession picks the last race in provider order. The provider is
// queried with a race filter, but mixed payloads have been observed, so
// non-race sessions are skipped here too.
func latestSession(sessions []session.Session) (session.Session, bool) {
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].Key > 0 && sessions[i].IsRace() {
			return sessions[i], true
		}
	}
	return session.Session{}, false
}

// joinDriverStandings merges the championship table with the session roster.
// The championship side drives the row set; a missing roster record degrades
// the row to sentinel values instead of dropping it. Rows are re-ranked by
// points, stable on the provider's order, and the provider's own position is
// discarded.
func joinDriverStandings(entries []driver.ChampionshipEntry, participants []driver.Participant) []standing.DriverStanding {
	byNumber := make(map[int]driver.Participant, len(participants))
	for _, p := range participants {
		byNumber[p.Number] = p
	}

	rows := make([]standing.DriverStanding, 0, len(entries))
	for _, entry := range entries {
		row := standing.DriverStanding{
			DriverNumber: entry.Number,
			Points:       entry.Points,
			DriverName:   standing.UnknownName,
			TeamName:     standing.UnknownName,
			TeamColour:   standing.UnknownColour,
		}
		if p, ok := byNumber[entry.Number]; ok {
			if p.FullName != "" {
				row.DriverName = p.FullName
			}
			if p.TeamName != "" {
				row.TeamName = p.TeamName
			}
			row.TeamColour = standing.ResolveColour(p.TeamColour, p.TeamName)
			row.HeadshotURL = p.HeadshotURL
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Points > rows[j].Points
	})
	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}

// foldConstructorStandings aggregates ranked driver rows into one row per
// team. Points are summed exactly; the colour comes from the team's first
// ranked driver.
func foldConstructorStandings(drivers []standing.DriverStanding) []standing.ConstructorStanding {
	index := make(map[string]int, 16)
	teams := make([]standing.ConstructorStanding, 0, 16)
	for _, row := range drivers {
		i, ok := index[row.TeamName]
		if !ok {
			i = len(teams)
			index[row.TeamName] = i
			teams = append(teams, standing.ConstructorStanding{
				TeamName:   row.TeamName,
				TeamColour: row.TeamColour,
			})
		}
		teams[i].Points += row.Points
		teams[i].Wins += row.Wins
		teams[i].Podiums += row.Podiums
	}

	sort.SliceStable(teams, func(i, j int) bool {
		return teams[i].Points > teams[j].Points
	})
	for i := range teams {
		teams[i].Position = i + 1
	}
	return teams
}
