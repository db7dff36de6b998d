package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/gridfan/pitwall/internal/domain/driver"
	"github.com/gridfan/pitwall/internal/domain/session"
	"github.com/gridfan/pitwall/internal/domain/standing"
	"github.com/gridfan/pitwall/internal/platform/logging"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"
)

const defaultHistoryLimit = 8

type ProfileConfig struct {
	HistorySeasonYear int
	HistoryLimit      int
}

func normalizeProfileConfig(cfg ProfileConfig) ProfileConfig {
	if cfg.HistorySeasonYear <= 0 {
		cfg.HistorySeasonYear = defaultHistorySeasonYear
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	return cfg
}

// ProfileService assembles a single driver's standing plus recent race
// history.
type ProfileService struct {
	source    RaceDataSource
	standings *StandingsService
	logger    *logging.Logger
	cfg       ProfileConfig
}

func NewProfileService(source RaceDataSource, standings *StandingsService, logger *logging.Logger, cfg ProfileConfig) *ProfileService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ProfileService{
		source:    source,
		standings: standings,
		logger:    logger,
		cfg:       normalizeProfileConfig(cfg),
	}
}

// FetchHistory returns a driver's finishing records for the most recent races
// of the reference season, newest first. History is best effort: a session
// whose lookup fails is omitted, a season-level failure yields an empty
// slice, and the method never returns an error.
func (s *ProfileService) FetchHistory(ctx context.Context, driverNumber int) []driver.RaceResult {
	ctx, span := startUsecaseSpan(ctx, "ProfileService.FetchHistory")
	defer span.End()

	if driverNumber <= 0 {
		return []driver.RaceResult{}
	}

	sessions, err := s.source.FetchRaceSessions(ctx, s.cfg.HistorySeasonYear)
	if err != nil {
		s.logger.WarnContext(ctx, "fetch history: season fetch failed", "year", s.cfg.HistorySeasonYear, "driver_number", driverNumber, "error", err)
		return []driver.RaceResult{}
	}

	recent := recentSessionsNewestFirst(sessions, s.cfg.HistoryLimit)
	if len(recent) == 0 {
		return []driver.RaceResult{}
	}

	// Per-index slots keep the newest-first order regardless of which lookup
	// finishes first.
	slots := make([]*driver.RaceResult, len(recent))
	lookup := func(i int, sess session.Session) {
		records, err := s.source.FetchPositions(ctx, sess.Key, driverNumber)
		if err != nil {
			s.logger.WarnContext(ctx, "fetch history: position lookup failed", "session_key", sess.Key, "driver_number", driverNumber, "error", err)
			return
		}
		if len(records) == 0 {
			return
		}
		final := records[len(records)-1]
		slots[i] = &driver.RaceResult{
			MeetingKey: sess.MeetingKey,
			SessionKey: sess.Key,
			Date:       sess.DateStart,
			Location:   sess.Location,
			Position:   final.Position,
		}
	}

	// One worker per session: every position lookup must be in flight before
	// any is awaited, so total latency is bounded by the slowest single call.
	workers, err := ants.NewPool(len(recent))
	if err != nil {
		s.logger.WarnContext(ctx, "fetch history: worker pool unavailable, running sequentially", "error", err)
		for i, sess := range recent {
			lookup(i, sess)
		}
	} else {
		defer workers.Release()

		var wg sync.WaitGroup
		for i, sess := range recent {
			i, sess := i, sess
			wg.Add(1)
			if err := workers.Submit(func() {
				defer wg.Done()
				lookup(i, sess)
			}); err != nil {
				wg.Done()
				lookup(i, sess)
			}
		}
		wg.Wait()
	}

	out := make([]driver.RaceResult, 0, len(slots))
	for _, slot := range slots {
		if slot != nil {
			out = append(out, *slot)
		}
	}
	return out
}

// BuildProfile combines the driver's current standing with their recent race
// history. The second return reports whether the driver exists in the current
// championship.
func (s *ProfileService) BuildProfile(ctx context.Context, driverNumber int) (standing.Profile, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "ProfileService.BuildProfile")
	defer span.End()

	if driverNumber <= 0 {
		return standing.Profile{}, false, fmt.Errorf("%w: driver number must be greater than zero", ErrInvalidInput)
	}

	var set standing.Set
	var history []driver.RaceResult

	group := pool.New().WithErrors().WithContext(ctx)
	group.Go(func(ctx context.Context) error {
		built, err := s.standings.BuildStandings(ctx)
		if err != nil {
			return err
		}
		set = built
		return nil
	})
	group.Go(func(ctx context.Context) error {
		history = s.FetchHistory(ctx, driverNumber)
		return nil
	})
	if err := group.Wait(); err != nil {
		return standing.Profile{}, false, err
	}

	for _, row := range set.Drivers {
		if row.DriverNumber == driverNumber {
			return standing.Profile{Standing: row, History: history}, true, nil
		}
	}
	return standing.Profile{}, false, nil
}

func recentSessionsNewestFirst(sessions []session.Session, limit int) []session.Session {
	races := make([]session.Session, 0, len(sessions))
	for _, sess := range sessions {
		if sess.Key > 0 && sess.IsRace() {
			races = append(races, sess)
		}
	}
	if len(races) > limit {
		races = races[len(races)-limit:]
	}

	out := make([]session.Session, 0, len(races))
	for i := len(races) - 1; i >= 0; i-- {
		out = append(out, races[i])
	}
	return out
}
