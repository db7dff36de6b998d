package driver

import "time"

// Participant is a driver entered in one session. Identity is the racing
// number, which is only unique within a session: the same physical driver may
// show up under a different team later in the season.
type Participant struct {
	Number      int
	FullName    string
	TeamName    string
	TeamColour  string
	HeadshotURL string
}

// ChampionshipEntry is a driver's cumulative championship standing as of a
// session. The reported position is treated as advisory only; the standings
// builder re-ranks by points.
type ChampionshipEntry struct {
	Number   int
	Position int
	Points   float64
}

// PositionRecord is one element of the per-session position time series. The
// source publishes position changes over time, not a final classification;
// the last record is the closest available proxy for the final result.
type PositionRecord struct {
	Position int
	Date     time.Time
}

// RaceResult is a driver's finishing record for one historical session.
// Points is reserved for a future points-by-position table and is currently
// always zero.
type RaceResult struct {
	MeetingKey int64
	SessionKey int64
	Date       time.Time
	Location   string
	Position   int
	Points     float64
}
