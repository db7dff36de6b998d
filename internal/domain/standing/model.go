package standing

import "github.com/gridfan/pitwall/internal/domain/driver"

// Sentinel values used when a championship entry has no matching roster
// record. Partial data beats a dropped row: the entry still surfaces.
const (
	UnknownName   = "Unknown"
	UnknownColour = "#FFF"
	DefaultColour = "#FFFFFF"
)

// DriverStanding is this system's re-derived championship row. Position is
// always the dense 1-based rank after a stable points-descending sort; the
// position reported by the source is never used as the sort key.
//
// Wins and Podiums are zero-filled: the source cannot supply per-driver
// aggregates without a per-race query fan-out this pipeline does not perform.
type DriverStanding struct {
	Position     int
	DriverNumber int
	DriverName   string
	TeamName     string
	Points       float64
	Wins         int
	Podiums      int
	TeamColour   string
	HeadshotURL  string
}

// ConstructorStanding aggregates DriverStandings by team name. Points is the
// exact sum of the team's driver points; the colour is seeded by the team's
// first-seen driver.
type ConstructorStanding struct {
	Position   int
	TeamName   string
	Points     float64
	Wins       int
	Podiums    int
	TeamColour string
}

// Set is the joined output of one standings build.
type Set struct {
	Drivers []DriverStanding
	Teams   []ConstructorStanding
}

// Profile combines a driver's current standing with their recent race history.
type Profile struct {
	Standing DriverStanding
	History  []driver.RaceResult
}
