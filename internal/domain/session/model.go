package session

import "time"

const TypeRace = "Race"

// Session is one scheduled competitive event as reported by the telemetry
// source. Sessions are read-only: this system never creates or mutates them.
type Session struct {
	Key              int64
	MeetingKey       int64
	Year             int
	Location         string
	CountryName      string
	CircuitShortName string
	Type             string
	Name             string
	DateStart        time.Time
}

func (s Session) IsRace() bool {
	return s.Type == TypeRace
}
