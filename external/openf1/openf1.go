package openf1

// Wire payloads as returned by the OpenF1 REST API. Every endpoint used here
// returns a bare JSON array, not an envelope.

type sessionItem struct {
	SessionKey       int64  `json:"session_key"`
	MeetingKey       int64  `json:"meeting_key"`
	Year             int    `json:"year"`
	Location         string `json:"location"`
	CountryName      string `json:"country_name"`
	CircuitShortName string `json:"circuit_short_name"`
	SessionType      string `json:"session_type"`
	SessionName      string `json:"session_name"`
	DateStart        string `json:"date_start"`
}

type driverItem struct {
	DriverNumber int    `json:"driver_number"`
	FullName     string `json:"full_name"`
	TeamName     string `json:"team_name"`
	TeamColour   string `json:"team_colour"`
	HeadshotURL  string `json:"headshot_url"`
}

type championshipItem struct {
	DriverNumber    int     `json:"driver_number"`
	PositionCurrent int     `json:"position_current"`
	PointsCurrent   float64 `json:"points_current"`
}

type positionItem struct {
	DriverNumber int    `json:"driver_number"`
	Position     int    `json:"position"`
	Date         string `json:"date"`
}
