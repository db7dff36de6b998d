package httpapi

import (
	"time"

	"github.com/gridfan/pitwall/internal/domain/driver"
	"github.com/gridfan/pitwall/internal/domain/standing"
	"github.com/gridfan/pitwall/internal/usecase"
)

type driverStandingDTO struct {
	Position     int     `json:"position"`
	DriverNumber int     `json:"driver_number"`
	DriverName   string  `json:"driver_name"`
	TeamName     string  `json:"team_name"`
	Points       float64 `json:"points"`
	Wins         int     `json:"wins"`
	Podiums      int     `json:"podiums"`
	TeamColour   string  `json:"team_colour"`
	HeadshotURL  string  `json:"headshot_url,omitempty"`
}

type constructorStandingDTO struct {
	Position   int     `json:"position"`
	TeamName   string  `json:"team_name"`
	Points     float64 `json:"points"`
	Wins       int     `json:"wins"`
	Podiums    int     `json:"podiums"`
	TeamColour string  `json:"team_colour"`
}

type standingsDTO struct {
	Drivers      []driverStandingDTO      `json:"drivers"`
	Constructors []constructorStandingDTO `json:"constructors"`
}

type raceResultDTO struct {
	MeetingKey int64     `json:"meeting_key"`
	SessionKey int64     `json:"session_key"`
	Date       time.Time `json:"date"`
	Location   string    `json:"location"`
	Position   int       `json:"position"`
	Points     float64   `json:"points"`
}

type driverProfileDTO struct {
	Standing driverStandingDTO `json:"standing"`
	History  []raceResultDTO   `json:"history"`
}

type predictionRequestDTO struct {
	Driver       string `json:"driver" validate:"required"`
	Circuit      string `json:"circuit" validate:"required"`
	GridPosition int    `json:"grid_position" validate:"required,min=1,max=20"`
	RecentForm   string `json:"recent_form" validate:"required,oneof=Excellent Good Average Poor"`
	Weather      string `json:"weather" validate:"required,oneof=Dry Mixed Wet"`
}

type predictionFactorDTO struct {
	Factor string `json:"factor"`
	Impact string `json:"impact"`
	Icon   string `json:"icon"`
}

type predictionDTO struct {
	Driver              string                `json:"driver"`
	Circuit             string                `json:"circuit"`
	PodiumProbability   float64               `json:"podium_probability"`
	PredictedPosition   int                   `json:"predicted_position"`
	Confidence          string                `json:"confidence"`
	ContributingFactors []predictionFactorDTO `json:"contributing_factors"`
}

type referenceDriversDTO struct {
	Count   int      `json:"count"`
	Drivers []string `json:"drivers"`
}

type referenceCircuitsDTO struct {
	Count    int      `json:"count"`
	Circuits []string `json:"circuits"`
}

func driverStandingToDTO(row standing.DriverStanding) driverStandingDTO {
	return driverStandingDTO{
		Position:     row.Position,
		DriverNumber: row.DriverNumber,
		DriverName:   row.DriverName,
		TeamName:     row.TeamName,
		Points:       row.Points,
		Wins:         row.Wins,
		Podiums:      row.Podiums,
		TeamColour:   row.TeamColour,
		HeadshotURL:  row.HeadshotURL,
	}
}

func constructorStandingToDTO(row standing.ConstructorStanding) constructorStandingDTO {
	return constructorStandingDTO{
		Position:   row.Position,
		TeamName:   row.TeamName,
		Points:     row.Points,
		Wins:       row.Wins,
		Podiums:    row.Podiums,
		TeamColour: row.TeamColour,
	}
}

func standingsToDTO(set standing.Set) standingsDTO {
	drivers := make([]driverStandingDTO, 0, len(set.Drivers))
	for _, row := range set.Drivers {
		drivers = append(drivers, driverStandingToDTO(row))
	}
	constructors := make([]constructorStandingDTO, 0, len(set.Teams))
	for _, row := range set.Teams {
		constructors = append(constructors, constructorStandingToDTO(row))
	}
	return standingsDTO{
		Drivers:      drivers,
		Constructors: constructors,
	}
}

func raceResultToDTO(row driver.RaceResult) raceResultDTO {
	return raceResultDTO{
		MeetingKey: row.MeetingKey,
		SessionKey: row.SessionKey,
		Date:       row.Date,
		Location:   row.Location,
		Position:   row.Position,
		Points:     row.Points,
	}
}

func profileToDTO(profile standing.Profile) driverProfileDTO {
	history := make([]raceResultDTO, 0, len(profile.History))
	for _, row := range profile.History {
		history = append(history, raceResultToDTO(row))
	}
	return driverProfileDTO{
		Standing: driverStandingToDTO(profile.Standing),
		History:  history,
	}
}

func predictionToDTO(result usecase.PredictionResult) predictionDTO {
	factors := make([]predictionFactorDTO, 0, len(result.ContributingFactors))
	for _, item := range result.ContributingFactors {
		factors = append(factors, predictionFactorDTO{
			Factor: item.Factor,
			Impact: item.Impact,
			Icon:   item.Icon,
		})
	}
	return predictionDTO{
		Driver:              result.Driver,
		Circuit:             result.Circuit,
		PodiumProbability:   result.PodiumProbability,
		PredictedPosition:   result.PredictedPosition,
		Confidence:          result.Confidence,
		ContributingFactors: factors,
	}
}
