/*
dto.go - Request/response data structures for the scheduling API

PURPOSE:
  Defines the JSON shapes exchanged with the grid frontend. Allocations
  and daily totals travel as flat maps keyed by their composite cell
  keys so the client can index them in O(1) while rendering.

KEY FORMATS:
  Allocations:  "{projectID}-{personID}-{date}"  e.g. "3-7-2025-01-15"
  Daily totals: "{personID}-{date}"              e.g. "7-2025-01-15"

SEE ALSO:
  - handlers.go: Handlers producing these DTOs
  - calendar: Key construction and parsing
*/
package api

import (
	"time"

	"github.com/warp/scheduling-engine/calendar"
	"github.com/warp/scheduling-engine/schedule"
)

// =============================================================================
// SCHEDULING DTOs
// =============================================================================

// MonthResponse is the full payload for one month of the grid:
// calendar weeks, rows, allocation maps and filter options.
type MonthResponse struct {
	Month int             `json:"month"`
	Year  int             `json:"year"`
	Weeks []calendar.Week `json:"weeks"`

	Rows        []RowDTO           `json:"rows"`
	Allocations map[string]float64 `json:"allocations"`
	DailyTotals map[string]float64 `json:"dailyTotals"`

	Clients []string    `json:"clients"`
	PMs     []string    `json:"pms"`
	Teams   []string    `json:"teams"`
	People  []PersonDTO `json:"people"`
}

// RowDTO is one project x person pair shown as a grid row.
type RowDTO struct {
	ProjectID     int    `json:"projectId"`
	ProjectType   string `json:"projectType"`
	ProjectClient string `json:"projectClient"`
	ProjectOrder  string `json:"projectOrder"`
	ProjectPM     string `json:"projectPm"`

	PersonID        int    `json:"personId"`
	PersonFirstname string `json:"personFirstname"`
	PersonLastname  string `json:"personLastname"`
	PersonEmail     string `json:"personEmail"`
	PersonLevel     string `json:"personLevel"`
	PersonTeam      string `json:"personTeam"`
}

// CommitHoursRequest sets one cell's hours. Zero hours clears the cell.
type CommitHoursRequest struct {
	ProjectID int     `json:"projectId"`
	PersonID  int     `json:"personId"`
	Date      string  `json:"date"`
	Hours     float64 `json:"hours"`
}

// CommitHoursResponse reports the commit outcome. DailyTotal is the
// authoritative per-person sum for the affected day, recomputed by the
// store, and is present only on success.
type CommitHoursResponse struct {
	Success    bool     `json:"success"`
	DailyTotal *float64 `json:"dailyTotal,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// =============================================================================
// ENTITY DTOs
// =============================================================================

type PersonDTO struct {
	ID        int    `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Level     string `json:"level,omitempty"`
	Team      string `json:"team,omitempty"`
	Role      string `json:"role,omitempty"`
}

type ProjectDTO struct {
	ID     int    `json:"id"`
	Type   string `json:"type"`
	Client string `json:"client"`
	Order  string `json:"order"`
	PM     string `json:"pm"`
}

// SavePersonRequest creates or updates a person. A zero ID inserts.
type SavePersonRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Level     string `json:"level"`
	Team      string `json:"team"`
	Role      string `json:"role"`
}

// SaveProjectRequest creates or updates a project. A zero ID inserts.
type SaveProjectRequest struct {
	Type   string `json:"type"`
	Client string `json:"client"`
	Order  string `json:"order"`
	PM     string `json:"pm"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toRowDTO(r schedule.Row) RowDTO {
	return RowDTO{
		ProjectID:     r.ProjectID,
		ProjectType:   r.ProjectType,
		ProjectClient: r.ProjectClient,
		ProjectOrder:  r.ProjectOrder,
		ProjectPM:     r.ProjectPM,

		PersonID:        r.PersonID,
		PersonFirstname: r.PersonFirstname,
		PersonLastname:  r.PersonLastname,
		PersonEmail:     r.PersonEmail,
		PersonLevel:     r.PersonLevel,
		PersonTeam:      r.PersonTeam,
	}
}

func toPersonDTO(p schedule.Person) PersonDTO {
	return PersonDTO{
		ID:        p.ID,
		Firstname: p.Firstname,
		Lastname:  p.Lastname,
		Email:     p.Email,
		Level:     p.Level,
		Team:      p.Team,
		Role:      p.Role,
	}
}

func toProjectDTO(p schedule.Project) ProjectDTO {
	return ProjectDTO{
		ID:     p.ID,
		Type:   p.Type,
		Client: p.Client,
		Order:  p.Order,
		PM:     p.PM,
	}
}

func toMonthResponse(data *schedule.MonthData) MonthResponse {
	resp := MonthResponse{
		Month: data.Month,
		Year:  data.Year,
		Weeks: calendar.WeeksOfMonth(time.Month(data.Month), data.Year),

		Rows:        make([]RowDTO, len(data.Rows)),
		Allocations: make(map[string]float64, len(data.Allocations)),
		DailyTotals: make(map[string]float64, len(data.DailyTotals)),

		Clients: data.Clients,
		PMs:     data.PMs,
		Teams:   data.Teams,
		People:  make([]PersonDTO, len(data.People)),
	}

	for i, r := range data.Rows {
		resp.Rows[i] = toRowDTO(r)
	}
	for _, a := range data.Allocations {
		resp.Allocations[a.Key()] = a.Hours.Float64()
	}
	for _, t := range data.DailyTotals {
		resp.DailyTotals[t.Key()] = t.Hours.Float64()
	}
	for i, p := range data.People {
		resp.People[i] = toPersonDTO(p)
	}

	return resp
}
