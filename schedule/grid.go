/*
grid.go - Grid composition: weeks x filtered rows x cells

PURPOSE:
  Combines calendar derivation with the month's rows and the session
  cache to produce the matrix the scheduling grid renders. Rows are
  filtered client-side (client, PM, person, team, free-text search);
  each cell carries its hours, the person's daily total, and the
  overallocation flag.
*/
package schedule

import (
	"strings"
	"time"

	"github.com/warp/scheduling-engine/calendar"
)

// Filters narrows the visible rows. Empty slices match everything.
type Filters struct {
	Clients   []string
	PMs       []string
	PersonIDs []int
	Teams     []string

	// Search matches case-insensitively against project type, client
	// and order code.
	Search string
}

// Matches reports whether a row passes every active filter.
func (f Filters) Matches(row Row) bool {
	if len(f.Clients) > 0 && !containsString(f.Clients, row.ProjectClient) {
		return false
	}
	if len(f.PMs) > 0 && !containsString(f.PMs, row.ProjectPM) {
		return false
	}
	if len(f.PersonIDs) > 0 && !containsInt(f.PersonIDs, row.PersonID) {
		return false
	}
	if len(f.Teams) > 0 && !containsString(f.Teams, row.PersonTeam) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystack := strings.ToLower(row.ProjectType + " " + row.ProjectClient + " " + row.ProjectOrder)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}

// Cell is one editable day slot in a grid row.
type Cell struct {
	Day           calendar.Day
	Label         string // "15/1"
	Weekday       string // "Wed"
	Hours         Hours
	DailyTotal    Hours
	Overallocated bool
}

// GridRow is a filtered schedule row with its cells for the month.
type GridRow struct {
	Row   Row
	Cells []Cell
}

// Grid is the full month matrix.
type Grid struct {
	Month int
	Year  int
	Weeks []calendar.Week
	Rows  []GridRow

	// TotalRows counts rows before filtering, for the "showing X of Y"
	// footer.
	TotalRows int
}

// BuildGrid composes the month grid from the derived calendar, the fetched
// rows and the session cache. Pure with respect to its inputs.
func BuildGrid(month, year int, rows []Row, filters Filters, cache *Cache) Grid {
	weeks := calendar.WeeksOfMonth(time.Month(month), year)

	var days []calendar.Day
	for _, w := range weeks {
		days = append(days, w.Days...)
	}

	grid := Grid{Month: month, Year: year, Weeks: weeks, TotalRows: len(rows)}

	for _, row := range rows {
		if !filters.Matches(row) {
			continue
		}

		cells := make([]Cell, len(days))
		for i, d := range days {
			total := cache.GetDailyTotal(row.PersonID, d)
			cells[i] = Cell{
				Day:           d,
				Label:         calendar.DayLabel(d),
				Weekday:       calendar.WeekdayAbbrev(d),
				Hours:         cache.GetHours(row.ProjectID, row.PersonID, d),
				DailyTotal:    total,
				Overallocated: total.Overallocated(),
			}
		}
		grid.Rows = append(grid.Rows, GridRow{Row: row, Cells: cells})
	}

	return grid
}
