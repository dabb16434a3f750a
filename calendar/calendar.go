/*
Package calendar provides pure date derivation for the scheduling grid.

PURPOSE:
  Turns a (month, year) pair into the working-day list, ISO-8601 week
  groupings, and display labels that drive the scheduling grid layout.
  Also owns the allocation cell key format shared between the cache,
  the service, and the API.

KEY CONCEPTS:
  - Day: an ISO calendar date string ("2006-01-02"). Days are the keys
    of everything downstream, so the string form is canonical.
  - Working day: Monday-Friday. Weekends are excluded from the grid's
    day list; nothing at the storage layer prevents a weekend allocation.
  - ISO week: Monday-start, week 1 contains January 4. Computed via the
    Thursday-shift algorithm, so a day near a year boundary can report a
    week number belonging to the adjacent year's scheme. That is the
    ISO-8601 definition, not a bug.

DESIGN PRINCIPLES:
  1. Pure: no I/O, no clocks except Now()/CurrentMonthYear convenience.
  2. Deterministic: same inputs, same outputs, always UTC.
  3. String-keyed: Day round-trips through JSON and map keys unchanged.

SEE ALSO:
  - schedule/cache.go: keys its maps by Day via AllocationKey
  - schedule/grid.go: lays out WeeksOfMonth as grid columns
*/
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayFormat is the canonical layout for Day strings.
const DayFormat = "2006-01-02"

// Day is an ISO calendar date string ("YYYY-MM-DD").
type Day = string

// NewDay builds a Day from its components.
func NewDay(year int, month time.Month, dayOfMonth int) Day {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), dayOfMonth)
}

// ParseDay parses a Day into a UTC time at midnight.
func ParseDay(d Day) (time.Time, error) {
	t, err := time.ParseInLocation(DayFormat, d, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", d, err)
	}
	return t, nil
}

func mustParseDay(d Day) time.Time {
	t, err := ParseDay(d)
	if err != nil {
		panic(err)
	}
	return t
}

// =============================================================================
// MONTH DERIVATION
// =============================================================================

// DaysInMonth returns the number of calendar days in a month,
// accounting for leap years.
func DaysInMonth(month time.Month, year int) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstDayOfMonth returns the first calendar day of the month.
func FirstDayOfMonth(month time.Month, year int) Day {
	return NewDay(year, month, 1)
}

// LastDayOfMonth returns the last calendar day of the month.
func LastDayOfMonth(month time.Month, year int) Day {
	return NewDay(year, month, DaysInMonth(month, year))
}

// IsWeekend reports whether a day falls on Saturday or Sunday.
func IsWeekend(d Day) bool {
	wd := mustParseDay(d).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WorkingDays returns every Monday-Friday day of the month as Day strings,
// in ascending date order.
func WorkingDays(month time.Month, year int) []Day {
	count := DaysInMonth(month, year)
	days := make([]Day, 0, count)
	for dom := 1; dom <= count; dom++ {
		d := NewDay(year, month, dom)
		if !IsWeekend(d) {
			days = append(days, d)
		}
	}
	return days
}

// =============================================================================
// ISO WEEK
// =============================================================================

// ISOWeekNumber returns the ISO-8601 week number for a day: shift the date
// to the Thursday of its week (weeks start Monday), then count weeks from
// January 1 of the Thursday's year. Week 1 is the week containing January 4.
//
// Late-December days can report week 1 of the next year, and early-January
// days can report week 52/53 of the previous year. Callers group by the
// number as-is.
func ISOWeekNumber(d Day) int {
	t := mustParseDay(d)

	// Monday=1 .. Sunday=7
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	thursday := t.AddDate(0, 0, 4-weekday)

	yearStart := time.Date(thursday.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	daysSince := int(thursday.Sub(yearStart).Hours() / 24)
	return daysSince/7 + 1
}

// Week is a group of consecutive working days sharing an ISO week number.
type Week struct {
	Number int    `json:"week"`
	Days   []Day  `json:"days"`
	Label  string `json:"label"`
}

// WeeksOfMonth groups the month's working days by ISO week number.
// Days stay in ascending date order inside each group; groups are ordered
// by first occurrence, which for a single month is ascending date order.
func WeeksOfMonth(month time.Month, year int) []Week {
	var weeks []Week
	index := make(map[int]int)

	for _, d := range WorkingDays(month, year) {
		num := ISOWeekNumber(d)
		i, ok := index[num]
		if !ok {
			i = len(weeks)
			index[num] = i
			weeks = append(weeks, Week{Number: num, Label: "W" + strconv.Itoa(num)})
		}
		weeks[i].Days = append(weeks[i].Days, d)
	}
	return weeks
}

// =============================================================================
// DISPLAY LABELS
// =============================================================================

// DayLabel formats a day as "day/month" (e.g. "15/1") for column headers.
func DayLabel(d Day) string {
	t := mustParseDay(d)
	return fmt.Sprintf("%d/%d", t.Day(), int(t.Month()))
}

// WeekdayAbbrev returns the 3-letter weekday name (e.g. "Mon").
func WeekdayAbbrev(d Day) string {
	return mustParseDay(d).Format("Mon")
}

// MonthName returns the full English month name.
func MonthName(month time.Month) string {
	return month.String()
}

// CurrentMonthYear returns the current month and year in UTC.
func CurrentMonthYear() (time.Month, int) {
	now := time.Now().UTC()
	return now.Month(), now.Year()
}

// =============================================================================
// ALLOCATION KEYS
// =============================================================================

// AllocationKey builds the stable cell key "projectID-personID-day".
// The day itself contains the delimiter, so ParseAllocationKey consumes
// the two integers first and treats the remainder as the day.
func AllocationKey(projectID, personID int, d Day) string {
	return fmt.Sprintf("%d-%d-%s", projectID, personID, d)
}

// DailyTotalKey builds the per-person day key "personID-day".
func DailyTotalKey(personID int, d Day) string {
	return fmt.Sprintf("%d-%s", personID, d)
}

// ParseAllocationKey recovers (projectID, personID, day) from a key built
// by AllocationKey.
func ParseAllocationKey(key string) (projectID, personID int, d Day, err error) {
	parts := strings.SplitN(key, "-", 3)
	if len(parts) != 3 {
		return 0, 0, "", fmt.Errorf("malformed allocation key %q", key)
	}
	projectID, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, "", fmt.Errorf("malformed allocation key %q: %w", key, err)
	}
	personID, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, "", fmt.Errorf("malformed allocation key %q: %w", key, err)
	}
	return projectID, personID, parts[2], nil
}
