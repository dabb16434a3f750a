/*
Package schedule implements the allocation ledger and its derived aggregates.

PURPOSE:
  Tracks daily hour allocations of people to projects over a calendar
  month. An Allocation is one (project, person, day) cell holding between
  0.5 and 8 hours in half-hour steps; a person's DailyTotal is the sum of
  their hours across all projects on one day, and a total above 8 hours
  flags overallocation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Hours: a decimal hour quantity with the range/step validation rules
  - Allocation: a single (project, person, day) assignment
  - DailyTotal: the derived per-person per-day sum
  - Row: one project x person pair shown as a grid row
  - Person/Project: the entities the backing store manages

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for hour arithmetic, no float drift
  2. Deletion is absence: zero hours is never stored as a row
  3. The daily total is derived, never independently authoritative

SEE ALSO:
  - cache.go: session-local mirror maintaining DailyTotal incrementally
  - service.go: authoritative read/write path over the backing store
  - errors.go: validation sentinels
*/
package schedule

import (
	"github.com/shopspring/decimal"

	"github.com/warp/scheduling-engine/calendar"
)

// =============================================================================
// HOURS - Decimal hour quantity with allocation rules
// =============================================================================

// MaxDailyHours is the upper bound for a single allocation and the
// threshold above which a daily total counts as overallocated.
var MaxDailyHours = decimal.NewFromInt(8)

// HoursStep is the allocation granularity.
var HoursStep = decimal.NewFromFloat(0.5)

// Hours is an hour quantity within one allocation cell.
type Hours struct {
	Value decimal.Decimal
}

func NewHours(value float64) Hours {
	return Hours{Value: decimal.NewFromFloat(value)}
}

func ZeroHours() Hours {
	return Hours{Value: decimal.Zero}
}

func (h Hours) Add(other Hours) Hours { return Hours{Value: h.Value.Add(other.Value)} }
func (h Hours) Sub(other Hours) Hours { return Hours{Value: h.Value.Sub(other.Value)} }
func (h Hours) IsZero() bool          { return h.Value.IsZero() }
func (h Hours) Equal(other Hours) bool {
	return h.Value.Equal(other.Value)
}

// Float64 returns the quantity for JSON and storage boundaries.
// Half-hour steps are exactly representable, so no precision is lost.
func (h Hours) Float64() float64 {
	f, _ := h.Value.Float64()
	return f
}

func (h Hours) String() string { return h.Value.String() }

// Overallocated reports whether a daily total exceeds MaxDailyHours.
func (h Hours) Overallocated() bool {
	return h.Value.GreaterThan(MaxDailyHours)
}

// Validate checks the allocation rules: 0 <= hours <= 8, in 0.5 steps.
// The step check runs first so an off-grid value like 8.3 reports the
// increment violation rather than the range one.
func (h Hours) Validate() error {
	if !h.Value.Mod(HoursStep).IsZero() {
		return ErrInvalidIncrement
	}
	if h.Value.IsNegative() || h.Value.GreaterThan(MaxDailyHours) {
		return ErrHoursOutOfRange
	}
	return nil
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

// Allocation is a single (project, person, day) hours assignment.
// Rows with zero hours are never stored; deletion is absence.
type Allocation struct {
	ProjectID int
	PersonID  int
	Day       calendar.Day
	Hours     Hours
}

// Key returns the cell key used by the cache and the API.
func (a Allocation) Key() string {
	return calendar.AllocationKey(a.ProjectID, a.PersonID, a.Day)
}

// DailyTotal is the derived sum of one person's hours on one day,
// across all projects.
type DailyTotal struct {
	PersonID int
	Day      calendar.Day
	Hours    Hours
}

// Key returns the per-person day key.
func (t DailyTotal) Key() string {
	return calendar.DailyTotalKey(t.PersonID, t.Day)
}

// =============================================================================
// ENTITIES
// =============================================================================

// Person is a schedulable resource.
type Person struct {
	ID        int
	Firstname string
	Lastname  string
	Email     string
	Level     string
	Team      string
	Role      string
}

// Project is a client engagement people are allocated to.
type Project struct {
	ID     int
	Type   string
	Client string
	Order  string
	PM     string
}

// Row is one project x person pair with at least one allocation in the
// fetched month. Rows drive the grid's left-hand columns.
type Row struct {
	ProjectID     int
	ProjectType   string
	ProjectClient string
	ProjectOrder  string
	ProjectPM     string

	PersonID        int
	PersonFirstname string
	PersonLastname  string
	PersonEmail     string
	PersonLevel     string
	PersonTeam      string
	PersonRole      string
}
