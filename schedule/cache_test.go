package schedule_test

import (
	"testing"

	"github.com/warp/scheduling-engine/schedule"
)

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestCache_Load_ReflectsInputsExactly(t *testing.T) {
	// GIVEN: A cache with prior state
	// WHEN: Loading a new month's data
	// THEN: Only the new data is visible, nothing merged from before

	cache := schedule.NewCache()
	cache.SetHoursLocal(9, 9, "2024-12-01", schedule.NewHours(8))

	cache.Load(
		[]schedule.Allocation{
			{ProjectID: 1, PersonID: 2, Day: "2025-01-15", Hours: schedule.NewHours(4)},
			{ProjectID: 3, PersonID: 2, Day: "2025-01-16", Hours: schedule.NewHours(2.5)},
		},
		[]schedule.DailyTotal{
			{PersonID: 2, Day: "2025-01-15", Hours: schedule.NewHours(4)},
			{PersonID: 2, Day: "2025-01-16", Hours: schedule.NewHours(2.5)},
		},
	)

	if got := cache.GetHours(1, 2, "2025-01-15"); !got.Equal(schedule.NewHours(4)) {
		t.Errorf("GetHours = %s, want 4", got)
	}
	if got := cache.GetDailyTotal(2, "2025-01-16"); !got.Equal(schedule.NewHours(2.5)) {
		t.Errorf("GetDailyTotal = %s, want 2.5", got)
	}

	// Prior state is gone
	if got := cache.GetHours(9, 9, "2024-12-01"); !got.IsZero() {
		t.Errorf("stale cell survived Load: %s", got)
	}
	if cache.Len() != 2 {
		t.Errorf("expected 2 cells after load, got %d", cache.Len())
	}
}

func TestCache_AbsentKeysReturnZero(t *testing.T) {
	cache := schedule.NewCache()

	if got := cache.GetHours(1, 2, "2025-01-15"); !got.IsZero() {
		t.Errorf("GetHours on empty cache = %s", got)
	}
	if got := cache.GetDailyTotal(2, "2025-01-15"); !got.IsZero() {
		t.Errorf("GetDailyTotal on empty cache = %s", got)
	}
}

// =============================================================================
// INCREMENTAL MAINTENANCE TESTS
// =============================================================================

func TestCache_SetHoursLocal_Scenario(t *testing.T) {
	// The canonical edit sequence: create, add a second project on the
	// same day (overallocating), then zero the first cell.

	cache := schedule.NewCache()

	// Empty store -> set 4h
	cache.SetHoursLocal(1, 2, "2025-01-15", schedule.NewHours(4))
	if got := cache.GetHours(1, 2, "2025-01-15"); !got.Equal(schedule.NewHours(4)) {
		t.Errorf("GetHours = %s, want 4", got)
	}
	if got := cache.GetDailyTotal(2, "2025-01-15"); !got.Equal(schedule.NewHours(4)) {
		t.Errorf("GetDailyTotal = %s, want 4", got)
	}

	// Second project, same person and day -> total 10, overallocated
	cache.SetHoursLocal(3, 2, "2025-01-15", schedule.NewHours(6))
	total := cache.GetDailyTotal(2, "2025-01-15")
	if !total.Equal(schedule.NewHours(10)) {
		t.Errorf("GetDailyTotal = %s, want 10", total)
	}
	if !total.Overallocated() {
		t.Error("10h total must flag overallocation")
	}

	// Zero the first cell -> total drops to 6
	cache.SetHoursLocal(1, 2, "2025-01-15", schedule.ZeroHours())
	if got := cache.GetHours(1, 2, "2025-01-15"); !got.IsZero() {
		t.Errorf("GetHours after zeroing = %s", got)
	}
	if got := cache.GetDailyTotal(2, "2025-01-15"); !got.Equal(schedule.NewHours(6)) {
		t.Errorf("GetDailyTotal = %s, want 6", got)
	}
}

func TestCache_SetHoursLocal_OverwriteSameCell(t *testing.T) {
	// Re-editing the same cell must replace, not accumulate.
	cache := schedule.NewCache()

	cache.SetHoursLocal(1, 2, "2025-01-15", schedule.NewHours(3))
	cache.SetHoursLocal(1, 2, "2025-01-15", schedule.NewHours(7.5))

	if got := cache.GetHours(1, 2, "2025-01-15"); !got.Equal(schedule.NewHours(7.5)) {
		t.Errorf("GetHours = %s, want 7.5", got)
	}
	if got := cache.GetDailyTotal(2, "2025-01-15"); !got.Equal(schedule.NewHours(7.5)) {
		t.Errorf("GetDailyTotal = %s, want 7.5", got)
	}
}

func TestCache_Invariant_TotalsEqualSumOfCells(t *testing.T) {
	// After any sequence of SetHoursLocal calls, a person's daily total
	// must equal the sum of their cells on that day.

	cache := schedule.NewCache()
	edits := []struct {
		projectID int
		hours     float64
	}{
		{1, 4}, {2, 2}, {3, 0.5}, {1, 0}, {2, 8}, {3, 3.5}, {2, 0}, {1, 1},
	}

	for _, e := range edits {
		cache.SetHoursLocal(e.projectID, 7, "2025-03-10", schedule.NewHours(e.hours))

		sum := schedule.ZeroHours()
		for _, pid := range []int{1, 2, 3} {
			sum = sum.Add(cache.GetHours(pid, 7, "2025-03-10"))
		}
		if got := cache.GetDailyTotal(7, "2025-03-10"); !got.Equal(sum) {
			t.Fatalf("after edit (project %d, %gh): total %s != cell sum %s",
				e.projectID, e.hours, got, sum)
		}
	}
}

func TestCache_DaysAreIndependent(t *testing.T) {
	cache := schedule.NewCache()

	cache.SetHoursLocal(1, 2, "2025-01-15", schedule.NewHours(8))
	cache.SetHoursLocal(1, 2, "2025-01-16", schedule.NewHours(2))

	if got := cache.GetDailyTotal(2, "2025-01-15"); !got.Equal(schedule.NewHours(8)) {
		t.Errorf("day 15 total = %s, want 8", got)
	}
	if got := cache.GetDailyTotal(2, "2025-01-16"); !got.Equal(schedule.NewHours(2)) {
		t.Errorf("day 16 total = %s, want 2", got)
	}
}

// =============================================================================
// HOURS VALIDATION TESTS
// =============================================================================

func TestHours_Validate(t *testing.T) {
	cases := []struct {
		hours float64
		err   error
	}{
		{0, nil},
		{0.5, nil},
		{4, nil},
		{8, nil},
		{8.5, schedule.ErrHoursOutOfRange},
		{9, schedule.ErrHoursOutOfRange},
		{-1, schedule.ErrHoursOutOfRange},
		{8.3, schedule.ErrInvalidIncrement},
		{4.3, schedule.ErrInvalidIncrement},
		{0.25, schedule.ErrInvalidIncrement},
	}

	for _, c := range cases {
		got := schedule.NewHours(c.hours).Validate()
		if got != c.err {
			t.Errorf("Validate(%g) = %v, want %v", c.hours, got, c.err)
		}
	}
}

func TestHours_Overallocated(t *testing.T) {
	if schedule.NewHours(8).Overallocated() {
		t.Error("exactly 8h is not overallocated")
	}
	if !schedule.NewHours(8.5).Overallocated() {
		t.Error("8.5h is overallocated")
	}
}
