/*
service.go - Authoritative read/write path for allocations

PURPOSE:
  The service sits between the UI and the backing store. Reads assemble a
  full month of scheduling data from independent range-bounded
  queries; writes validate, commit to the store, recompute the
  authoritative daily total, and invalidate cached month views.

WRITE PROTOCOL:
  Confirm-then-apply, in two phases:
    1. CommitHours -> store upsert/delete -> authoritative total returned
    2. only on success does the caller apply Cache.SetHoursLocal
  A failed commit leaves the session cache untouched, so cache and store
  never diverge on failure. There is no cancellation path once a commit
  is issued, and no automatic retry.

CONCURRENCY:
  The FetchMonth reads have no ordering dependency and run
  concurrently; the caller gets the assembled result only after all
  complete. Across sessions, the store's unique composite key serializes
  same-cell writers (last writer wins); other sessions' caches go stale
  until their next full load. Accepted staleness, not a correctness bug.

SEE ALSO:
  - storage.go: the collaborator contract
  - cache.go: the session-local mirror this service feeds
  - viewcache.go: rendered-month cache flushed on every commit
*/
package schedule

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/warp/scheduling-engine/calendar"
)

// MonthData is the assembled result of a month fetch.
type MonthData struct {
	Month int
	Year  int

	Rows        []Row
	Allocations []Allocation
	DailyTotals []DailyTotal

	// Filter options, derived from the full tables (not month-scoped).
	Clients []string
	PMs     []string
	Teams   []string
	People  []Person
}

// CommitResult reports the outcome of a single-cell commit.
type CommitResult struct {
	Success    bool
	DailyTotal Hours
	Err        error
}

// Service is the authoritative allocation read/write path.
type Service struct {
	storage Storage
	views   *ViewCache
}

func NewService(storage Storage) *Service {
	return &Service{
		storage: storage,
		views:   NewViewCache(12, 5*time.Minute),
	}
}

// ValidateMonth checks the fetch bounds: month 1-12, 4-digit year.
func ValidateMonth(month, year int) error {
	if month < 1 || month > 12 || year < 1000 || year > 9999 {
		return fmt.Errorf("%w: %d/%d", ErrInvalidMonth, month, year)
	}
	return nil
}

// FetchMonth loads everything the scheduling grid needs for one month.
// The reads are independent and run concurrently; any failure fails
// the whole fetch, so callers never mistake a failed load for an empty
// month. Results are cached until the next commit or TTL expiry.
func (s *Service) FetchMonth(ctx context.Context, month, year int) (*MonthData, error) {
	if err := ValidateMonth(month, year); err != nil {
		return nil, err
	}

	viewKey := fmt.Sprintf("%04d-%02d", year, month)
	if data, ok := s.views.Get(viewKey); ok {
		return data, nil
	}

	from := calendar.FirstDayOfMonth(time.Month(month), year)
	to := calendar.LastDayOfMonth(time.Month(month), year)

	data := &MonthData{Month: month, Year: year}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Rows, err = s.storage.RowsInRange(ctx, from, to)
		return
	})
	g.Go(func() (err error) {
		data.Allocations, err = s.storage.AllocationsInRange(ctx, from, to)
		return
	})
	g.Go(func() (err error) {
		data.DailyTotals, err = s.storage.DailyTotalsInRange(ctx, from, to)
		return
	})
	g.Go(func() (err error) {
		data.Clients, err = s.storage.DistinctClients(ctx)
		return
	})
	g.Go(func() (err error) {
		data.PMs, err = s.storage.DistinctPMs(ctx)
		return
	})
	g.Go(func() (err error) {
		data.Teams, err = s.storage.DistinctTeams(ctx)
		return
	})
	g.Go(func() (err error) {
		data.People, err = s.storage.ListPeople(ctx)
		return
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch month %d/%d: %w", month, year, err)
	}

	s.views.Put(viewKey, data)
	return data, nil
}

// CommitHours commits a single-cell change. Zero hours deletes the row
// (absence of a row to delete is not an error); positive hours upsert on
// the composite key. After the write, the authoritative daily total for
// (person, day) is recomputed from the store and returned.
func (s *Service) CommitHours(ctx context.Context, a Allocation) CommitResult {
	if err := a.Hours.Validate(); err != nil {
		return CommitResult{Err: err}
	}
	if _, err := calendar.ParseDay(a.Day); err != nil {
		return CommitResult{Err: fmt.Errorf("%w: %q", ErrInvalidDay, a.Day)}
	}

	if a.Hours.IsZero() {
		if err := s.storage.DeleteAllocation(ctx, a.ProjectID, a.PersonID, a.Day); err != nil {
			return CommitResult{Err: fmt.Errorf("delete allocation: %w", err)}
		}
	} else {
		if err := s.storage.UpsertAllocation(ctx, a); err != nil {
			return CommitResult{Err: fmt.Errorf("upsert allocation: %w", err)}
		}
	}

	total, err := s.storage.DailyTotalFor(ctx, a.PersonID, a.Day)
	if err != nil {
		return CommitResult{Err: fmt.Errorf("recompute daily total: %w", err)}
	}

	s.views.Invalidate()
	return CommitResult{Success: true, DailyTotal: total}
}

// DeleteAllocation is the explicit delete variant of a zero-hours commit.
func (s *Service) DeleteAllocation(ctx context.Context, projectID, personID int, day calendar.Day) CommitResult {
	return s.CommitHours(ctx, Allocation{
		ProjectID: projectID,
		PersonID:  personID,
		Day:       day,
		Hours:     ZeroHours(),
	})
}

// InvalidateViews drops cached month views. Exposed for entity mutations
// (people/projects CRUD) that change rows without touching allocations.
func (s *Service) InvalidateViews() {
	s.views.Invalidate()
}
