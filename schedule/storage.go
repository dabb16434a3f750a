/*
storage.go - Backing-store collaborator interface

PURPOSE:
  Defines what the service needs from the relational store. The store
  owns the unique composite key on (project, person, day); its upsert is
  the sole concurrency-control mechanism, so concurrent writers to the
  same cell serialize there (last writer wins).

CONTRACT:
  - Zero-hour rows are never stored: UpsertAllocation only ever receives
    validated positive hours; deletion goes through DeleteAllocation.
  - DeleteAllocation is idempotent: deleting a missing row is not an error.
  - Range reads are inclusive of both endpoints.
  - A failed read returns a non-nil error, never an empty result, so
    "load failed" stays distinguishable from "no allocations this month".

IMPLEMENTATIONS:
  - store/sqlite: production store with cascading deletes from
    people/projects into allocations
*/
package schedule

import (
	"context"

	"github.com/warp/scheduling-engine/calendar"
)

// Storage is the relational backing store for allocations and the
// entities they reference.
type Storage interface {
	AllocationStorage
	PeopleStorage
	ProjectStorage
}

// AllocationStorage persists allocation cells and serves the
// range-bounded month reads.
type AllocationStorage interface {
	// UpsertAllocation inserts the cell or updates its hours in place,
	// keyed by the natural composite key. Atomic with respect to
	// concurrent upserts on the same key.
	UpsertAllocation(ctx context.Context, a Allocation) error

	// DeleteAllocation removes the cell if present. Idempotent.
	DeleteAllocation(ctx context.Context, projectID, personID int, day calendar.Day) error

	// AllocationsInRange returns all cells with from <= day <= to.
	AllocationsInRange(ctx context.Context, from, to calendar.Day) ([]Allocation, error)

	// DailyTotalsInRange returns the grouped per-person daily sums
	// for from <= day <= to.
	DailyTotalsInRange(ctx context.Context, from, to calendar.Day) ([]DailyTotal, error)

	// DailyTotalFor recomputes the authoritative total for one person
	// on one day, across all projects. Zero if no rows.
	DailyTotalFor(ctx context.Context, personID int, day calendar.Day) (Hours, error)

	// RowsInRange returns the distinct project x person pairs with at
	// least one allocation in the range, ordered by client, order code,
	// lastname, firstname.
	RowsInRange(ctx context.Context, from, to calendar.Day) ([]Row, error)
}

// PeopleStorage manages the people table and its derived filter options.
type PeopleStorage interface {
	ListPeople(ctx context.Context) ([]Person, error)
	GetPerson(ctx context.Context, id int) (*Person, error)
	SavePerson(ctx context.Context, p Person) (int, error)
	DeletePerson(ctx context.Context, id int) error

	// DistinctTeams lists the non-empty teams across all people,
	// not scoped to any month.
	DistinctTeams(ctx context.Context) ([]string, error)
}

// ProjectStorage manages the projects table and its derived filter options.
type ProjectStorage interface {
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, id int) (*Project, error)
	SaveProject(ctx context.Context, p Project) (int, error)
	DeleteProject(ctx context.Context, id int) error

	// DistinctClients and DistinctPMs list filter options across all
	// projects, not scoped to any month.
	DistinctClients(ctx context.Context) ([]string, error)
	DistinctPMs(ctx context.Context) ([]string, error)
}
