/*
Package sqlite provides the SQLite-backed implementation of the scheduling
storage interfaces.

PURPOSE:
  Implements schedule.Storage (allocations, people, projects) using
  SQLite. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  people:              Schedulable resources (unique email)
  projects:            Client engagements
  project_allocations: One row per (project, person, day) cell

CONSTRAINTS:
  The unique composite index on (project_id, person_id, date) is the sole
  concurrency-control mechanism for cell writes: the upsert targets it,
  so concurrent writers to the same cell serialize at the database and
  the last writer wins. Foreign keys cascade, so deleting a person or
  project removes their allocations.

ZERO ROWS:
  An allocation with zero hours is never stored. The service deletes on
  zero; UpsertAllocation only ever receives positive validated hours.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - schedule/storage.go: Interface definitions
  - schedule/service.go: The read/write path built on this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/scheduling-engine/calendar"
	"github.com/warp/scheduling-engine/schedule"
)

// Store implements schedule.Storage using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ schedule.Storage = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS people (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		firstname TEXT NOT NULL,
		lastname TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		level TEXT NOT NULL DEFAULT '',
		team TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		client TEXT NOT NULL,
		order_code TEXT NOT NULL,
		pm TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS project_allocations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		person_id INTEGER NOT NULL REFERENCES people(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		hours REAL NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: The natural composite key. The upsert targets this index
	-- and it serializes concurrent writers to the same cell.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_project_day_person
		ON project_allocations(project_id, person_id, date);

	-- Month-range scans (hot path for fetch)
	CREATE INDEX IF NOT EXISTS idx_allocations_date
		ON project_allocations(date);

	-- Per-person daily total recomputation
	CREATE INDEX IF NOT EXISTS idx_allocations_person_date
		ON project_allocations(person_id, date);

	CREATE INDEX IF NOT EXISTS idx_projects_client
		ON projects(client);
	`

	_, err := s.db.Exec(schema)
	return err
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// =============================================================================
// ALLOCATIONS (schedule.AllocationStorage interface)
// =============================================================================

// UpsertAllocation inserts or updates a cell on its composite key.
func (s *Store) UpsertAllocation(ctx context.Context, a schedule.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO project_allocations (project_id, person_id, date, hours, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, person_id, date) DO UPDATE SET
			hours = excluded.hours,
			updated_at = excluded.updated_at
	`

	ts := now()
	_, err := s.db.ExecContext(ctx, query,
		a.ProjectID, a.PersonID, a.Day, a.Hours.Float64(), ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert allocation: %w", err)
	}
	return nil
}

// DeleteAllocation removes a cell. Deleting a missing cell is not an error.
func (s *Store) DeleteAllocation(ctx context.Context, projectID, personID int, day calendar.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM project_allocations WHERE project_id = ? AND person_id = ? AND date = ?",
		projectID, personID, day,
	)
	if err != nil {
		return fmt.Errorf("failed to delete allocation: %w", err)
	}
	return nil
}

// AllocationsInRange returns every cell with from <= date <= to.
func (s *Store) AllocationsInRange(ctx context.Context, from, to calendar.Day) ([]schedule.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, person_id, date, hours
		FROM project_allocations
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	var allocations []schedule.Allocation
	for rows.Next() {
		var a schedule.Allocation
		var hours float64
		if err := rows.Scan(&a.ProjectID, &a.PersonID, &a.Day, &hours); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		a.Hours = schedule.NewHours(hours)
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

// DailyTotalsInRange returns the grouped per-person daily sums in a range.
func (s *Store) DailyTotalsInRange(ctx context.Context, from, to calendar.Day) ([]schedule.DailyTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT person_id, date, SUM(hours) AS total_hours
		FROM project_allocations
		WHERE date >= ? AND date <= ?
		GROUP BY person_id, date
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}
	defer rows.Close()

	var totals []schedule.DailyTotal
	for rows.Next() {
		var t schedule.DailyTotal
		var hours float64
		if err := rows.Scan(&t.PersonID, &t.Day, &hours); err != nil {
			return nil, fmt.Errorf("failed to scan daily total: %w", err)
		}
		t.Hours = schedule.NewHours(hours)
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// DailyTotalFor recomputes the authoritative total for one person on one
// day. This is the source of truth after every commit.
func (s *Store) DailyTotalFor(ctx context.Context, personID int, day calendar.Day) (schedule.Hours, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT SUM(hours)
		FROM project_allocations
		WHERE person_id = ? AND date = ?
	`, personID, day).Scan(&total)
	if err != nil {
		return schedule.ZeroHours(), fmt.Errorf("failed to sum daily total: %w", err)
	}
	if !total.Valid {
		return schedule.ZeroHours(), nil
	}
	return schedule.NewHours(total.Float64), nil
}

// RowsInRange returns the distinct project x person pairs with at least
// one allocation in the range.
func (s *Store) RowsInRange(ctx context.Context, from, to calendar.Day) ([]schedule.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT
			pr.id, pr.type, pr.client, pr.order_code, pr.pm,
			pe.id, pe.firstname, pe.lastname, pe.email, pe.level, pe.team, pe.role
		FROM project_allocations a
		INNER JOIN projects pr ON a.project_id = pr.id
		INNER JOIN people pe ON a.person_id = pe.id
		WHERE a.date >= ? AND a.date <= ?
		ORDER BY pr.client, pr.order_code, pe.lastname, pe.firstname
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule rows: %w", err)
	}
	defer rows.Close()

	var result []schedule.Row
	for rows.Next() {
		var r schedule.Row
		if err := rows.Scan(
			&r.ProjectID, &r.ProjectType, &r.ProjectClient, &r.ProjectOrder, &r.ProjectPM,
			&r.PersonID, &r.PersonFirstname, &r.PersonLastname, &r.PersonEmail,
			&r.PersonLevel, &r.PersonTeam, &r.PersonRole,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// =============================================================================
// PEOPLE (schedule.PeopleStorage interface)
// =============================================================================

// ListPeople returns all people ordered by lastname, firstname.
func (s *Store) ListPeople(ctx context.Context) ([]schedule.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, firstname, lastname, email, level, team, role
		FROM people
		ORDER BY lastname, firstname
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer rows.Close()

	var people []schedule.Person
	for rows.Next() {
		var p schedule.Person
		if err := rows.Scan(&p.ID, &p.Firstname, &p.Lastname, &p.Email, &p.Level, &p.Team, &p.Role); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

// GetPerson returns a person by id, or nil if absent.
func (s *Store) GetPerson(ctx context.Context, id int) (*schedule.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p schedule.Person
	err := s.db.QueryRowContext(ctx, `
		SELECT id, firstname, lastname, email, level, team, role
		FROM people WHERE id = ?
	`, id).Scan(&p.ID, &p.Firstname, &p.Lastname, &p.Email, &p.Level, &p.Team, &p.Role)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return &p, nil
}

// SavePerson inserts (ID == 0) or updates a person, returning the id.
func (s *Store) SavePerson(ctx context.Context, p schedule.Person) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := now()
	if p.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO people (firstname, lastname, email, level, team, role, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, p.Firstname, p.Lastname, p.Email, p.Level, p.Team, p.Role, ts, ts)
		if err != nil {
			return 0, fmt.Errorf("failed to insert person: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		return int(id), nil
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE people
		SET firstname = ?, lastname = ?, email = ?, level = ?, team = ?, role = ?, updated_at = ?
		WHERE id = ?
	`, p.Firstname, p.Lastname, p.Email, p.Level, p.Team, p.Role, ts, p.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update person: %w", err)
	}
	return p.ID, nil
}

// DeletePerson removes a person; their allocations cascade.
func (s *Store) DeletePerson(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return nil
}

// DistinctTeams returns the non-empty teams across all people.
func (s *Store) DistinctTeams(ctx context.Context) ([]string, error) {
	return s.distinctStrings(ctx,
		"SELECT DISTINCT team FROM people WHERE team != '' ORDER BY team")
}

// =============================================================================
// PROJECTS (schedule.ProjectStorage interface)
// =============================================================================

// ListProjects returns all projects ordered by client, order code.
func (s *Store) ListProjects(ctx context.Context) ([]schedule.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, client, order_code, pm
		FROM projects
		ORDER BY client, order_code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []schedule.Project
	for rows.Next() {
		var p schedule.Project
		if err := rows.Scan(&p.ID, &p.Type, &p.Client, &p.Order, &p.PM); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProject returns a project by id, or nil if absent.
func (s *Store) GetProject(ctx context.Context, id int) (*schedule.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p schedule.Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, type, client, order_code, pm FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Type, &p.Client, &p.Order, &p.PM)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// SaveProject inserts (ID == 0) or updates a project, returning the id.
func (s *Store) SaveProject(ctx context.Context, p schedule.Project) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := now()
	if p.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO projects (type, client, order_code, pm, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.Type, p.Client, p.Order, p.PM, ts, ts)
		if err != nil {
			return 0, fmt.Errorf("failed to insert project: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		return int(id), nil
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET type = ?, client = ?, order_code = ?, pm = ?, updated_at = ?
		WHERE id = ?
	`, p.Type, p.Client, p.Order, p.PM, ts, p.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update project: %w", err)
	}
	return p.ID, nil
}

// DeleteProject removes a project; its allocations cascade.
func (s *Store) DeleteProject(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// DistinctClients returns all clients across all projects.
func (s *Store) DistinctClients(ctx context.Context) ([]string, error) {
	return s.distinctStrings(ctx,
		"SELECT DISTINCT client FROM projects ORDER BY client")
}

// DistinctPMs returns all PMs across all projects.
func (s *Store) DistinctPMs(ctx context.Context) ([]string, error) {
	return s.distinctStrings(ctx,
		"SELECT DISTINCT pm FROM projects ORDER BY pm")
}

func (s *Store) distinctStrings(ctx context.Context, query string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct values: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
