package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/scheduling-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	server := httptest.NewServer(NewRouter(NewHandler(store)))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, server *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

// seedRow creates a person and a project and returns their ids.
func seedRow(t *testing.T, server *httptest.Server) (personID, projectID int) {
	resp, body := doJSON(t, server, http.MethodPost, "/api/people", SavePersonRequest{
		Firstname: "Maria", Lastname: "Rossi", Email: "maria.rossi@example.com",
		Team: "Backend",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var person PersonDTO
	require.NoError(t, json.Unmarshal(body, &person))

	resp, body = doJSON(t, server, http.MethodPost, "/api/projects", SaveProjectRequest{
		Type: "Development", Client: "Acme", Order: "ORD-001", PM: "Verdi",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var project ProjectDTO
	require.NoError(t, json.Unmarshal(body, &project))

	return person.ID, project.ID
}

func commit(t *testing.T, server *httptest.Server, projectID, personID int, date string, hours float64) (*http.Response, CommitHoursResponse) {
	t.Helper()

	resp, body := doJSON(t, server, http.MethodPost, "/api/scheduling/hours", CommitHoursRequest{
		ProjectID: projectID, PersonID: personID, Date: date, Hours: hours,
	})
	var out CommitHoursResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return resp, out
}

// =============================================================================
// SCHEDULING TESTS
// =============================================================================

func TestCommitHours_ThenFetchMonth(t *testing.T) {
	// GIVEN: A row with 4h committed on one day
	// WHEN: Fetching the month
	// THEN: The allocation and daily total maps carry the cell

	server := newTestServer(t)
	personID, projectID := seedRow(t, server)

	resp, out := commit(t, server, projectID, personID, "2025-01-15", 4)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, out.Success)
	require.NotNil(t, out.DailyTotal)
	assert.Equal(t, 4.0, *out.DailyTotal)

	resp, body := doJSON(t, server, http.MethodGet, "/api/scheduling?month=1&year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var month MonthResponse
	require.NoError(t, json.Unmarshal(body, &month))

	require.Len(t, month.Rows, 1)
	assert.Equal(t, "Acme", month.Rows[0].ProjectClient)

	allocKey := fmt.Sprintf("%d-%d-2025-01-15", projectID, personID)
	totalKey := fmt.Sprintf("%d-2025-01-15", personID)
	assert.Equal(t, 4.0, month.Allocations[allocKey])
	assert.Equal(t, 4.0, month.DailyTotals[totalKey])

	assert.Equal(t, []string{"Acme"}, month.Clients)
	assert.Equal(t, []string{"Verdi"}, month.PMs)
	assert.Equal(t, []string{"Backend"}, month.Teams)
	require.NotEmpty(t, month.Weeks)
}

func TestCommitHours_ValidationRejected(t *testing.T) {
	server := newTestServer(t)
	personID, projectID := seedRow(t, server)

	resp, out := commit(t, server, projectID, personID, "2025-01-15", 8.3)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "increments of 0.5")
	assert.Nil(t, out.DailyTotal)

	resp, out = commit(t, server, projectID, personID, "2025-01-15", 9)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out.Error, "between 0 and 8")
}

func TestCommitHours_DailyTotalSpansProjects(t *testing.T) {
	// Two projects on the same day; the reported total is the person's
	// cross-project sum, flagging the overallocation to the grid.

	server := newTestServer(t)
	personID, projectID := seedRow(t, server)

	resp, body := doJSON(t, server, http.MethodPost, "/api/projects", SaveProjectRequest{
		Type: "Consulting", Client: "Globex", Order: "ORD-002", PM: "Neri",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var second ProjectDTO
	require.NoError(t, json.Unmarshal(body, &second))

	_, out := commit(t, server, projectID, personID, "2025-01-15", 4)
	require.True(t, out.Success)

	_, out = commit(t, server, second.ID, personID, "2025-01-15", 6)
	require.True(t, out.Success)
	require.NotNil(t, out.DailyTotal)
	assert.Equal(t, 10.0, *out.DailyTotal)
}

func TestCommitHours_ZeroClearsCell(t *testing.T) {
	server := newTestServer(t)
	personID, projectID := seedRow(t, server)

	_, out := commit(t, server, projectID, personID, "2025-01-15", 4)
	require.True(t, out.Success)

	resp, out := commit(t, server, projectID, personID, "2025-01-15", 0)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, out.Success)
	require.NotNil(t, out.DailyTotal)
	assert.Equal(t, 0.0, *out.DailyTotal)

	resp, body := doJSON(t, server, http.MethodGet, "/api/scheduling?month=1&year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var month MonthResponse
	require.NoError(t, json.Unmarshal(body, &month))
	assert.Empty(t, month.Allocations)
	assert.Empty(t, month.Rows)
}

func TestDeleteAllocation_Idempotent(t *testing.T) {
	server := newTestServer(t)
	personID, projectID := seedRow(t, server)

	_, out := commit(t, server, projectID, personID, "2025-01-15", 4)
	require.True(t, out.Success)

	path := fmt.Sprintf("/api/scheduling/hours/%d/%d/2025-01-15", projectID, personID)

	resp, body := doJSON(t, server, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var del CommitHoursResponse
	require.NoError(t, json.Unmarshal(body, &del))
	assert.True(t, del.Success)

	// A second delete of the same cell still succeeds
	resp, body = doJSON(t, server, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &del))
	assert.True(t, del.Success)
}

func TestFetchMonth_BadParams(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, server, http.MethodGet, "/api/scheduling?month=abc&year=2025", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, server, http.MethodGet, "/api/scheduling?month=13&year=2025", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// ENTITY CRUD TESTS
// =============================================================================

func TestPersonCRUD(t *testing.T) {
	server := newTestServer(t)

	resp, body := doJSON(t, server, http.MethodPost, "/api/people", SavePersonRequest{
		Firstname: "Anna", Lastname: "Ferrari", Email: "anna@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created PersonDTO
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotZero(t, created.ID)

	resp, body = doJSON(t, server, http.MethodPut, fmt.Sprintf("/api/people/%d", created.ID), SavePersonRequest{
		Firstname: "Anna", Lastname: "Ferrari", Email: "anna@example.com", Team: "Platform",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, server, http.MethodGet, fmt.Sprintf("/api/people/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched PersonDTO
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, "Platform", fetched.Team)

	resp, _ = doJSON(t, server, http.MethodDelete, fmt.Sprintf("/api/people/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, server, http.MethodGet, fmt.Sprintf("/api/people/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreatePerson_MissingFields(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, server, http.MethodPost, "/api/people", SavePersonRequest{Firstname: "Solo"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeletePerson_RemovesRowFromMonth(t *testing.T) {
	// Deleting a person cascades their allocations and invalidates the
	// cached month view, so the next fetch reflects the removal.

	server := newTestServer(t)
	personID, projectID := seedRow(t, server)

	_, out := commit(t, server, projectID, personID, "2025-01-15", 4)
	require.True(t, out.Success)

	resp, body := doJSON(t, server, http.MethodGet, "/api/scheduling?month=1&year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var month MonthResponse
	require.NoError(t, json.Unmarshal(body, &month))
	require.Len(t, month.Rows, 1)

	resp, _ = doJSON(t, server, http.MethodDelete, fmt.Sprintf("/api/people/%d", personID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, server, http.MethodGet, "/api/scheduling?month=1&year=2025", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	// Decode into a fresh value: Unmarshal merges into a non-nil map, which
	// would leave the first fetch's allocation entries behind.
	month = MonthResponse{}
	require.NoError(t, json.Unmarshal(body, &month))
	assert.Empty(t, month.Rows)
	assert.Empty(t, month.Allocations)
}

func TestProjectCRUD(t *testing.T) {
	server := newTestServer(t)

	resp, body := doJSON(t, server, http.MethodPost, "/api/projects", SaveProjectRequest{
		Type: "Development", Client: "Initech", Order: "ORD-009", PM: "Gialli",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created ProjectDTO
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotZero(t, created.ID)

	resp, body = doJSON(t, server, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []ProjectDTO
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Initech", list[0].Client)

	resp, _ = doJSON(t, server, http.MethodDelete, fmt.Sprintf("/api/projects/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, server, http.MethodGet, fmt.Sprintf("/api/projects/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
