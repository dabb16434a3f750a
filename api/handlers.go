/*
handlers.go - HTTP API handlers for the scheduling engine

PURPOSE:
  Exposes the allocation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Scheduling:
    GET    /api/scheduling                       Fetch one month of grid data
    POST   /api/scheduling/hours                 Commit one cell's hours
    DELETE /api/scheduling/hours/{projectID}/{personID}/{date}
                                                 Clear one cell (idempotent)

  People:
    GET    /api/people                 List all people
    POST   /api/people                 Create person
    GET    /api/people/{id}            Get person
    PUT    /api/people/{id}            Update person
    DELETE /api/people/{id}            Delete person (cascades allocations)

  Projects:
    GET    /api/projects               List all projects
    POST   /api/projects               Create project
    GET    /api/projects/{id}          Get project
    PUT    /api/projects/{id}          Update project
    DELETE /api/projects/{id}          Delete project (cascades allocations)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (service, store)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors
  Commit responses additionally carry the validation message in the
  response body so the grid can surface it inline at the cell.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/scheduling-engine/calendar"
	"github.com/warp/scheduling-engine/schedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *schedule.Service
	Store   schedule.Storage
}

// NewHandler creates a new handler over the given store.
func NewHandler(store schedule.Storage) *Handler {
	return &Handler{
		Service: schedule.NewService(store),
		Store:   store,
	}
}

// =============================================================================
// SCHEDULING HANDLERS
// =============================================================================

// FetchMonth returns the full grid payload for one month.
// GET /api/scheduling?month=1&year=2025
func (h *Handler) FetchMonth(w http.ResponseWriter, r *http.Request) {
	month, errM := strconv.Atoi(r.URL.Query().Get("month"))
	year, errY := strconv.Atoi(r.URL.Query().Get("year"))
	if errM != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "month and year query parameters are required", nil)
		return
	}

	data, err := h.Service.FetchMonth(r.Context(), month, year)
	if err != nil {
		if schedule.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, "Invalid month or year", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch month", err)
		return
	}

	writeJSON(w, http.StatusOK, toMonthResponse(data))
}

// CommitHours commits a single cell change. Zero hours clears the cell.
// POST /api/scheduling/hours
func (h *Handler) CommitHours(w http.ResponseWriter, r *http.Request) {
	var req CommitHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result := h.Service.CommitHours(r.Context(), schedule.Allocation{
		ProjectID: req.ProjectID,
		PersonID:  req.PersonID,
		Day:       req.Date,
		Hours:     schedule.NewHours(req.Hours),
	})

	writeCommitResult(w, result)
}

// DeleteAllocation clears one cell. Deleting an absent cell succeeds.
// DELETE /api/scheduling/hours/{projectID}/{personID}/{date}
func (h *Handler) DeleteAllocation(w http.ResponseWriter, r *http.Request) {
	projectID, errP := strconv.Atoi(chi.URLParam(r, "projectID"))
	personID, errE := strconv.Atoi(chi.URLParam(r, "personID"))
	if errP != nil || errE != nil {
		writeError(w, http.StatusBadRequest, "Invalid project or person id", nil)
		return
	}
	date := chi.URLParam(r, "date")
	if _, err := calendar.ParseDay(date); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	result := h.Service.DeleteAllocation(r.Context(), projectID, personID, date)
	writeCommitResult(w, result)
}

// writeCommitResult maps a commit outcome onto the wire contract:
// validation problems come back 400 with the message in the body,
// store failures 500, success 200 with the recomputed daily total.
func writeCommitResult(w http.ResponseWriter, result schedule.CommitResult) {
	if result.Err != nil {
		status := http.StatusInternalServerError
		if schedule.IsValidationError(result.Err) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, CommitHoursResponse{
			Success: false,
			Error:   result.Err.Error(),
		})
		return
	}

	total := result.DailyTotal.Float64()
	writeJSON(w, http.StatusOK, CommitHoursResponse{
		Success:    true,
		DailyTotal: &total,
	})
}

// =============================================================================
// PEOPLE HANDLERS
// =============================================================================

// ListPeople returns all people.
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.Store.ListPeople(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list people", err)
		return
	}

	dtos := make([]PersonDTO, len(people))
	for i, p := range people {
		dtos[i] = toPersonDTO(p)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetPerson returns a single person.
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid person id", err)
		return
	}

	p, err := h.Store.GetPerson(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get person", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Person not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toPersonDTO(*p))
}

// CreatePerson creates a new person.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req SavePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Firstname == "" || req.Lastname == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Firstname, lastname and email are required", nil)
		return
	}

	person := schedule.Person{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Level:     req.Level,
		Team:      req.Team,
		Role:      req.Role,
	}

	id, err := h.Store.SavePerson(r.Context(), person)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create person", err)
		return
	}
	person.ID = id

	h.Service.InvalidateViews()
	writeJSON(w, http.StatusCreated, toPersonDTO(person))
}

// UpdatePerson updates an existing person.
func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid person id", err)
		return
	}

	existing, err := h.Store.GetPerson(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get person", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Person not found", nil)
		return
	}

	var req SavePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	person := schedule.Person{
		ID:        id,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Level:     req.Level,
		Team:      req.Team,
		Role:      req.Role,
	}

	if _, err := h.Store.SavePerson(r.Context(), person); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update person", err)
		return
	}

	h.Service.InvalidateViews()
	writeJSON(w, http.StatusOK, toPersonDTO(person))
}

// DeletePerson deletes a person and cascades their allocations.
func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid person id", err)
		return
	}

	if err := h.Store.DeletePerson(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete person", err)
		return
	}

	h.Service.InvalidateViews()
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns all projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}

	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetProject returns a single project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id", err)
		return
	}

	p, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get project", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toProjectDTO(*p))
}

// CreateProject creates a new project.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req SaveProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Client == "" || req.Type == "" {
		writeError(w, http.StatusBadRequest, "Client and type are required", nil)
		return
	}

	project := schedule.Project{
		Type:   req.Type,
		Client: req.Client,
		Order:  req.Order,
		PM:     req.PM,
	}

	id, err := h.Store.SaveProject(r.Context(), project)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create project", err)
		return
	}
	project.ID = id

	h.Service.InvalidateViews()
	writeJSON(w, http.StatusCreated, toProjectDTO(project))
}

// UpdateProject updates an existing project.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id", err)
		return
	}

	existing, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get project", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}

	var req SaveProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	project := schedule.Project{
		ID:     id,
		Type:   req.Type,
		Client: req.Client,
		Order:  req.Order,
		PM:     req.PM,
	}

	if _, err := h.Store.SaveProject(r.Context(), project); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update project", err)
		return
	}

	h.Service.InvalidateViews()
	writeJSON(w, http.StatusOK, toProjectDTO(project))
}

// DeleteProject deletes a project and cascades its allocations.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id", err)
		return
	}

	if err := h.Store.DeleteProject(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete project", err)
		return
	}

	h.Service.InvalidateViews()
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
