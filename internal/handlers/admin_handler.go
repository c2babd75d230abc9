package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cybertrain/internal/models"
	"cybertrain/internal/service"
)

// AdminHandler handles township-scoped administration routes
type AdminHandler struct {
	assignmentService *service.AssignmentService
	reportService     *service.ReportService
	authService       *service.AuthService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(assignmentService *service.AssignmentService, reportService *service.ReportService, authService *service.AuthService) *AdminHandler {
	return &AdminHandler{
		assignmentService: assignmentService,
		reportService:     reportService,
		authService:       authService,
	}
}

// CreateAssignment assigns a training module to an email address and sends
// the invitation. The assignment is persisted even when sending fails, so
// the admin can retry from the list view.
func (h *AdminHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	actor := GetUserFromContext(r.Context())

	var req struct {
		Email      string `json:"email"`
		ModuleID   int64  `json:"module_id"`
		TownshipID int64  `json:"township_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	assignment, err := h.assignmentService.CreateAssignment(r.Context(), actor, req.Email, req.ModuleID, req.TownshipID)
	if err != nil {
		if assignment != nil && errors.Is(err, service.ErrEmailSendFailed) {
			respondJSON(w, http.StatusCreated, map[string]interface{}{
				"assignment": assignmentView(assignment),
				"warning":    "assignment created but the invitation email could not be sent",
			})
			return
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"assignment": assignmentView(assignment),
	})
}

// ListAssignments lists the actor's township assignments. Super admins may
// select a township with ?township_id=.
func (h *AdminHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	actor := GetUserFromContext(r.Context())

	assignments, err := h.reportService.AssignmentsFor(actor, queryID(r, "township_id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"assignments": assignmentViews(assignments),
	})
}

// ListResults lists the actor's township results
func (h *AdminHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	actor := GetUserFromContext(r.Context())

	results, err := h.reportService.ResultsFor(actor, queryID(r, "township_id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": resultViews(results),
	})
}

// ModuleReportView is one row of the township completion report
type ModuleReportView struct {
	ModuleID       int64      `json:"module_id"`
	Title          string     `json:"title"`
	Assigned       int        `json:"assigned"`
	Completed      int        `json:"completed"`
	CompletionRate int        `json:"completion_rate"`
	AverageScore   float64    `json:"average_score"`
	LastActivity   *time.Time `json:"last_activity,omitempty"`
}

// Report returns per-module completion statistics for a township
func (h *AdminHandler) Report(w http.ResponseWriter, r *http.Request) {
	actor := GetUserFromContext(r.Context())

	reports, err := h.reportService.TownshipReport(actor, queryID(r, "township_id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	views := make([]ModuleReportView, 0, len(reports))
	for _, report := range reports {
		view := ModuleReportView{
			ModuleID:     report.Module.ID,
			Title:        report.Module.Title,
			Assigned:     report.Stats.Assigned,
			Completed:    report.Stats.Completed,
			AverageScore: report.Stats.AverageScore,
			LastActivity: report.Stats.LastActivity,
		}
		if view.Assigned > 0 {
			view.CompletionRate = view.Completed * 100 / view.Assigned
		}
		views = append(views, view)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"report": views,
	})
}

// ListUsers lists the actor's township accounts. Super admins may select
// a township with ?township_id= or omit it for every account.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor := GetUserFromContext(r.Context())

	users, err := h.authService.UsersFor(actor, queryID(r, "township_id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	views := make([]UserView, len(users))
	for i := range users {
		views[i] = userView(&users[i])
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"users": views,
	})
}

// CreateTownship registers a new township (super admin only)
func (h *AdminHandler) CreateTownship(w http.ResponseWriter, r *http.Request) {
	actor := GetUserFromContext(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	township, err := h.reportService.CreateTownship(actor, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, township)
}

// ListTownships lists all townships (super admin only)
func (h *AdminHandler) ListTownships(w http.ResponseWriter, r *http.Request) {
	actor := GetUserFromContext(r.Context())

	townships, err := h.reportService.ListTownships(actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"townships": townships,
	})
}

// AssignRole promotes or demotes an account (super admin only). Promoting
// to admin requires a township for data scoping.
func (h *AdminHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	actor := GetUserFromContext(r.Context())

	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || userID <= 0 {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid user ID"))
		return
	}

	var req struct {
		Role       string `json:"role"`
		TownshipID *int64 `json:"township_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	user, err := h.authService.AssignRole(actor, userID, models.Role(req.Role), req.TownshipID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, userView(user))
}

func queryID(r *http.Request, name string) int64 {
	id, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
