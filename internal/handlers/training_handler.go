package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"cybertrain/internal/service"
)

// TrainingHandler handles the recipient-facing training routes: the
// magic-link take/submit pair, the module catalog, and the dashboard
type TrainingHandler struct {
	assignmentService *service.AssignmentService
	reportService     *service.ReportService
}

// NewTrainingHandler creates a new training handler
func NewTrainingHandler(assignmentService *service.AssignmentService, reportService *service.ReportService) *TrainingHandler {
	return &TrainingHandler{
		assignmentService: assignmentService,
		reportService:     reportService,
	}
}

// TakeByToken resolves a magic-link token into the assignment and its
// module. Correct answers never leave the server.
func (h *TrainingHandler) TakeByToken(w http.ResponseWriter, r *http.Request) {
	assignment, module, err := h.assignmentService.ResolveByToken(r.URL.Query().Get("token"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"assignment": assignmentView(assignment),
		"module":     moduleView(module),
	})
}

// SubmitByToken grades a magic-link submission
func (h *TrainingHandler) SubmitByToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token   string `json:"token"`
		Answers []int  `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	result, err := h.assignmentService.SubmitByToken(r.Context(), req.Token, req.Answers)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resultView(result))
}

// ListModules lists the training catalog with answers stripped
func (h *TrainingHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.assignmentService.Modules()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal server error", "failed to list modules", err)
		return
	}

	views := make([]ModuleView, len(modules))
	for i := range modules {
		views[i] = moduleView(&modules[i])
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"modules": views,
	})
}

// GetModule loads one module with answers stripped
func (h *TrainingHandler) GetModule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid module ID"))
		return
	}

	module, err := h.assignmentService.Module(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, moduleView(module))
}

// SubmitModule grades an ad-hoc submission from an authenticated user.
// An open assignment for the module is completed when one exists.
func (h *TrainingHandler) SubmitModule(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	moduleID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || moduleID <= 0 {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid module ID"))
		return
	}

	var req struct {
		Answers []int `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	result, err := h.assignmentService.SubmitAuthenticated(r.Context(), user, moduleID, req.Answers)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resultView(result))
}

// Dashboard returns the authenticated user's assignments, results and
// completion rate
func (h *TrainingHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	dashboard, err := h.reportService.DashboardFor(user)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"assignments":     assignmentViews(dashboard.Assignments),
		"results":         resultViews(dashboard.Results),
		"completion_rate": dashboard.CompletionRate,
	})
}
