package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cybertrain/internal/service"
	"cybertrain/internal/validation"
)

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, errorBody(userMsg))
}

// respondServiceError maps service-layer errors onto HTTP statuses.
// Validation and not-found failures carry their message to the caller;
// anything unexpected is a 500 with the detail kept in the log.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr validation.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, errorBody(validationErr.Error()))
	case errors.Is(err, service.ErrAnswerCountMismatch),
		errors.Is(err, service.ErrUnansweredQuestions):
		respondJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		respondJSON(w, http.StatusUnauthorized, errorBody(err.Error()))
	case errors.Is(err, service.ErrNotAuthorized):
		respondJSON(w, http.StatusForbidden, errorBody(err.Error()))
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrModuleNotFound),
		errors.Is(err, service.ErrTownshipNotFound),
		errors.Is(err, service.ErrUserNotFound):
		respondJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, service.ErrAlreadyCompleted):
		respondJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, service.ErrEmailTaken):
		respondJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error", "request failed", err)
	}
}
