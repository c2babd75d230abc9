package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"cybertrain/internal/service"
	"cybertrain/internal/validation"
)

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return body["error"]
}

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, 418, "teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}
	if got := decodeError(t, recorder); got != "teapot" {
		t.Fatalf("expected error 'teapot', got %q", got)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()
	err := errors.New("boom")

	respondWithError(recorder, 500, "internal server error", "", err)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "internal server error") {
		t.Fatalf("expected log to include user message, got %q", logOutput)
	}
	if !strings.Contains(logOutput, "boom") {
		t.Fatalf("expected log to include error, got %q", logOutput)
	}
}

func TestRespondServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation error",
			err:        validation.ValidationError{Field: "email", Message: "email is required"},
			wantStatus: 400,
		},
		{
			name:       "answer count mismatch",
			err:        service.ErrAnswerCountMismatch,
			wantStatus: 400,
		},
		{
			name:       "unanswered questions",
			err:        service.ErrUnansweredQuestions,
			wantStatus: 400,
		},
		{
			name:       "invalid credentials",
			err:        service.ErrInvalidCredentials,
			wantStatus: 401,
		},
		{
			name:       "not authorized",
			err:        service.ErrNotAuthorized,
			wantStatus: 403,
		},
		{
			name:       "assignment not found",
			err:        service.ErrAssignmentNotFound,
			wantStatus: 404,
		},
		{
			name:       "module not found",
			err:        service.ErrModuleNotFound,
			wantStatus: 404,
		},
		{
			name:       "already completed",
			err:        service.ErrAlreadyCompleted,
			wantStatus: 409,
		},
		{
			name:       "email taken",
			err:        service.ErrEmailTaken,
			wantStatus: 409,
		},
		{
			name:       "unexpected error",
			err:        errors.New("disk on fire"),
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondServiceError(recorder, tt.err)
			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
		})
	}
}

func TestRespondServiceErrorHidesInternalDetail(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()
	respondServiceError(recorder, errors.New("pq: connection refused"))

	if got := decodeError(t, recorder); got != "internal server error" {
		t.Fatalf("internal detail leaked to client: %q", got)
	}
	if !strings.Contains(buf.String(), "connection refused") {
		t.Fatal("internal detail missing from log")
	}
}
