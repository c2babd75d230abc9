package service

import "errors"

var (
	// Auth
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrNotAuthorized      = errors.New("not authorized")

	// Assignment lifecycle
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAlreadyCompleted   = errors.New("assignment already completed")
	ErrModuleNotFound     = errors.New("module not found")
	ErrTownshipNotFound   = errors.New("township not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailSendFailed    = errors.New("invitation email delivery failed")

	// Scoring
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")
	ErrUnansweredQuestions = errors.New("all questions must be answered")
)
