package models

import (
	"errors"
	"time"
)

// Assignment status values. Transitions are monotonic:
// pending -> sent -> completed, with pending -> completed permitted for
// submissions that arrive before the notifier confirms delivery.
const (
	AssignmentPending   = "pending"
	AssignmentSent      = "sent"
	AssignmentCompleted = "completed"
)

var (
	ErrNoQuestions      = errors.New("module has no questions")
	ErrNoOptions        = errors.New("question has no options")
	ErrAnswerOutOfRange = errors.New("correct answer index out of range")
)

// Assignment links one recipient email to one training module within one
// township. The token is the sole authorization for unauthenticated
// completion via the emailed magic link. Assignments are never deleted.
type Assignment struct {
	ID          int64
	Email       string
	ModuleID    int64
	TownshipID  int64
	Status      string
	Token       string
	CreatedAt   time.Time
	SentAt      *time.Time
	CompletedAt *time.Time
}

// IsCompleted reports whether the assignment has reached its terminal state
func (a *Assignment) IsCompleted() bool {
	return a.Status == AssignmentCompleted
}
