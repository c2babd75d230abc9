package models

import "time"

// Unanswered is the sentinel stored for a question the recipient skipped.
// It never matches a correct answer index.
const Unanswered = -1

// Result is the durable record of one graded quiz attempt. AssignmentID is
// set for token-based completions and nil for ad-hoc authenticated
// submissions; a unique index on it enforces at most one result per
// assignment. Results are immutable after creation.
type Result struct {
	ID           int64
	AssignmentID *int64
	UserID       *int64
	Email        string
	ModuleID     int64
	TownshipID   int64
	Score        int
	Answers      []int
	CompletedAt  time.Time
}
