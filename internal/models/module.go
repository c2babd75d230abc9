package models

import "time"

// Question is a single quiz question with an ordered list of options.
// Answer is the index of the correct option.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

// Module is a training unit: a video plus an ordered quiz.
// Modules are seeded administratively and treated as immutable while
// assignments against them are in flight.
type Module struct {
	ID          int64
	Title       string
	Description string
	VideoURL    string
	Questions   []Question
	CreatedAt   time.Time
}

// Validate checks the structural invariants of a module's quiz
func (m *Module) Validate() error {
	if len(m.Questions) == 0 {
		return ErrNoQuestions
	}
	for _, q := range m.Questions {
		if len(q.Options) == 0 {
			return ErrNoOptions
		}
		if q.Answer < 0 || q.Answer >= len(q.Options) {
			return ErrAnswerOutOfRange
		}
	}
	return nil
}
