package service

import "cybertrain/internal/models"

// Grade scores a set of selected answers against a module's answer key.
// One point per position where the selected option index equals the
// question's correct index; the Unanswered sentinel (-1) never matches.
// Pure function: no side effects, deterministic for the same inputs.
func Grade(module *models.Module, answers []int) (int, error) {
	if len(answers) != len(module.Questions) {
		return 0, ErrAnswerCountMismatch
	}

	score := 0
	for i, question := range module.Questions {
		if answers[i] == models.Unanswered {
			continue
		}
		if answers[i] == question.Answer {
			score++
		}
	}
	return score, nil
}

// AllAnswered reports whether every position carries a real selection.
// Both completion paths require this before a submission is graded.
func AllAnswered(answers []int) bool {
	for _, answer := range answers {
		if answer == models.Unanswered {
			return false
		}
	}
	return true
}
