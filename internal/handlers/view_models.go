package handlers

import (
	"time"

	"cybertrain/internal/models"
)

// QuestionView is a quiz question with the correct-answer index stripped.
// Recipients only ever see prompts and options.
type QuestionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// ModuleView is the recipient-facing shape of a training module
type ModuleView struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	VideoURL    string         `json:"video_url"`
	Questions   []QuestionView `json:"questions"`
}

func moduleView(module *models.Module) ModuleView {
	questions := make([]QuestionView, len(module.Questions))
	for i, q := range module.Questions {
		questions[i] = QuestionView{Question: q.Question, Options: q.Options}
	}
	return ModuleView{
		ID:          module.ID,
		Title:       module.Title,
		Description: module.Description,
		VideoURL:    module.VideoURL,
		Questions:   questions,
	}
}

// AssignmentView is the API shape of a training assignment. The token is
// deliberately absent: it only ever travels inside the emailed link.
type AssignmentView struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	ModuleID    int64      `json:"module_id"`
	TownshipID  int64      `json:"township_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func assignmentView(a *models.Assignment) AssignmentView {
	return AssignmentView{
		ID:          a.ID,
		Email:       a.Email,
		ModuleID:    a.ModuleID,
		TownshipID:  a.TownshipID,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
		SentAt:      a.SentAt,
		CompletedAt: a.CompletedAt,
	}
}

func assignmentViews(assignments []models.Assignment) []AssignmentView {
	views := make([]AssignmentView, len(assignments))
	for i := range assignments {
		views[i] = assignmentView(&assignments[i])
	}
	return views
}

// ResultView is the API shape of a graded quiz attempt
type ResultView struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	ModuleID    int64     `json:"module_id"`
	TownshipID  int64     `json:"township_id"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Answers     []int     `json:"answers"`
	CompletedAt time.Time `json:"completed_at"`
}

func resultView(r *models.Result) ResultView {
	return ResultView{
		ID:          r.ID,
		Email:       r.Email,
		ModuleID:    r.ModuleID,
		TownshipID:  r.TownshipID,
		Score:       r.Score,
		Total:       len(r.Answers),
		Answers:     r.Answers,
		CompletedAt: r.CompletedAt,
	}
}

func resultViews(results []models.Result) []ResultView {
	views := make([]ResultView, len(results))
	for i := range results {
		views[i] = resultView(&results[i])
	}
	return views
}

// UserView is the API shape of an account
type UserView struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	TownshipID *int64 `json:"township_id,omitempty"`
}

func userView(u *models.User) UserView {
	return UserView{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       string(u.Role),
		TownshipID: u.TownshipID,
	}
}
