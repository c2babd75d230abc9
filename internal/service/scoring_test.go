package service

import (
	"testing"

	"cybertrain/internal/models"
)

func phishingModule() *models.Module {
	return &models.Module{
		ID:    1,
		Title: "Phishing Awareness",
		Questions: []models.Question{
			{Question: "What should you check first in a suspicious email?", Options: []string{"The sender address", "The font"}, Answer: 0},
			{Question: "Where do you report a phishing attempt?", Options: []string{"Social media", "IT support"}, Answer: 1},
		},
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		name    string
		answers []int
		want    int
		wantErr error
	}{
		{
			name:    "all correct",
			answers: []int{0, 1},
			want:    2,
		},
		{
			name:    "one correct",
			answers: []int{0, 0},
			want:    1,
		},
		{
			name:    "all wrong",
			answers: []int{1, 0},
			want:    0,
		},
		{
			name:    "unanswered never matches",
			answers: []int{models.Unanswered, models.Unanswered},
			want:    0,
		},
		{
			name:    "out of range selection scores zero for that question",
			answers: []int{5, 1},
			want:    1,
		},
		{
			name:    "too few answers",
			answers: []int{0},
			wantErr: ErrAnswerCountMismatch,
		},
		{
			name:    "too many answers",
			answers: []int{0, 1, 1},
			wantErr: ErrAnswerCountMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Grade(phishingModule(), tt.answers)
			if err != tt.wantErr {
				t.Fatalf("Grade() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Grade() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGradeIsDeterministic(t *testing.T) {
	module := phishingModule()
	answers := []int{0, 0}

	first, err := Grade(module, answers)
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := Grade(module, answers)
		if err != nil {
			t.Fatalf("Grade() error = %v", err)
		}
		if got != first {
			t.Errorf("Grade() = %v on repeat, want %v", got, first)
		}
	}
}

func TestAllAnswered(t *testing.T) {
	tests := []struct {
		name    string
		answers []int
		want    bool
	}{
		{name: "empty", answers: []int{}, want: true},
		{name: "all answered", answers: []int{0, 2, 1}, want: true},
		{name: "one unanswered", answers: []int{0, models.Unanswered, 1}, want: false},
		{name: "all unanswered", answers: []int{models.Unanswered, models.Unanswered}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllAnswered(tt.answers); got != tt.want {
				t.Errorf("AllAnswered() = %v, want %v", got, tt.want)
			}
		})
	}
}
