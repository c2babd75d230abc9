package service

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cybertrain/internal/models"
	"cybertrain/internal/repository"
)

// ExportData is the complete portal dataset written by the export CLI.
// Assignments are the audit trail, so everything is included verbatim
// except password hashes.
type ExportData struct {
	Version     string             `json:"version"`
	ExportedAt  time.Time          `json:"exported_at"`
	Townships   []TownshipExport   `json:"townships"`
	Users       []UserExport       `json:"users"`
	Modules     []ModuleExport     `json:"modules"`
	Assignments []AssignmentExport `json:"assignments"`
	Results     []ResultExport     `json:"results"`
}

// TownshipExport represents a township record for export
type TownshipExport struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserExport represents a user record for export
type UserExport struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	TownshipID *int64 `json:"township_id,omitempty"`
}

// ModuleExport represents a training module for export
type ModuleExport struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	VideoURL    string            `json:"video_url"`
	Questions   []models.Question `json:"questions"`
}

// AssignmentExport represents a training assignment for export
type AssignmentExport struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	ModuleID    int64      `json:"module_id"`
	TownshipID  int64      `json:"township_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ResultExport represents a quiz result for export
type ResultExport struct {
	ID           int64     `json:"id"`
	AssignmentID *int64    `json:"assignment_id,omitempty"`
	UserID       *int64    `json:"user_id,omitempty"`
	Email        string    `json:"email"`
	ModuleID     int64     `json:"module_id"`
	TownshipID   int64     `json:"township_id"`
	Score        int       `json:"score"`
	Answers      []int     `json:"answers"`
	CompletedAt  time.Time `json:"completed_at"`
}

// ExportService serializes the portal dataset for audit and backup
type ExportService struct {
	townshipRepo   *repository.TownshipRepository
	userRepo       *repository.UserRepository
	moduleRepo     *repository.ModuleRepository
	assignmentRepo *repository.AssignmentRepository
	resultRepo     *repository.ResultRepository
}

// NewExportService creates a new export service
func NewExportService(
	townshipRepo *repository.TownshipRepository,
	userRepo *repository.UserRepository,
	moduleRepo *repository.ModuleRepository,
	assignmentRepo *repository.AssignmentRepository,
	resultRepo *repository.ResultRepository,
) *ExportService {
	return &ExportService{
		townshipRepo:   townshipRepo,
		userRepo:       userRepo,
		moduleRepo:     moduleRepo,
		assignmentRepo: assignmentRepo,
		resultRepo:     resultRepo,
	}
}

// Export writes the complete dataset as indented JSON
func (s *ExportService) Export(w io.Writer) error {
	data := ExportData{
		Version:    "1",
		ExportedAt: time.Now().UTC(),
	}

	townships, err := s.townshipRepo.GetAllTownships()
	if err != nil {
		return fmt.Errorf("failed to export townships: %w", err)
	}
	for _, t := range townships {
		data.Townships = append(data.Townships, TownshipExport{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt})
	}

	users, err := s.userRepo.GetAllUsers()
	if err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	for _, u := range users {
		data.Users = append(data.Users, UserExport{
			ID:         u.ID,
			Email:      u.Email,
			FullName:   u.FullName,
			Role:       string(u.Role),
			TownshipID: u.TownshipID,
		})
	}

	modules, err := s.moduleRepo.GetAllModules()
	if err != nil {
		return fmt.Errorf("failed to export modules: %w", err)
	}
	for _, m := range modules {
		data.Modules = append(data.Modules, ModuleExport{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			VideoURL:    m.VideoURL,
			Questions:   m.Questions,
		})
	}

	assignments, err := s.assignmentRepo.GetAllAssignments()
	if err != nil {
		return fmt.Errorf("failed to export assignments: %w", err)
	}
	for _, a := range assignments {
		data.Assignments = append(data.Assignments, AssignmentExport{
			ID:          a.ID,
			Email:       a.Email,
			ModuleID:    a.ModuleID,
			TownshipID:  a.TownshipID,
			Status:      a.Status,
			CreatedAt:   a.CreatedAt,
			SentAt:      a.SentAt,
			CompletedAt: a.CompletedAt,
		})
	}

	results, err := s.resultRepo.GetAllResults()
	if err != nil {
		return fmt.Errorf("failed to export results: %w", err)
	}
	for _, r := range results {
		data.Results = append(data.Results, ResultExport{
			ID:           r.ID,
			AssignmentID: r.AssignmentID,
			UserID:       r.UserID,
			Email:        r.Email,
			ModuleID:     r.ModuleID,
			TownshipID:   r.TownshipID,
			Score:        r.Score,
			Answers:      r.Answers,
			CompletedAt:  r.CompletedAt,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
