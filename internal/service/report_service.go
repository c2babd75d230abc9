package service

import (
	"fmt"
	"strings"

	"cybertrain/internal/models"
	"cybertrain/internal/repository"
	"cybertrain/internal/validation"
)

// ReportService assembles dashboard and township reporting views
type ReportService struct {
	assignmentRepo *repository.AssignmentRepository
	resultRepo     *repository.ResultRepository
	moduleRepo     *repository.ModuleRepository
	townshipRepo   *repository.TownshipRepository
}

// NewReportService creates a new report service
func NewReportService(
	assignmentRepo *repository.AssignmentRepository,
	resultRepo *repository.ResultRepository,
	moduleRepo *repository.ModuleRepository,
	townshipRepo *repository.TownshipRepository,
) *ReportService {
	return &ReportService{
		assignmentRepo: assignmentRepo,
		resultRepo:     resultRepo,
		moduleRepo:     moduleRepo,
		townshipRepo:   townshipRepo,
	}
}

// Dashboard is the employee's view of their own training
type Dashboard struct {
	Assignments    []models.Assignment
	Results        []models.Result
	CompletionRate int
}

// DashboardFor loads the assignments and results addressed to one user's
// email, plus their completion rate
func (s *ReportService) DashboardFor(user *models.User) (*Dashboard, error) {
	if user == nil {
		return nil, ErrNotAuthorized
	}

	assignments, err := s.assignmentRepo.GetAssignmentsByEmail(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	results, err := s.resultRepo.GetResultsByEmail(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	completed := 0
	for _, assignment := range assignments {
		if assignment.IsCompleted() {
			completed++
		}
	}
	rate := 0
	if len(assignments) > 0 {
		rate = completed * 100 / len(assignments)
	}

	return &Dashboard{
		Assignments:    assignments,
		Results:        results,
		CompletionRate: rate,
	}, nil
}

// resolveTownship applies the role gate's data scoping: township admins
// see only their own township, super admins may name any township.
func (s *ReportService) resolveTownship(actor *models.User, townshipID int64) (int64, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return 0, ErrNotAuthorized
	}
	if actor.Role.IsSuperAdmin() {
		if townshipID > 0 {
			return townshipID, nil
		}
	}
	if actor.TownshipID == nil {
		return 0, ErrNotAuthorized
	}
	return *actor.TownshipID, nil
}

// AssignmentsFor lists a township's assignments for an admin
func (s *ReportService) AssignmentsFor(actor *models.User, townshipID int64) ([]models.Assignment, error) {
	id, err := s.resolveTownship(actor, townshipID)
	if err != nil {
		return nil, err
	}
	return s.assignmentRepo.GetAssignmentsByTownship(id)
}

// ResultsFor lists a township's results for an admin
func (s *ReportService) ResultsFor(actor *models.User, townshipID int64) ([]models.Result, error) {
	id, err := s.resolveTownship(actor, townshipID)
	if err != nil {
		return nil, err
	}
	return s.resultRepo.GetResultsByTownship(id)
}

// ModuleReport is one module's completion numbers within a township
type ModuleReport struct {
	Module models.Module
	Stats  repository.ModuleStats
}

// TownshipReport computes per-module completion statistics for a township
func (s *ReportService) TownshipReport(actor *models.User, townshipID int64) ([]ModuleReport, error) {
	id, err := s.resolveTownship(actor, townshipID)
	if err != nil {
		return nil, err
	}

	modules, err := s.moduleRepo.GetAllModules()
	if err != nil {
		return nil, fmt.Errorf("failed to load modules: %w", err)
	}
	stats, err := s.resultRepo.GetModuleStatsByTownship(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load module stats: %w", err)
	}

	byModule := make(map[int64]repository.ModuleStats, len(stats))
	for _, s := range stats {
		byModule[s.ModuleID] = s
	}

	reports := make([]ModuleReport, 0, len(modules))
	for _, module := range modules {
		reports = append(reports, ModuleReport{
			Module: module,
			Stats:  byModule[module.ID],
		})
	}
	return reports, nil
}

// CreateTownship creates a township; super admin only
func (s *ReportService) CreateTownship(actor *models.User, name string) (*models.Township, error) {
	if actor == nil || !actor.Role.IsSuperAdmin() {
		return nil, ErrNotAuthorized
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	return s.townshipRepo.CreateTownship(strings.TrimSpace(name))
}

// ListTownships lists all townships; admin and above
func (s *ReportService) ListTownships(actor *models.User) ([]models.Township, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	return s.townshipRepo.GetAllTownships()
}
