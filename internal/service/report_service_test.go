package service

import (
	"context"
	"errors"
	"testing"

	"cybertrain/internal/models"
	"cybertrain/internal/repository"
)

func newReportService(env *testEnv) *ReportService {
	return NewReportService(
		repository.NewAssignmentRepository(env.db),
		repository.NewResultRepository(env.db),
		repository.NewModuleRepository(env.db),
		repository.NewTownshipRepository(env.db),
	)
}

func TestDashboardFor(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	reports := newReportService(env)
	ctx := context.Background()

	worker, err := env.users.CreateUser("worker@springfield.gov", "hash", "Casey Worker", models.RoleUser, &env.township.ID)
	if err != nil {
		t.Fatalf("Failed to create worker: %v", err)
	}

	created, err := env.service.CreateAssignment(ctx, env.admin, worker.Email, env.module.ID, 0)
	if err != nil {
		t.Fatalf("CreateAssignment() error = %v", err)
	}

	dashboard, err := reports.DashboardFor(worker)
	if err != nil {
		t.Fatalf("DashboardFor() error = %v", err)
	}
	if len(dashboard.Assignments) != 1 {
		t.Fatalf("Assignments = %d, want 1", len(dashboard.Assignments))
	}
	if len(dashboard.Results) != 0 {
		t.Errorf("Results = %d, want 0 before completion", len(dashboard.Results))
	}
	if dashboard.CompletionRate != 0 {
		t.Errorf("CompletionRate = %d, want 0", dashboard.CompletionRate)
	}

	if _, err := env.service.SubmitByToken(ctx, created.Token, []int{0, 1}); err != nil {
		t.Fatalf("SubmitByToken() error = %v", err)
	}

	dashboard, err = reports.DashboardFor(worker)
	if err != nil {
		t.Fatalf("DashboardFor() after completion error = %v", err)
	}
	if len(dashboard.Results) != 1 {
		t.Errorf("Results = %d, want 1", len(dashboard.Results))
	}
	if dashboard.CompletionRate != 100 {
		t.Errorf("CompletionRate = %d, want 100", dashboard.CompletionRate)
	}
}

func TestTownshipScoping(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	reports := newReportService(env)
	ctx := context.Background()

	if _, err := env.service.CreateAssignment(ctx, env.admin, "worker@springfield.gov", env.module.ID, 0); err != nil {
		t.Fatalf("CreateAssignment() error = %v", err)
	}

	assignments, err := reports.AssignmentsFor(env.admin, 0)
	if err != nil {
		t.Fatalf("AssignmentsFor() error = %v", err)
	}
	if len(assignments) != 1 {
		t.Errorf("AssignmentsFor() = %d assignments, want 1", len(assignments))
	}

	plain := &models.User{ID: 99, Role: models.RoleUser, TownshipID: &env.township.ID}
	if _, err := reports.AssignmentsFor(plain, 0); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("AssignmentsFor(user) error = %v, want %v", err, ErrNotAuthorized)
	}
	if _, err := reports.ResultsFor(plain, 0); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("ResultsFor(user) error = %v, want %v", err, ErrNotAuthorized)
	}
}

func TestTownshipReport(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	reports := newReportService(env)
	ctx := context.Background()

	first, err := env.service.CreateAssignment(ctx, env.admin, "one@springfield.gov", env.module.ID, 0)
	if err != nil {
		t.Fatalf("CreateAssignment() error = %v", err)
	}
	if _, err := env.service.CreateAssignment(ctx, env.admin, "two@springfield.gov", env.module.ID, 0); err != nil {
		t.Fatalf("CreateAssignment() error = %v", err)
	}
	if _, err := env.service.SubmitByToken(ctx, first.Token, []int{0, 1}); err != nil {
		t.Fatalf("SubmitByToken() error = %v", err)
	}

	report, err := reports.TownshipReport(env.admin, 0)
	if err != nil {
		t.Fatalf("TownshipReport() error = %v", err)
	}

	var found bool
	for _, row := range report {
		if row.Module.ID != env.module.ID {
			continue
		}
		found = true
		if row.Stats.Assigned != 2 {
			t.Errorf("Assigned = %d, want 2", row.Stats.Assigned)
		}
		if row.Stats.Completed != 1 {
			t.Errorf("Completed = %d, want 1", row.Stats.Completed)
		}
		if row.Stats.AverageScore != 2 {
			t.Errorf("AverageScore = %v, want 2", row.Stats.AverageScore)
		}
	}
	if !found {
		t.Fatalf("module %d missing from report", env.module.ID)
	}
}

func TestCreateTownshipRequiresSuperAdmin(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	reports := newReportService(env)

	if _, err := reports.CreateTownship(env.admin, "Shelbyville Township"); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("CreateTownship(admin) error = %v, want %v", err, ErrNotAuthorized)
	}

	super := &models.User{ID: 1, Role: models.RoleSuperAdmin}
	township, err := reports.CreateTownship(super, "Shelbyville Township")
	if err != nil {
		t.Fatalf("CreateTownship() error = %v", err)
	}
	if township.Name != "Shelbyville Township" {
		t.Errorf("Name = %q, want Shelbyville Township", township.Name)
	}

	if _, err := reports.CreateTownship(super, " "); err == nil {
		t.Error("CreateTownship(blank name) expected error")
	}
}
