package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"cybertrain/internal/database"
	"cybertrain/internal/models"
	"cybertrain/internal/repository"
	"cybertrain/internal/validation"
)

// Notifier delivers the training-assignment email carrying the magic link
type Notifier interface {
	SendAssignmentEmail(ctx context.Context, toEmail, moduleTitle, token, townshipName string) error
}

// AssignmentService owns the training-assignment lifecycle:
// pending -> sent -> completed, at most one completion per assignment.
// Both completion paths (magic link and authenticated dashboard) funnel
// through the same grading and recording rules.
type AssignmentService struct {
	db             *database.DB
	assignmentRepo *repository.AssignmentRepository
	moduleRepo     *repository.ModuleRepository
	townshipRepo   *repository.TownshipRepository
	resultRepo     *repository.ResultRepository
	notifier       Notifier
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	db *database.DB,
	assignmentRepo *repository.AssignmentRepository,
	moduleRepo *repository.ModuleRepository,
	townshipRepo *repository.TownshipRepository,
	resultRepo *repository.ResultRepository,
	notifier Notifier,
) *AssignmentService {
	return &AssignmentService{
		db:             db,
		assignmentRepo: assignmentRepo,
		moduleRepo:     moduleRepo,
		townshipRepo:   townshipRepo,
		resultRepo:     resultRepo,
		notifier:       notifier,
	}
}

// CreateAssignment creates an assignment on behalf of an admin and invokes
// the notifier. The actor's township scopes the assignment; super admins
// may pass any township ID. On notifier failure the assignment stays
// pending and the error is surfaced so the admin can retry.
func (s *AssignmentService) CreateAssignment(ctx context.Context, actor *models.User, email string, moduleID, townshipID int64) (*models.Assignment, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	if !actor.Role.IsSuperAdmin() {
		// Township admins can only assign within their own township
		if actor.TownshipID == nil {
			return nil, ErrNotAuthorized
		}
		townshipID = *actor.TownshipID
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidateID("module_id", moduleID); err != nil {
		return nil, err
	}
	if err := validation.ValidateID("township_id", townshipID); err != nil {
		return nil, err
	}

	module, err := s.moduleRepo.GetModuleByID(moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load module: %w", err)
	}
	if module == nil {
		return nil, ErrModuleNotFound
	}

	township, err := s.townshipRepo.GetTownshipByID(townshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to load township: %w", err)
	}
	if township == nil {
		return nil, ErrTownshipNotFound
	}

	assignment, err := s.assignmentRepo.CreateAssignment(email, module.ID, township.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	if err := s.notifier.SendAssignmentEmail(ctx, email, module.Title, assignment.Token, township.Name); err != nil {
		return assignment, fmt.Errorf("%w: %v", ErrEmailSendFailed, err)
	}

	if err := s.MarkSent(assignment.ID); err != nil {
		// The email went out; a failed stamp only loses the sent_at audit mark
		log.Printf("Failed to mark assignment %d sent: %v", assignment.ID, err)
		return assignment, nil
	}

	return s.assignmentRepo.GetAssignmentByID(assignment.ID)
}

// MarkSent advances a pending assignment to sent after notifier success
func (s *AssignmentService) MarkSent(assignmentID int64) error {
	err := s.assignmentRepo.MarkSent(assignmentID, time.Now().UTC())
	if err != nil {
		assignment, lookupErr := s.assignmentRepo.GetAssignmentByID(assignmentID)
		if lookupErr == nil && assignment == nil {
			return ErrAssignmentNotFound
		}
		return err
	}
	return nil
}

// Modules lists the training catalog
func (s *AssignmentService) Modules() ([]models.Module, error) {
	return s.moduleRepo.GetAllModules()
}

// Module loads one training module
func (s *AssignmentService) Module(id int64) (*models.Module, error) {
	module, err := s.moduleRepo.GetModuleByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load module: %w", err)
	}
	if module == nil {
		return nil, ErrModuleNotFound
	}
	return module, nil
}

// ResolveByToken looks up the assignment behind a magic-link token along
// with its module. Fails for unknown tokens and for assignments that have
// already been completed; this check is advisory only, the conditional
// update in complete() is what makes double submission lose.
func (s *AssignmentService) ResolveByToken(token string) (*models.Assignment, *models.Module, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil, validation.ValidationError{Field: "token", Message: "token is required"}
	}

	assignment, err := s.assignmentRepo.GetAssignmentByToken(token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if assignment == nil {
		return nil, nil, ErrAssignmentNotFound
	}
	if assignment.IsCompleted() {
		return nil, nil, ErrAlreadyCompleted
	}

	module, err := s.moduleRepo.GetModuleByID(assignment.ModuleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load module: %w", err)
	}
	if module == nil {
		return nil, nil, ErrModuleNotFound
	}

	return assignment, module, nil
}

// SubmitByToken grades a magic-link submission and completes the
// assignment. All questions must be answered.
func (s *AssignmentService) SubmitByToken(ctx context.Context, token string, answers []int) (*models.Result, error) {
	assignment, module, err := s.ResolveByToken(token)
	if err != nil {
		return nil, err
	}
	return s.complete(assignment, module, nil, answers)
}

// SubmitAuthenticated grades an ad-hoc submission from the authenticated
// dashboard. If the user has an open assignment for the module it is
// completed; otherwise a standalone result is recorded. The same
// answer-completeness and grading rules apply as on the token path.
func (s *AssignmentService) SubmitAuthenticated(ctx context.Context, user *models.User, moduleID int64, answers []int) (*models.Result, error) {
	if user == nil {
		return nil, ErrNotAuthorized
	}
	if user.TownshipID == nil {
		return nil, validation.ValidationError{Field: "township_id", Message: "account is not linked to a township"}
	}

	module, err := s.moduleRepo.GetModuleByID(moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load module: %w", err)
	}
	if module == nil {
		return nil, ErrModuleNotFound
	}

	// Fold the submission into an open assignment when one exists so both
	// paths share the single-completion rule
	assignments, err := s.assignmentRepo.GetAssignmentsByEmail(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	var open *models.Assignment
	for i := range assignments {
		a := &assignments[i]
		if a.ModuleID == module.ID && !a.IsCompleted() {
			open = a
			break
		}
	}

	return s.complete(open, module, user, answers)
}

// complete is the unified completion path. It validates answer
// completeness, grades, and writes the result. When an assignment is
// involved its status is flipped with a conditional update inside the same
// transaction; a concurrent duplicate submission finds zero rows affected
// and the whole transaction rolls back.
func (s *AssignmentService) complete(assignment *models.Assignment, module *models.Module, user *models.User, answers []int) (*models.Result, error) {
	if !AllAnswered(answers) {
		if len(answers) != len(module.Questions) {
			return nil, ErrAnswerCountMismatch
		}
		return nil, ErrUnansweredQuestions
	}

	score, err := Grade(module, answers)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := &models.Result{
		ModuleID:    module.ID,
		Score:       score,
		Answers:     answers,
		CompletedAt: now,
	}
	if user != nil {
		result.UserID = &user.ID
		result.Email = user.Email
		result.TownshipID = *user.TownshipID
	}
	if assignment != nil {
		result.AssignmentID = &assignment.ID
		result.Email = assignment.Email
		result.TownshipID = assignment.TownshipID
	}

	if assignment == nil {
		// Standalone authenticated submission: no status to flip
		id, err := s.resultRepo.CreateResult(s.db, result)
		if err != nil {
			return nil, fmt.Errorf("failed to record result: %w", err)
		}
		result.ID = id
		return result, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	transitioned, err := s.assignmentRepo.CompleteConditional(tx, assignment.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to complete assignment: %w", err)
	}
	if !transitioned {
		return nil, ErrAlreadyCompleted
	}

	id, err := s.resultRepo.CreateResult(tx, result)
	if err != nil {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit completion: %w", err)
	}

	result.ID = id
	return result, nil
}
