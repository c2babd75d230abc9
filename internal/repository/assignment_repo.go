package repository

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"time"

	"cybertrain/internal/database"
	"cybertrain/internal/models"
)

// AssignmentRepository handles training assignment database operations.
// Assignments are an audit trail and are never deleted.
type AssignmentRepository struct {
	db *database.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *database.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// GenerateToken generates the random single-use token embedded in the
// emailed training link. 32 hex chars from crypto/rand; a UNIQUE index on
// the column backs up uniqueness.
func (r *AssignmentRepository) GenerateToken() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CreateAssignment creates a new pending assignment with a fresh token
func (r *AssignmentRepository) CreateAssignment(email string, moduleID, townshipID int64) (*models.Assignment, error) {
	token, err := r.GenerateToken()
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO training_assignments (email, module_id, township_id, status, token)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, email, moduleID, townshipID, models.AssignmentPending, token)
	if err != nil {
		return nil, err
	}
	return r.GetAssignmentByID(id)
}

const assignmentColumns = `id, email, module_id, township_id, status, token, created_at, sent_at, completed_at`

func scanAssignment(scan func(dest ...interface{}) error) (*models.Assignment, error) {
	assignment := &models.Assignment{}
	var sentAt, completedAt sql.NullTime
	err := scan(
		&assignment.ID,
		&assignment.Email,
		&assignment.ModuleID,
		&assignment.TownshipID,
		&assignment.Status,
		&assignment.Token,
		&assignment.CreatedAt,
		&sentAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	if sentAt.Valid {
		assignment.SentAt = &sentAt.Time
	}
	if completedAt.Valid {
		assignment.CompletedAt = &completedAt.Time
	}
	return assignment, nil
}

// GetAssignmentByID retrieves an assignment by ID
func (r *AssignmentRepository) GetAssignmentByID(id int64) (*models.Assignment, error) {
	row := r.db.QueryRow(`SELECT `+assignmentColumns+` FROM training_assignments WHERE id = ?`, id)
	assignment, err := scanAssignment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return assignment, err
}

// GetAssignmentByToken retrieves an assignment by its magic-link token
func (r *AssignmentRepository) GetAssignmentByToken(token string) (*models.Assignment, error) {
	row := r.db.QueryRow(`SELECT `+assignmentColumns+` FROM training_assignments WHERE token = ?`, token)
	assignment, err := scanAssignment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return assignment, err
}

// MarkSent records notifier success: stamps sent_at and advances the
// status, but only while the assignment is still pending.
func (r *AssignmentRepository) MarkSent(id int64, sentAt time.Time) error {
	query := `
		UPDATE training_assignments
		SET status = ?, sent_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := r.db.Exec(query, models.AssignmentSent, sentAt, id, models.AssignmentPending)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CompleteConditional transitions an assignment to completed, but only from
// a non-terminal status. The WHERE clause is the single atomic operation
// that makes a concurrent double submission lose: exactly one caller sees
// a row affected. Runs on q so it can share a transaction with the result
// insert.
func (r *AssignmentRepository) CompleteConditional(q database.DBTX, id int64, completedAt time.Time) (bool, error) {
	query := `
		UPDATE training_assignments
		SET status = ?, completed_at = ?
		WHERE id = ? AND status IN (?, ?)
	`
	result, err := q.Exec(query, models.AssignmentCompleted, completedAt, id,
		models.AssignmentPending, models.AssignmentSent)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// GetAssignmentsByEmail lists assignments addressed to one recipient
func (r *AssignmentRepository) GetAssignmentsByEmail(email string) ([]models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM training_assignments WHERE email = ? ORDER BY created_at DESC`
	rows, err := r.db.Query(query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// GetAssignmentsByTownship lists assignments for one township (admin view)
func (r *AssignmentRepository) GetAssignmentsByTownship(townshipID int64) ([]models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM training_assignments WHERE township_id = ? ORDER BY created_at DESC`
	rows, err := r.db.Query(query, townshipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// GetAllAssignments lists every assignment (super admin view, export)
func (r *AssignmentRepository) GetAllAssignments() ([]models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM training_assignments ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func collectAssignments(rows *sql.Rows) ([]models.Assignment, error) {
	var assignments []models.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows.Scan)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *assignment)
	}
	return assignments, rows.Err()
}
