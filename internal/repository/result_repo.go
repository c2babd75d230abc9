package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cybertrain/internal/database"
	"cybertrain/internal/models"
)

// ResultRepository handles quiz result database operations. Results are
// immutable after creation; the answers column stores the ordered list of
// selected option indices as JSON.
type ResultRepository struct {
	db *database.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *database.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// CreateResult inserts a result. Runs on q so token-based completions can
// share a transaction with the assignment status flip.
func (r *ResultRepository) CreateResult(q database.DBTX, result *models.Result) (int64, error) {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return 0, fmt.Errorf("failed to encode answers: %w", err)
	}

	query := `
		INSERT INTO results (assignment_id, user_id, email, module_id, township_id, score, answers, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	return q.ExecReturningID(query,
		result.AssignmentID,
		result.UserID,
		result.Email,
		result.ModuleID,
		result.TownshipID,
		result.Score,
		string(answers),
		result.CompletedAt,
	)
}

const resultColumns = `id, assignment_id, user_id, email, module_id, township_id, score, answers, completed_at`

func scanResult(scan func(dest ...interface{}) error) (*models.Result, error) {
	result := &models.Result{}
	var assignmentID, userID sql.NullInt64
	var answers string
	err := scan(
		&result.ID,
		&assignmentID,
		&userID,
		&result.Email,
		&result.ModuleID,
		&result.TownshipID,
		&result.Score,
		&answers,
		&result.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if assignmentID.Valid {
		result.AssignmentID = &assignmentID.Int64
	}
	if userID.Valid {
		result.UserID = &userID.Int64
	}
	if err := json.Unmarshal([]byte(answers), &result.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers for result %d: %w", result.ID, err)
	}
	return result, nil
}

// GetResultByID retrieves a result by ID
func (r *ResultRepository) GetResultByID(id int64) (*models.Result, error) {
	row := r.db.QueryRow(`SELECT `+resultColumns+` FROM results WHERE id = ?`, id)
	result, err := scanResult(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return result, err
}

// GetResultByAssignmentID retrieves the single result recorded for an
// assignment, if any
func (r *ResultRepository) GetResultByAssignmentID(assignmentID int64) (*models.Result, error) {
	row := r.db.QueryRow(`SELECT `+resultColumns+` FROM results WHERE assignment_id = ?`, assignmentID)
	result, err := scanResult(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return result, err
}

// GetResultsByEmail lists results for one recipient, newest first
func (r *ResultRepository) GetResultsByEmail(email string) ([]models.Result, error) {
	return r.collectQuery(`SELECT `+resultColumns+` FROM results WHERE email = ? ORDER BY completed_at DESC`, email)
}

// GetResultsByTownship lists results scoped to one township (admin view)
func (r *ResultRepository) GetResultsByTownship(townshipID int64) ([]models.Result, error) {
	return r.collectQuery(`SELECT `+resultColumns+` FROM results WHERE township_id = ? ORDER BY completed_at DESC`, townshipID)
}

// GetAllResults lists every result (super admin view, export)
func (r *ResultRepository) GetAllResults() ([]models.Result, error) {
	return r.collectQuery(`SELECT ` + resultColumns + ` FROM results ORDER BY completed_at DESC`)
}

func (r *ResultRepository) collectQuery(query string, args ...interface{}) ([]models.Result, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.Result
	for rows.Next() {
		result, err := scanResult(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, rows.Err()
}

// ModuleStats aggregates completion numbers for one module in one township
type ModuleStats struct {
	ModuleID     int64
	Assigned     int
	Completed    int
	AverageScore float64
	LastActivity *time.Time
}

// GetModuleStatsByTownship computes per-module assignment and result
// aggregates for the township report. Correlated subqueries keep the
// assignment and result counts independent of each other.
func (r *ResultRepository) GetModuleStatsByTownship(townshipID int64) ([]ModuleStats, error) {
	query := `
		SELECT m.id,
		       (SELECT COUNT(*) FROM training_assignments a
		        WHERE a.module_id = m.id AND a.township_id = ?),
		       (SELECT COUNT(*) FROM training_assignments a
		        WHERE a.module_id = m.id AND a.township_id = ? AND a.status = 'completed'),
		       (SELECT COALESCE(AVG(res.score), 0) FROM results res
		        WHERE res.module_id = m.id AND res.township_id = ?),
		       (SELECT MAX(res.completed_at) FROM results res
		        WHERE res.module_id = m.id AND res.township_id = ?)
		FROM modules m
		ORDER BY m.id
	`
	rows, err := r.db.Query(query, townshipID, townshipID, townshipID, townshipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []ModuleStats
	for rows.Next() {
		var s ModuleStats
		var lastActivity sql.NullTime
		if err := rows.Scan(&s.ModuleID, &s.Assigned, &s.Completed, &s.AverageScore, &lastActivity); err != nil {
			return nil, err
		}
		if lastActivity.Valid {
			s.LastActivity = &lastActivity.Time
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
