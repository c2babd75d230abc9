package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"cybertrain/internal/database"
	"cybertrain/internal/models"
)

// ModuleRepository handles training module database operations.
// Question lists are stored as JSON in a single column; modules are
// immutable once assignments reference them.
type ModuleRepository struct {
	db *database.DB
}

// NewModuleRepository creates a new module repository
func NewModuleRepository(db *database.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// CreateModule inserts a new training module after validating its quiz
func (r *ModuleRepository) CreateModule(module *models.Module) (*models.Module, error) {
	if err := module.Validate(); err != nil {
		return nil, err
	}

	questions, err := json.Marshal(module.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode questions: %w", err)
	}

	query := `
		INSERT INTO modules (title, description, video_url, questions)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, module.Title, module.Description, module.VideoURL, string(questions))
	if err != nil {
		return nil, err
	}
	return r.GetModuleByID(id)
}

// GetModuleByID retrieves a module by ID
func (r *ModuleRepository) GetModuleByID(id int64) (*models.Module, error) {
	query := `SELECT id, title, description, video_url, questions, created_at FROM modules WHERE id = ?`

	module := &models.Module{}
	var questions string
	err := r.db.QueryRow(query, id).Scan(
		&module.ID,
		&module.Title,
		&module.Description,
		&module.VideoURL,
		&questions,
		&module.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(questions), &module.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions for module %d: %w", id, err)
	}
	return module, nil
}

// GetAllModules lists all modules ordered by ID
func (r *ModuleRepository) GetAllModules() ([]models.Module, error) {
	query := `SELECT id, title, description, video_url, questions, created_at FROM modules ORDER BY id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []models.Module
	for rows.Next() {
		var module models.Module
		var questions string
		err := rows.Scan(
			&module.ID,
			&module.Title,
			&module.Description,
			&module.VideoURL,
			&questions,
			&module.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(questions), &module.Questions); err != nil {
			return nil, fmt.Errorf("failed to decode questions for module %d: %w", module.ID, err)
		}
		modules = append(modules, module)
	}
	return modules, rows.Err()
}

// CountModules returns the number of seeded modules
func (r *ModuleRepository) CountModules() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM modules`).Scan(&count)
	return count, err
}
