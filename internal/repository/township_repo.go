package repository

import (
	"database/sql"

	"cybertrain/internal/database"
	"cybertrain/internal/models"
)

// TownshipRepository handles township database operations
type TownshipRepository struct {
	db *database.DB
}

// NewTownshipRepository creates a new township repository
func NewTownshipRepository(db *database.DB) *TownshipRepository {
	return &TownshipRepository{db: db}
}

// CreateTownship creates a new township
func (r *TownshipRepository) CreateTownship(name string) (*models.Township, error) {
	id, err := r.db.ExecReturningID(`INSERT INTO townships (name) VALUES (?)`, name)
	if err != nil {
		return nil, err
	}
	return r.GetTownshipByID(id)
}

// GetTownshipByID retrieves a township by ID
func (r *TownshipRepository) GetTownshipByID(id int64) (*models.Township, error) {
	query := `SELECT id, name, created_at FROM townships WHERE id = ?`
	township := &models.Township{}
	err := r.db.QueryRow(query, id).Scan(&township.ID, &township.Name, &township.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return township, nil
}

// GetTownshipByName retrieves a township by its unique name
func (r *TownshipRepository) GetTownshipByName(name string) (*models.Township, error) {
	query := `SELECT id, name, created_at FROM townships WHERE name = ?`
	township := &models.Township{}
	err := r.db.QueryRow(query, name).Scan(&township.ID, &township.Name, &township.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return township, nil
}

// GetAllTownships lists all townships
func (r *TownshipRepository) GetAllTownships() ([]models.Township, error) {
	rows, err := r.db.Query(`SELECT id, name, created_at FROM townships ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var townships []models.Township
	for rows.Next() {
		var township models.Township
		if err := rows.Scan(&township.ID, &township.Name, &township.CreatedAt); err != nil {
			return nil, err
		}
		townships = append(townships, township)
	}
	return townships, rows.Err()
}
