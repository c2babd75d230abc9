package repository

import (
	"database/sql"
	"time"

	"cybertrain/internal/database"
	"cybertrain/internal/models"
)

// UserRepository handles user and session database operations
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser creates a new user account
func (r *UserRepository) CreateUser(email, passwordHash, fullName string, role models.Role, townshipID *int64) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, full_name, role, township_id)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, email, passwordHash, fullName, string(role), townshipID)
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(id)
}

// CreateOAuthUser creates a user provisioned through SSO
func (r *UserRepository) CreateOAuthUser(email, fullName, provider, subject string, townshipID *int64) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, full_name, oauth_provider, oauth_subject, role, township_id)
		VALUES (?, '', ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, email, fullName, provider, subject, string(models.RoleUser), townshipID)
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(id)
}

const userColumns = `id, email, password_hash, full_name,
	COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''),
	role, township_id, created_at, updated_at`

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var townshipID sql.NullInt64
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&user.Role,
		&townshipID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if townshipID.Valid {
		user.TownshipID = &townshipID.Int64
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanUser(row)
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return r.scanUser(row)
}

// GetUserByOAuth retrieves a user by SSO provider and subject
func (r *UserRepository) GetUserByOAuth(provider, subject string) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE oauth_provider = ? AND oauth_subject = ?`, provider, subject)
	return r.scanUser(row)
}

// UpdateRole changes a user's role and township scope
func (r *UserRepository) UpdateRole(userID int64, role models.Role, townshipID *int64) error {
	query := `UPDATE users SET role = ?, township_id = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.Exec(query, string(role), townshipID, time.Now().UTC(), userID)
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

// GetUsersByTownship lists users scoped to one township
func (r *UserRepository) GetUsersByTownship(townshipID int64) ([]models.User, error) {
	rows, err := r.db.Query(`SELECT `+userColumns+` FROM users WHERE township_id = ? ORDER BY email`, townshipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// GetAllUsers lists every user (super admin view, export)
func (r *UserRepository) GetAllUsers() ([]models.User, error) {
	rows, err := r.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func collectUsers(rows *sql.Rows) ([]models.User, error) {
	var users []models.User
	for rows.Next() {
		var user models.User
		var townshipID sql.NullInt64
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.FullName,
			&user.OAuthProvider,
			&user.OAuthSubject,
			&user.Role,
			&townshipID,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if townshipID.Valid {
			user.TownshipID = &townshipID.Int64
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CreateSession stores a new session
func (r *UserRepository) CreateSession(sessionID string, userID int64, expiresAt time.Time) (*models.Session, error) {
	query := `INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)`
	if _, err := r.db.Exec(query, sessionID, userID, expiresAt); err != nil {
		return nil, err
	}
	return &models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// GetSession retrieves a session by ID
func (r *UserRepository) GetSession(sessionID string) (*models.Session, error) {
	query := `SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = ?`
	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession removes a session
func (r *UserRepository) DeleteSession(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

// DeleteExpiredSessions removes all expired sessions
func (r *UserRepository) DeleteExpiredSessions() error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, time.Now())
	return err
}
