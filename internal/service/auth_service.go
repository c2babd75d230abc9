package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cybertrain/internal/models"
	"cybertrain/internal/repository"
	"cybertrain/internal/security"
	"cybertrain/internal/validation"
)

// AuthService handles authentication and account business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	townshipRepo    *repository.TownshipRepository
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, townshipRepo *repository.TownshipRepository, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		townshipRepo:    townshipRepo,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new employee account with role user. The township is
// looked up by name so signup forms can present the municipal list.
func (s *AuthService) Register(email, password, fullName, townshipName string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(fullName); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	var townshipID *int64
	if townshipName != "" {
		township, err := s.townshipRepo.GetTownshipByName(strings.TrimSpace(townshipName))
		if err != nil {
			return nil, fmt.Errorf("failed to look up township: %w", err)
		}
		if township == nil {
			return nil, ErrTownshipNotFound
		}
		townshipID = &township.ID
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(email, passwordHash, fullName, models.RoleUser, townshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	return s.createSession(user)
}

// OAuthLogin finds or provisions the account behind a verified SSO
// identity and creates a session
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*models.Session, *models.User, error) {
	if subject == "" || email == "" {
		return nil, nil, ErrInvalidCredentials
	}
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up SSO identity: %w", err)
	}
	if user == nil {
		// Fall back to email so an existing password account gets reused
		user, err = s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up user: %w", err)
		}
	}
	if user == nil {
		if name == "" {
			name = email
		}
		user, err = s.userRepo.CreateOAuthUser(email, name, provider, subject, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to provision SSO user: %w", err)
		}
	}

	return s.createSession(user)
}

func (s *AuthService) createSession(user *models.User) (*models.Session, *models.User, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.userRepo.CreateSession(sessionID, user.ID, expiresAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, user, nil
}

// ValidateSession checks if a session is valid and returns the associated
// user. The returned user is the explicit principal passed into every
// downstream service call.
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// Logout removes a session
func (s *AuthService) Logout(sessionID string) error {
	return s.userRepo.DeleteSession(sessionID)
}

// CleanupExpiredSessions removes expired sessions
func (s *AuthService) CleanupExpiredSessions() error {
	return s.userRepo.DeleteExpiredSessions()
}

// AssignRole changes a user's role and township scope. Only a super admin
// may do this; role assignment is deliberately out-of-band from signup.
func (s *AuthService) AssignRole(actor *models.User, userID int64, role models.Role, townshipID *int64) (*models.User, error) {
	if actor == nil || !actor.Role.IsSuperAdmin() {
		return nil, ErrNotAuthorized
	}
	if !role.IsValid() {
		return nil, validation.ValidationError{Field: "role", Message: "unknown role"}
	}
	if role == models.RoleAdmin && townshipID == nil {
		return nil, validation.ValidationError{Field: "township_id", Message: "township admins need a township"}
	}
	if townshipID != nil {
		township, err := s.townshipRepo.GetTownshipByID(*townshipID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up township: %w", err)
		}
		if township == nil {
			return nil, ErrTownshipNotFound
		}
	}

	if err := s.userRepo.UpdateRole(userID, role, townshipID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return s.userRepo.GetUserByID(userID)
}

// UsersFor lists accounts for an admin. Township admins see their own
// township; super admins may name a township or omit it for everyone.
func (s *AuthService) UsersFor(actor *models.User, townshipID int64) ([]models.User, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	if actor.Role.IsSuperAdmin() {
		if townshipID > 0 {
			return s.userRepo.GetUsersByTownship(townshipID)
		}
		return s.userRepo.GetAllUsers()
	}
	if actor.TownshipID == nil {
		return nil, ErrNotAuthorized
	}
	return s.userRepo.GetUsersByTownship(*actor.TownshipID)
}

// EnsureSuperAdmin bootstraps the configured super admin account at
// startup so the first deployment has a way in
func (s *AuthService) EnsureSuperAdmin(email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	email = strings.TrimSpace(strings.ToLower(email))

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to check super admin: %w", err)
	}
	if existing != nil {
		if !existing.Role.IsSuperAdmin() {
			return s.userRepo.UpdateRole(existing.ID, models.RoleSuperAdmin, existing.TownshipID)
		}
		return nil
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash super admin password: %w", err)
	}
	if _, err := s.userRepo.CreateUser(email, passwordHash, "Super Admin", models.RoleSuperAdmin, nil); err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}
	log.Printf("Super admin account created: %s", email)
	return nil
}
