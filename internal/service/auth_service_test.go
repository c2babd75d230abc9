package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cybertrain/internal/database"
	"cybertrain/internal/models"
	"cybertrain/internal/repository"
)

func newAuthEnv(t *testing.T) (*AuthService, *repository.TownshipRepository) {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	townshipRepo := repository.NewTownshipRepository(db)
	return NewAuthService(userRepo, townshipRepo, time.Hour), townshipRepo
}

func TestRegisterAndLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	svc, townships := newAuthEnv(t)

	if _, err := townships.CreateTownship("Springfield Township"); err != nil {
		t.Fatalf("Failed to create township: %v", err)
	}

	user, err := svc.Register("Clerk@Springfield.gov", "correct-horse", "Casey Clerk", "Springfield Township")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "clerk@springfield.gov" {
		t.Errorf("Email = %q, want lowercased", user.Email)
	}
	if user.Role != models.RoleUser {
		t.Errorf("Role = %v, want %v", user.Role, models.RoleUser)
	}
	if user.TownshipID == nil {
		t.Error("TownshipID not linked")
	}

	// Duplicate registration is rejected
	if _, err := svc.Register("clerk@springfield.gov", "correct-horse", "Casey Clerk", ""); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate Register() error = %v, want %v", err, ErrEmailTaken)
	}

	session, loggedIn, err := svc.Login("clerk@springfield.gov", "correct-horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("Login() user ID = %v, want %v", loggedIn.ID, user.ID)
	}

	resolved, err := svc.ValidateSession(session.ID)
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("ValidateSession() user ID = %v, want %v", resolved.ID, user.ID)
	}

	if err := svc.Logout(session.ID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := svc.ValidateSession(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("ValidateSession() after logout error = %v, want %v", err, ErrSessionNotFound)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	svc, _ := newAuthEnv(t)

	if _, err := svc.Register("clerk@springfield.gov", "correct-horse", "Casey Clerk", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, _, err := svc.Login("clerk@springfield.gov", "wrong-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) error = %v, want %v", err, ErrInvalidCredentials)
	}
	if _, _, err := svc.Login("nobody@springfield.gov", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(unknown email) error = %v, want %v", err, ErrInvalidCredentials)
	}
}

func TestRegisterUnknownTownship(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	svc, _ := newAuthEnv(t)

	if _, err := svc.Register("clerk@springfield.gov", "correct-horse", "Casey Clerk", "Atlantis"); !errors.Is(err, ErrTownshipNotFound) {
		t.Errorf("Register() error = %v, want %v", err, ErrTownshipNotFound)
	}
}

func TestOAuthLoginProvisionsAndReuses(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	svc, _ := newAuthEnv(t)

	_, first, err := svc.OAuthLogin("google", "sub-123", "clerk@springfield.gov", "Casey Clerk")
	if err != nil {
		t.Fatalf("OAuthLogin() error = %v", err)
	}
	if first.Role != models.RoleUser {
		t.Errorf("Role = %v, want %v", first.Role, models.RoleUser)
	}

	_, second, err := svc.OAuthLogin("google", "sub-123", "clerk@springfield.gov", "Casey Clerk")
	if err != nil {
		t.Fatalf("second OAuthLogin() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second OAuthLogin() provisioned a new account: %v != %v", second.ID, first.ID)
	}
}

func TestAssignRole(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	svc, townships := newAuthEnv(t)

	township, err := townships.CreateTownship("Springfield Township")
	if err != nil {
		t.Fatalf("Failed to create township: %v", err)
	}

	if err := svc.EnsureSuperAdmin("root@example.gov", "super-secret"); err != nil {
		t.Fatalf("EnsureSuperAdmin() error = %v", err)
	}
	_, super, err := svc.Login("root@example.gov", "super-secret")
	if err != nil {
		t.Fatalf("super admin Login() error = %v", err)
	}

	target, err := svc.Register("clerk@springfield.gov", "correct-horse", "Casey Clerk", "Springfield Township")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// A plain user cannot assign roles
	if _, err := svc.AssignRole(target, target.ID, models.RoleAdmin, &township.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("AssignRole by user error = %v, want %v", err, ErrNotAuthorized)
	}

	// Promoting to admin requires a township
	if _, err := svc.AssignRole(super, target.ID, models.RoleAdmin, nil); err == nil {
		t.Error("AssignRole(admin, no township) expected error")
	}

	promoted, err := svc.AssignRole(super, target.ID, models.RoleAdmin, &township.ID)
	if err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}
	if promoted.Role != models.RoleAdmin {
		t.Errorf("Role = %v, want %v", promoted.Role, models.RoleAdmin)
	}
	if promoted.TownshipID == nil || *promoted.TownshipID != township.ID {
		t.Errorf("TownshipID = %v, want %v", promoted.TownshipID, township.ID)
	}

	// Unknown target
	if _, err := svc.AssignRole(super, 9999, models.RoleAdmin, &township.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("AssignRole(unknown user) error = %v, want %v", err, ErrUserNotFound)
	}
}

func TestEnsureSuperAdminIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	svc, _ := newAuthEnv(t)

	if err := svc.EnsureSuperAdmin("root@example.gov", "super-secret"); err != nil {
		t.Fatalf("EnsureSuperAdmin() error = %v", err)
	}
	if err := svc.EnsureSuperAdmin("root@example.gov", "super-secret"); err != nil {
		t.Fatalf("second EnsureSuperAdmin() error = %v", err)
	}

	_, user, err := svc.Login("root@example.gov", "super-secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !user.Role.IsSuperAdmin() {
		t.Errorf("Role = %v, want super admin", user.Role)
	}
}
