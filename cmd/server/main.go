package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cybertrain/internal/config"
	"cybertrain/internal/database"
	"cybertrain/internal/handlers"
	"cybertrain/internal/repository"
	"cybertrain/internal/security"
	"cybertrain/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	townshipRepo := repository.NewTownshipRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	resultRepo := repository.NewResultRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	if !emailService.IsEnabled() {
		log.Println("Warning: SES_FROM_EMAIL not set, invitation emails are logged instead of sent")
	}

	authService := service.NewAuthService(userRepo, townshipRepo, cfg.SessionDuration)
	assignmentService := service.NewAssignmentService(db, assignmentRepo, moduleRepo, townshipRepo, resultRepo, emailService)
	reportService := service.NewReportService(assignmentRepo, resultRepo, moduleRepo, townshipRepo)
	seedService := service.NewSeedService(moduleRepo)

	// Bootstrap the super admin account so role assignment has a starting
	// point
	if cfg.SuperAdminEmail != "" && cfg.SuperAdminPassword != "" {
		if err := authService.EnsureSuperAdmin(cfg.SuperAdminEmail, cfg.SuperAdminPassword); err != nil {
			log.Fatalf("Failed to ensure super admin account: %v", err)
		}
	}

	// Seed the default training catalog on an empty database
	if err := seedService.SeedDefaultModules(); err != nil {
		log.Printf("Warning: Failed to seed default modules: %v", err)
	}

	// Initialize handlers
	csrf := security.NewCSRFGenerator(cfg.SessionSecret)
	limiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(authService, csrf, limiter)

	googleOAuth := &handlers.GoogleOAuth{
		Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		BaseURL: cfg.AppBaseURL,
	}

	authHandler := handlers.NewAuthHandler(authService, csrf, googleOAuth)
	trainingHandler := handlers.NewTrainingHandler(assignmentService, reportService)
	adminHandler := handlers.NewAdminHandler(assignmentService, reportService, authService)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/signup", middleware.RateLimit(authHandler.Signup))
	mux.HandleFunc("POST /api/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/logout", authHandler.Logout)
	mux.HandleFunc("GET /auth/google/start", authHandler.StartGoogleOAuth)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleOAuthCallback)

	// Magic-link routes: the token is the credential, no session needed
	mux.HandleFunc("GET /api/training/take", trainingHandler.TakeByToken)
	mux.HandleFunc("POST /api/training/take", middleware.RateLimit(trainingHandler.SubmitByToken))

	// Authenticated employee routes
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("GET /api/dashboard", middleware.RequireAuth(trainingHandler.Dashboard))
	mux.HandleFunc("GET /api/modules", middleware.RequireAuth(trainingHandler.ListModules))
	mux.HandleFunc("GET /api/modules/{id}", middleware.RequireAuth(trainingHandler.GetModule))
	mux.HandleFunc("POST /api/modules/{id}/submit", middleware.RequireAuth(middleware.CSRFProtect(trainingHandler.SubmitModule)))

	// Township admin routes
	mux.HandleFunc("POST /api/admin/assignments", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.CreateAssignment)))
	mux.HandleFunc("GET /api/admin/assignments", middleware.RequireAdmin(adminHandler.ListAssignments))
	mux.HandleFunc("GET /api/admin/results", middleware.RequireAdmin(adminHandler.ListResults))
	mux.HandleFunc("GET /api/admin/report", middleware.RequireAdmin(adminHandler.Report))
	mux.HandleFunc("GET /api/admin/users", middleware.RequireAdmin(adminHandler.ListUsers))

	// Super admin routes
	mux.HandleFunc("POST /api/admin/townships", middleware.RequireSuperAdmin(middleware.CSRFProtect(adminHandler.CreateTownship)))
	mux.HandleFunc("GET /api/admin/townships", middleware.RequireSuperAdmin(adminHandler.ListTownships))
	mux.HandleFunc("POST /api/admin/users/{id}/role", middleware.RequireSuperAdmin(middleware.CSRFProtect(adminHandler.AssignRole)))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}
	}
}
