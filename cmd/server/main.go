package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"familietask/internal/config"
	"familietask/internal/database"
	"familietask/internal/handlers"
	"familietask/internal/repository"
	"familietask/internal/security"
	"familietask/internal/service"
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
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	joinRequestRepo := repository.NewJoinRequestRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo)
	familyService := service.NewFamilyService(familyRepo, userRepo)
	joinRequestService := service.NewJoinRequestService(joinRequestRepo, familyRepo)
	taskService := service.NewTaskService(taskRepo, familyRepo)

	// 10 auth attempts per IP per 15 minutes
	rateLimiter := security.NewRateLimiter(10, 15*time.Minute)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, rateLimiter)
	authHandler := handlers.NewAuthHandler(authService)
	familyHandler := handlers.NewFamilyHandler(familyService, joinRequestService)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /logout", authHandler.Logout)

	// Family routes
	mux.HandleFunc("POST /createFamily", middleware.RequireAuth(familyHandler.CreateFamily))
	mux.HandleFunc("POST /join-request", middleware.RequireAuth(familyHandler.SubmitJoinRequest))
	mux.HandleFunc("GET /api/families", middleware.RequireAuth(familyHandler.ListFamilies))
	mux.HandleFunc("POST /api/family/switch", middleware.RequireAuth(familyHandler.SwitchActiveFamily))
	mux.HandleFunc("GET /api/family/active", middleware.RequireAuth(familyHandler.GetActiveFamily))
	mux.HandleFunc("GET /api/family-members", middleware.RequireAuth(familyHandler.ListFamilyMembers))
	mux.HandleFunc("GET /api/user/permissions", middleware.RequireAuth(familyHandler.GetPermissions))

	// Join request routes
	mux.HandleFunc("GET /api/join-requests", middleware.RequireAuth(familyHandler.ListJoinRequests))
	mux.HandleFunc("POST /api/join-requests/{id}/respond", middleware.RequireAuth(familyHandler.RespondToJoinRequest))

	// Task routes
	mux.HandleFunc("POST /api/tasks", middleware.RequireAuth(taskHandler.CreateTask))
	mux.HandleFunc("GET /api/tasks", middleware.RequireAuth(taskHandler.ListFamilyTasks))
	mux.HandleFunc("GET /api/mytasks", middleware.RequireAuth(taskHandler.ListMyTasks))
	mux.HandleFunc("GET /api/tasks/pending-approval", middleware.RequireAuth(taskHandler.ListPendingApproval))
	mux.HandleFunc("POST /api/tasks/{id}/complete", middleware.RequireAuth(taskHandler.CompleteTask))
	mux.HandleFunc("POST /api/tasks/{id}/approve", middleware.RequireAuth(taskHandler.ApproveTask))
	mux.HandleFunc("POST /api/tasks/{id}/reject", middleware.RequireAuth(taskHandler.RejectTask))
	mux.HandleFunc("GET /api/points", middleware.RequireAuth(taskHandler.GetPoints))

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

	// Start background cleanup of expired sessions and join requests
	go cleanupExpired(authService, joinRequestService)

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

func cleanupExpired(authService *service.AuthService, joinRequestService *service.JoinRequestService) {
	sweep := func() {
		if n, err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else if n > 0 {
			log.Printf("Cleaned up %d expired sessions", n)
		}

		if n, err := joinRequestService.CleanupExpired(); err != nil {
			log.Printf("Error cleaning up expired join requests: %v", err)
		} else if n > 0 {
			log.Printf("Cleaned up %d expired join requests", n)
		}
	}

	sweep()

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		sweep()
	}
}
