package main

import (
	"log"
	"net/http"

	"breakdesk/config"
	"breakdesk/database"
	"breakdesk/handlers"
	"breakdesk/middleware"
	"breakdesk/models"
	"breakdesk/realtime"
	"breakdesk/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize JWT secret
	middleware.SetJWTSecret(cfg.JWTSecret)

	// Initialize database
	if err := database.Init(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Change broker feeds the dashboards; services publish into it after
	// every committed transition.
	broker := realtime.NewBroker()

	breakService := services.NewBreakService(database.GetDB(), cfg, broker)
	attendanceService := services.NewAttendanceService(database.GetDB(), broker)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg)
	attendanceHandler := handlers.NewAttendanceHandler(cfg, attendanceService, breakService)
	breakHandler := handlers.NewBreakHandler(cfg, breakService)
	moderationHandler := handlers.NewModerationHandler(cfg, breakService, attendanceService)
	eventsHandler := handlers.NewEventsHandler(broker)
	teamHandler := handlers.NewTeamHandler()

	// Setup router
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Post("/login", authHandler.Login)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)

		// Logout (doesn't need password change check)
		r.Post("/logout", authHandler.Logout)

		// Password change routes (accessible even when password change required)
		r.Post("/change-password", authHandler.ChangePassword)

		// Routes that require password to be changed first
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePasswordChange)

			// Personal attendance and breaks (all authenticated users)
			r.Get("/me", attendanceHandler.Me)
			r.Post("/attendance/check-in", attendanceHandler.CheckIn)
			r.Post("/attendance/{id}/check-out", attendanceHandler.CheckOut)
			r.Get("/attendance/history", attendanceHandler.History)
			r.Post("/breaks", breakHandler.RequestBreak)
			r.Post("/breaks/{id}/start", breakHandler.StartBreak)
			r.Post("/breaks/{id}/end", breakHandler.EndBreak)
			r.Get("/breaks/eligibility", breakHandler.Eligibility)
			r.Get("/entitlements", breakHandler.Entitlements)
			r.Get("/events", eventsHandler.Stream)

			// Moderation routes (admin and super admin)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
				r.Get("/moderation/pending", moderationHandler.PendingRequests)
				r.Post("/moderation/breaks/{id}/approve", moderationHandler.Approve)
				r.Post("/moderation/breaks/{id}/deny", moderationHandler.Deny)
				r.Post("/moderation/breaks/{id}/force-end", moderationHandler.ForceEnd)
				r.Get("/moderation/roster", moderationHandler.Roster)
				r.Get("/export/csv", moderationHandler.ExportCSV)
			})

			// Super admin only routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleSuperAdmin))
				r.Get("/teams", teamHandler.List)
				r.Post("/teams", teamHandler.Create)
				r.Post("/teams/moderators", teamHandler.AssignModerator)
			})
		})
	})

	log.Printf("Server starting on port %s", cfg.ServerPort)
	log.Printf("Default admin credentials: admin / admin")
	log.Fatal(http.ListenAndServe(":"+cfg.ServerPort, router))
}
