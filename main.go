package main

import (
	"fmt"
	"net/http"
	"os"

	"timeledger/config"
	"timeledger/database"
	"timeledger/handlers"
	"timeledger/ledger"
	"timeledger/logger"
	"timeledger/middleware"
	"timeledger/models"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Initialize JWT secret
	middleware.SetJWTSecret(cfg.JWTSecret)

	// Initialize database
	db, err := database.Init(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Ledger core
	rates := ledger.NewRateResolver(cfg.FallbackRate)
	splitter := ledger.NewPaySplitter()
	audit := ledger.NewAuditRecorder()
	events := ledger.NewAsyncPublisher(log, cfg.EventBufferLen)
	defer events.Close()

	tracker := ledger.NewShiftTracker(db, rates, splitter, audit, log)
	breaks := ledger.NewBreakLedger(db, audit, log)
	approval := ledger.NewApprovalService(db, splitter, audit, events, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg, log)
	shiftHandler := handlers.NewShiftHandler(cfg, tracker, breaks, log)
	entryHandler := handlers.NewEntryHandler(cfg, tracker, approval, log)
	auditHandler := handlers.NewAuditHandler(audit, log)
	adminHandler := handlers.NewAdminHandler(log)

	// Setup router
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestID)

	// Public routes
	router.Post("/login", authHandler.Login)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)

		r.Get("/logout", authHandler.Logout)
		r.Post("/change-password", authHandler.ChangePassword)

		// Shift lifecycle
		r.Post("/shift/clock-in", shiftHandler.ClockIn)
		r.Post("/shift/clock-out", shiftHandler.ClockOut)
		r.Post("/breaks/start", shiftHandler.StartBreak)
		r.Post("/breaks/{id}/end", shiftHandler.EndBreak)

		// Entries
		r.Post("/entries/manual", shiftHandler.CreateManualEntry)
		r.Get("/entries", entryHandler.ListEntries)
		r.Get("/entries/forecast", entryHandler.Forecast)
		r.Get("/entries/{id}", entryHandler.GetEntry)
		r.Post("/entries/{id}/submit", entryHandler.Submit)
		r.Post("/entries/{id}/amend", shiftHandler.AmendEntry)
		r.Post("/entries/{id}/notes", entryHandler.AddNote)

		// Approver routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleApprover))
			r.Post("/entries/{id}/approve", entryHandler.Approve)
			r.Post("/entries/{id}/reject", entryHandler.Reject)
			r.Get("/audit", auditHandler.QueryTrail)
		})

		// Admin only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Post("/entries/{id}/paid", entryHandler.MarkPaid)
			r.Get("/overrides", adminHandler.ListOverrides)
			r.Post("/overrides", adminHandler.UpsertOverride)
			r.Post("/overrides/delete", adminHandler.DeleteOverride)
			r.Get("/jobs", adminHandler.ListJobs)
			r.Post("/jobs", adminHandler.CreateJob)
		})
	})

	log.Info("Server starting", zap.String("port", cfg.ServerPort))
	if err := http.ListenAndServe(":"+cfg.ServerPort, router); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}
