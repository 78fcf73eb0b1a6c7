package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/a1score/backend/internal/auth"
	"github.com/a1score/backend/internal/database"
	"github.com/a1score/backend/internal/gamification"
	"github.com/a1score/backend/internal/middleware"
	"github.com/a1score/backend/internal/tutor"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize handlers
	authHandler := auth.NewHandler(db)

	gamStore := gamification.NewStore(db)
	gamService := gamification.NewService(gamStore)
	gamHandler := gamification.NewHandler(gamService)

	tutorStore := tutor.NewStore(db)
	tutorService := tutor.NewService(tutorStore, tutor.NewClient(), gamService)
	tutorHandler := tutor.NewHandler(tutorService)

	// Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gamService.StartRepairReplenishWorker(ctx)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	// Gamification
	protected.HandleFunc("/gamification", gamHandler.GetGamification).Methods("GET")
	protected.HandleFunc("/gamification/events", gamHandler.RecordEvent).Methods("POST")
	protected.HandleFunc("/gamification/activity", gamHandler.RecentActivity).Methods("GET")
	protected.HandleFunc("/gamification/streak", gamHandler.GetStreak).Methods("GET")
	protected.HandleFunc("/gamification/streak/repair", gamHandler.RepairStreak).Methods("POST")
	protected.HandleFunc("/gamification/levels", gamHandler.SubjectLevels).Methods("GET")
	protected.HandleFunc("/gamification/achievements", gamHandler.ListAchievements).Methods("GET")
	protected.HandleFunc("/leaderboard", gamHandler.Leaderboard).Methods("GET")
	protected.HandleFunc("/leaderboard/me", gamHandler.MyRank).Methods("GET")
	protected.HandleFunc("/leaderboard/preferences", gamHandler.GetPreferences).Methods("GET")
	protected.HandleFunc("/leaderboard/preferences", gamHandler.UpdatePreferences).Methods("PUT")

	// Tutor
	protected.HandleFunc("/tutor/sessions", tutorHandler.StartSession).Methods("POST")
	protected.HandleFunc("/tutor/sessions/{id}/messages", tutorHandler.SendMessage).Methods("POST")
	protected.HandleFunc("/tutor/sessions/{id}", tutorHandler.GetTranscript).Methods("GET")
	protected.HandleFunc("/tutor/sessions/{id}/end", tutorHandler.EndSession).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
