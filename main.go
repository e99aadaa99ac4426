package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"oneFlowAPI/handlers"
	"oneFlowAPI/middleware"
	"oneFlowAPI/services"
)

var (
	dbPool              *pgxpool.Pool
	gamificationService *services.GamificationService
	projectService      *services.ProjectService
	taskService         *services.TaskService
	timesheetService    *services.TimesheetService
	financialService    *services.FinancialService
	analyticsService    *services.AnalyticsService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	gamificationService = services.NewGamificationService(dbPool)
	projectService = services.NewProjectService(dbPool, gamificationService)
	taskService = services.NewTaskService(dbPool, gamificationService)
	timesheetService = services.NewTimesheetService(dbPool, gamificationService)
	financialService = services.NewFinancialService(dbPool, gamificationService)
	analyticsService = services.NewAnalyticsService(dbPool)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	// Initialize handlers
	gamificationHandler := handlers.NewGamificationHandler(gamificationService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	timesheetHandler := handlers.NewTimesheetHandler(timesheetService)
	financialHandler := handlers.NewFinancialHandler(financialService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "oneFlow-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	api.HandleFunc("/gamification/check-achievements", gamificationHandler.CheckAchievements).Methods("POST")
	api.HandleFunc("/gamification/achievements/{userId}", gamificationHandler.GetUserAchievements).Methods("GET")
	api.HandleFunc("/gamification/user-stats/{userId}", gamificationHandler.GetUserStats).Methods("GET")
	api.HandleFunc("/gamification/leaderboard", gamificationHandler.GetLeaderboard).Methods("GET")

	api.HandleFunc("/projects", projectHandler.GetProjects).Methods("GET")
	api.HandleFunc("/projects", projectHandler.CreateProject).Methods("POST")
	api.HandleFunc("/projects/{id}", projectHandler.GetProject).Methods("GET")
	api.HandleFunc("/projects/{id}", projectHandler.UpdateProject).Methods("PUT")
	api.HandleFunc("/projects/{id}", projectHandler.DeleteProject).Methods("DELETE")
	api.HandleFunc("/projects/{id}/members", projectHandler.GetMembers).Methods("GET")
	api.HandleFunc("/projects/{id}/members", projectHandler.AddMember).Methods("POST")
	api.HandleFunc("/projects/{id}/members/{userId}", projectHandler.RemoveMember).Methods("DELETE")

	api.HandleFunc("/tasks", taskHandler.GetTasks).Methods("GET")
	api.HandleFunc("/tasks", taskHandler.CreateTask).Methods("POST")
	api.HandleFunc("/tasks/my", taskHandler.GetMyTasks).Methods("GET")
	api.HandleFunc("/tasks/{id}", taskHandler.GetTask).Methods("GET")
	api.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods("PUT")
	api.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods("DELETE")

	api.HandleFunc("/timesheets", timesheetHandler.LogHours).Methods("POST")
	api.HandleFunc("/timesheets/my", timesheetHandler.GetMyTimesheets).Methods("GET")
	api.HandleFunc("/timesheets/task/{taskId}", timesheetHandler.GetTaskTimesheets).Methods("GET")

	api.HandleFunc("/financial/invoices", financialHandler.GetInvoices).Methods("GET")
	api.HandleFunc("/financial/invoices", financialHandler.CreateInvoice).Methods("POST")
	api.HandleFunc("/financial/invoices/{id}/status", financialHandler.UpdateInvoiceStatus).Methods("PUT")
	api.HandleFunc("/financial/vendor-bills", financialHandler.GetVendorBills).Methods("GET")
	api.HandleFunc("/financial/vendor-bills", financialHandler.CreateVendorBill).Methods("POST")
	api.HandleFunc("/financial/expenses", financialHandler.GetExpenses).Methods("GET")
	api.HandleFunc("/financial/expenses", financialHandler.CreateExpense).Methods("POST")
	api.HandleFunc("/financial/expenses/{id}/approve", financialHandler.ApproveExpense).Methods("PUT")

	api.HandleFunc("/analytics/dashboard", analyticsHandler.GetDashboardSummary).Methods("GET")
	api.HandleFunc("/analytics/projects/{projectId}/financials", analyticsHandler.GetProjectFinancials).Methods("GET")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
