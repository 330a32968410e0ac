package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func SetupRoutes(router *mux.Router, handlers *Handlers) {
	api := router.PathPrefix("/api/v1").Subrouter()

	// Simulation jobs
	simulations := api.PathPrefix("/simulations").Subrouter()
	simulations.HandleFunc("", handlers.CreateSimulation).Methods("POST")
	simulations.HandleFunc("", handlers.ListSimulations).Methods("GET")
	simulations.HandleFunc("/{jobId}", handlers.GetSimulation).Methods("GET")
	simulations.HandleFunc("/{jobId}", handlers.CancelSimulation).Methods("DELETE")

	// Single traced trial
	api.HandleFunc("/trials", handlers.RunTrial).Methods("POST")

	// Stored run history
	history := api.PathPrefix("/history").Subrouter()
	history.HandleFunc("", handlers.ListHistory).Methods("GET")
	history.HandleFunc("/{runId}", handlers.GetHistoryRun).Methods("GET")

	api.HandleFunc("/measures", handlers.ListMeasures).Methods("GET")
	api.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
}

// NewRouter builds the full HTTP handler: routes, logging, recovery and CORS.
func NewRouter(handlers *Handlers, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	SetupRoutes(router, handlers)

	router.Use(LoggingMiddleware)
	router.Use(RecoveryMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	})

	return c.Handler(router)
}
