package routes

import (
	"net/http"

	"github.com/dcode-github/listing_analytics/controllers"
	"github.com/dcode-github/listing_analytics/metrics"
	"github.com/dcode-github/listing_analytics/middleware"
	"github.com/gorilla/mux"
)

func Routes(router *mux.Router, h *controllers.Handler, m *metrics.Metrics) {
	router.Use(middleware.RequestLogger(m))
	auth := middleware.AuthMiddleware(h.Tokens)
	protected := func(fn http.HandlerFunc) http.Handler { return auth(fn) }

	// Operations
	router.HandleFunc("/health", h.HealthCheck()).Methods("GET")
	if m != nil {
		router.Handle("/metrics", m.Handler()).Methods("GET")
	}

	// Auth routes
	router.HandleFunc("/register", h.RegisterUser()).Methods("POST")
	router.HandleFunc("/login", h.LoginUser()).Methods("POST")

	// Property routes
	router.HandleFunc("/upload", h.UploadProperty()).Methods("POST")
	router.HandleFunc("/updateRemarks", h.UpdateRemarks()).Methods("PATCH")
	router.HandleFunc("/getProperties", h.GetProperties()).Methods("GET")
	router.HandleFunc("/getPropertyCount", h.GetPropertyCount()).Methods("GET")
	router.HandleFunc("/getpaginatedproperties", h.GetPaginatedProperties()).Methods("GET")
	router.HandleFunc("/getPropertyPosition/{id}", h.GetPropertyPosition()).Methods("GET")
	router.HandleFunc("/getVerifiedDocuments", h.GetVerifiedDocuments()).Methods("GET")
	router.Handle("/updateVerificationStatus", protected(h.UpdateVerificationStatus())).Methods("PATCH")
	router.HandleFunc("/filterPropertiesByBody", h.FilterPropertiesByBody()).Methods("POST")
	router.Handle("/deleteproperty/{id}", protected(h.DeleteProperty())).Methods("DELETE")
	router.HandleFunc("/property/{id}", h.GetPropertyByID()).Methods("GET")
	router.HandleFunc("/api/properties/getPropertiesByIds", h.GetPropertiesByIds()).Methods("POST")

	// Search routes
	router.HandleFunc("/search", h.SearchAgentProperties()).Methods("GET")
	router.HandleFunc("/searchproperty", h.SearchProperty()).Methods("GET")
	router.HandleFunc("/location", h.LocationProperties()).Methods("GET")
	router.HandleFunc("/property/{id}", h.UpdateProperty()).Methods("PUT")
	router.HandleFunc("/updatePropertyImages/{id}", h.UpdatePropertyImages()).Methods("PUT")

	// Agent routes
	router.HandleFunc("/agents/{agentId}/properties", h.GetAgentProperties()).Methods("GET")
	router.HandleFunc("/latest", h.GetLatestPropertyByAgent()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// Analytics routes
	api.HandleFunc("/analytics", h.GetPropertyAnalytics()).Methods("GET")
	api.HandleFunc("/stats", h.GetAgentStats()).Methods("GET")
	api.HandleFunc("/top-agents", h.GetTopAgents()).Methods("GET")
	api.HandleFunc("/agent/documents", h.GetAgentWeeklyDocuments()).Methods("GET")
	api.HandleFunc("/agentstats", h.GetAgentSubtypeStats()).Methods("GET")

	// Mirror routes
	api.Handle("/trigger", protected(h.TriggerSync())).Methods("POST")
	api.Handle("/backup", protected(h.SaveBackup())).Methods("POST")
	api.HandleFunc("/backup", h.GetBackup()).Methods("GET")
}
