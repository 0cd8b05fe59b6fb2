package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"callpulse/internal/config"
	"callpulse/internal/service"
	"callpulse/internal/transport/rest/handler"
	"callpulse/internal/transport/rest/middleware"
	"callpulse/internal/transport/ws"
	"callpulse/pkg/logger"
)

// Container holds all dependencies for the router
type Container struct {
	Config *config.Config

	AuthService        *service.AuthService
	SurveyService      *service.SurveyService
	ResponseService    *service.ResponseService
	OfferService       *service.OfferService
	EligibilityService *service.EligibilityService
	AnalyticsService   *service.AnalyticsService
	WebhookService     *service.WebhookService
	TransferClient     *service.TransferClient
	WSHub              *ws.Hub

	Log logger.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	surveyHandler := handler.NewSurveyHandler(c.SurveyService)
	responseHandler := handler.NewResponseHandler(c.ResponseService)
	callHandler := handler.NewCallHandler(c.OfferService, c.TransferClient)
	eligibilityHandler := handler.NewEligibilityHandler(c.EligibilityService)
	analyticsHandler := handler.NewAnalyticsHandler(c.AnalyticsService)
	webhookHandler := handler.NewWebhookHandler(c.WebhookService, c.Config.WebhookSecret)
	configHandler := handler.NewConfigHandler(c.Config)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.Log)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// IVR-facing routes. These are called from the dialplan, which holds
	// no admin token; the network boundary protects them in deployment.
	v1.HandleFunc("/calls/offer", callHandler.EvaluateOffer).Methods("POST", "OPTIONS")
	v1.HandleFunc("/calls/transfer", callHandler.Transfer).Methods("POST", "OPTIONS")
	v1.HandleFunc("/responses", responseHandler.Submit).Methods("POST", "OPTIONS")
	v1.HandleFunc("/responses/{responseId}/answers", responseHandler.SaveDraft).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/responses/{responseId}/finalize", responseHandler.Finalize).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/tenants/{tenantId}/alerts", wsHandler.SupervisorWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Admin routes (require admin auth)
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/templates", surveyHandler.CreateTemplate).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/templates", surveyHandler.ListTemplates).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/templates/{templateId}", surveyHandler.GetTemplate).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/templates/{templateId}", surveyHandler.UpdateTemplate).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/templates/{templateId}", surveyHandler.DeactivateTemplate).Methods("DELETE", "OPTIONS")

	adminRoutes.HandleFunc("/instances", surveyHandler.CreateInstance).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/instances", surveyHandler.ListInstances).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/instances/{instanceId}", surveyHandler.GetInstance).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/instances/{instanceId}", surveyHandler.UpdateInstance).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/instances/{instanceId}", surveyHandler.DeactivateInstance).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/instances/{instanceId}/analytics", analyticsHandler.Report).Methods("GET", "OPTIONS")

	adminRoutes.HandleFunc("/responses/{responseId}", responseHandler.Get).Methods("GET", "OPTIONS")

	adminRoutes.HandleFunc("/eligibility", eligibilityHandler.Check).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/eligibility/ledger", eligibilityHandler.Ledger).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/eligibility/blacklist", eligibilityHandler.Blacklist).Methods("PUT", "OPTIONS")

	adminRoutes.HandleFunc("/webhooks/test", webhookHandler.Test).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/webhooks/verify", webhookHandler.Verify).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/webhooks/sign", webhookHandler.Sign).Methods("POST", "OPTIONS")

	adminRoutes.HandleFunc("/config", configHandler.Get).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization, X-Auth-Token"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
