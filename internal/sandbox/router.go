/**
 * @description
 * This file sets up the HTTP router for the sandbox backend using go-chi/chi. It applies
 * logging, recovery and CORS middleware and maps the banking routes to their handlers.
 * Everything except /health requires a sandbox-issued bearer token.
 */

package sandbox

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

// requestID echoes the caller's X-Request-ID, minting one when it is missing.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// NewRouter creates a new Chi router and registers the banking routes.
func NewRouter(h *Handler, jwtSecret string, accessLog bool) *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RequestID)
	if accessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Sandbox banking backend is healthy"))
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		r.Get("/accounts/user/{userId}", h.handleAccounts)
		r.Get("/accounts/{accountId}/transactions", h.handleAccountTransactions)
		r.Get("/transactions/{userId}", h.handleUserTransactions)
		r.Get("/mobile-transfers", h.handleTransfers)
		r.Post("/money-transfer", h.handleCreateTransfer)
		r.Post("/otp/verification", h.handleVerifyOTP)
		r.Get("/receiver/{userId}", h.handleReceivers)
		r.Get("/metadata/payment-codes", h.handlePaymentCodes)
	})

	return r
}
