package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	mW "github.com/kodbank/backend/internal/middleware"
	"github.com/kodbank/backend/internal/models"
	"github.com/kodbank/backend/internal/services"
	"github.com/shopspring/decimal"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RouterConfig struct {
	Banking           *services.BankingService
	QR                *services.QRService
	MinInitialDeposit decimal.Decimal
	RequestTimeout    time.Duration
}

// NewRouter wires every API route behind the shared middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	authHandler := NewAuthHandler(cfg.Banking, cfg.MinInitialDeposit)
	accountHandler := NewAccountHandler(cfg.Banking)
	transferHandler := NewTransferHandler(cfg.Banking)
	qrHandler := NewQRHandler(cfg.QR, cfg.Banking)
	managerHandler := NewManagerHandler(cfg.Banking)
	adminHandler := NewAdminHandler(cfg.Banking)

	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mW.DeviceHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mW.DeviceSession(cfg.Banking))

		// Public endpoints (no auth required)
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware(cfg.Banking))

			r.Post("/auth/logout", authHandler.Logout)

			r.With(mW.RequireCapability(models.CapViewDashboard)).Group(func(r chi.Router) {
				r.Get("/auth/me", authHandler.Me)
				r.Post("/auth/verify-password", authHandler.VerifyPassword)
				r.Get("/accounts/balance", accountHandler.Balance)
			})

			r.With(mW.RequireCapability(models.CapTransfer)).Group(func(r chi.Router) {
				r.Post("/transfers", transferHandler.Transfer)
				r.Post("/qr/request", qrHandler.RequestPayment)
				r.Post("/qr/resolve", qrHandler.ResolvePayment)
			})

			r.With(mW.RequireCapability(models.CapViewTransactions)).
				Get("/transactions", transferHandler.History)

			r.Route("/manager", func(r chi.Router) {
				r.Use(mW.RequireCapability(models.CapManagerPanel))
				r.Get("/accounts", managerHandler.Accounts)
				r.Get("/transactions", managerHandler.Transactions)
				r.Get("/stats", managerHandler.Stats)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(mW.RequireCapability(models.CapAdminPanel))
				r.Get("/accounts", adminHandler.Accounts)
				r.Delete("/accounts/{id}", adminHandler.DeleteAccount)
				r.Put("/accounts/{id}/role", adminHandler.SetRole)
				r.Get("/tokens", adminHandler.Tokens)
				r.Delete("/tokens/{id}", adminHandler.RevokeToken)
				r.Get("/stats", adminHandler.Stats)
			})
		})
	})

	return r
}
