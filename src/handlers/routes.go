// backend/src/handlers/routes.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/username/walletpulse/backend/src/logger"
	"github.com/username/walletpulse/backend/src/utils"
	"golang.org/x/time/rate"
)

// RouterDeps is everything the HTTP surface needs.
type RouterDeps struct {
	Auth           TokenValidator
	Reports        *ReportHandler
	Transactions   *TransactionHandler
	Recurring      *RecurringHandler
	AllowedOrigins []string
	Limiter        *rate.Limiter // nil disables rate limiting
}

// DefaultLimiter allows bursts of 30 requests refilled at ten per second.
func DefaultLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(100*time.Millisecond), 30)
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(ContextualLoggerMiddleware)
	r.Use(corsMiddleware(deps.AllowedOrigins))
	if deps.Limiter != nil {
		r.Use(rateLimitMiddleware(deps.Limiter))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(deps.Auth))

			r.Get("/reports/overview", deps.Reports.HandleGetOverview)
			r.Get("/market/rates", deps.Reports.HandleGetMarketRates)

			r.Get("/recurring/upcoming", deps.Reports.HandleGetUpcoming)
			r.Get("/recurring", deps.Recurring.ListRules)
			r.Post("/recurring", deps.Recurring.CreateRule)
			r.Patch("/recurring/{id}/active", deps.Recurring.SetRuleActive)

			r.Get("/transactions", deps.Transactions.HandleGetTransactions)
			r.Post("/transactions/manual", deps.Transactions.HandleAddManualTransaction)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.SendJSONError(w, "Not found", http.StatusNotFound)
	})
	return r
}

func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.FromContext(r.Context()).Warn("Rate limit exceeded", "path", r.URL.Path)
				utils.SendJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization, X-Requested-With")
				w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
