package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/kodbank/backend/internal/auth"
	"github.com/kodbank/backend/internal/bank"
	"github.com/kodbank/backend/internal/models"
	"github.com/kodbank/backend/internal/services"
)

// DeviceHeader names the client's durable session slot.
const DeviceHeader = "X-Device-ID"

type contextKey string

const (
	sessionKey contextKey = "session"
	accountKey contextKey = "account"
)

// DeviceSession restores the calling device's session and puts it in the
// request context. Every API route needs it, public ones included, since
// login and signup write to the slot.
func DeviceSession(svc *services.BankingService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			device := strings.TrimSpace(r.Header.Get(DeviceHeader))
			if device == "" {
				services.SendErrorResponse(w, DeviceHeader+" header required", http.StatusBadRequest, nil)
				return
			}

			session, err := svc.Session(r.Context(), device)
			if err != nil {
				log.Printf("[AUTH] Session restore failed for device %s: %v", device, err)
				services.SendErrorResponse(w, bank.ErrStorageUnavailable.Error(), http.StatusServiceUnavailable, nil)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthMiddleware requires a bearer token that is registered and held by the
// device's session. The resolved account is added to the context.
func AuthMiddleware(svc *services.BankingService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if session == nil {
				services.SendErrorResponse(w, bank.ErrNotAuthenticated.Error(), http.StatusUnauthorized, nil)
				return
			}

			// Get token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				services.SendErrorResponse(w, "Authorization header required", http.StatusUnauthorized, nil)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				services.SendErrorResponse(w, "Invalid authorization header format", http.StatusUnauthorized, nil)
				return
			}

			account, err := svc.Authorize(session, parts[1])
			if err != nil {
				if errors.Is(err, bank.ErrNotAuthenticated) {
					services.SendErrorResponse(w, "Invalid token", http.StatusUnauthorized, nil)
					return
				}
				services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
				return
			}

			ctx := context.WithValue(r.Context(), accountKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCapability lets the request through only when the authenticated
// account's current role grants c.
func RequireCapability(c models.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, ok := AccountFromContext(r.Context())
			if !ok {
				services.SendErrorResponse(w, bank.ErrNotAuthenticated.Error(), http.StatusUnauthorized, nil)
				return
			}
			if !account.Role.Can(c) {
				log.Printf("[AUTH] Account %d (%s) denied %s", account.ID, account.Role, c)
				services.SendErrorResponse(w, bank.ErrForbidden.Error(), http.StatusForbidden, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func SessionFromContext(ctx context.Context) *auth.SessionManager {
	session, _ := ctx.Value(sessionKey).(*auth.SessionManager)
	return session
}

func AccountFromContext(ctx context.Context) (models.Account, bool) {
	account, ok := ctx.Value(accountKey).(models.Account)
	return account, ok
}

