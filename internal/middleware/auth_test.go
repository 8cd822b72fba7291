package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kodbank/backend/internal/audit"
	"github.com/kodbank/backend/internal/auth"
	"github.com/kodbank/backend/internal/bank"
	"github.com/kodbank/backend/internal/models"
	"github.com/kodbank/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *services.BankingService {
	t.Helper()

	accounts := bank.NewAccountStore()
	ledger := bank.NewLedger(nil)
	tokens := auth.NewTokenRegistry("test-secret", time.Hour)
	hasher := auth.NewHasher(auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLength: 32, SaltLength: 16})
	require.NoError(t, services.SeedDemo(accounts, ledger, tokens, hasher))

	return services.NewBankingService(accounts, ledger, tokens, hasher, auth.NewMemorySlots(),
		audit.NewAuditLoggerTo(log.New(io.Discard, "", 0)), services.BankingOptions{})
}

func login(t *testing.T, svc *services.BankingService, device, email, password string) string {
	t.Helper()
	session, err := svc.Session(context.Background(), device)
	require.NoError(t, err)
	_, token, err := svc.Login(context.Background(), session, email, password)
	require.NoError(t, err)
	return token
}

func protectedRouter(svc *services.BankingService, capability models.Capability) http.Handler {
	r := chi.NewRouter()
	r.Use(DeviceSession(svc))
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(svc))
		r.Use(RequireCapability(capability))
		r.Get("/protected", func(w http.ResponseWriter, r *http.Request) {
			account, _ := AccountFromContext(r.Context())
			json.NewEncoder(w).Encode(map[string]int{"id": account.ID})
		})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	svc := newTestService(t)
	johnToken := login(t, svc, "john-laptop", "john@example.com", "password123")
	adminToken := login(t, svc, "admin-desk", "admin@kodbank.com", "admin123")

	tests := []struct {
		name       string
		capability models.Capability
		device     string
		authHeader string
		wantStatus int
	}{
		{"missing device", models.CapViewDashboard, "", "Bearer " + johnToken, http.StatusBadRequest},
		{"missing header", models.CapViewDashboard, "john-laptop", "", http.StatusUnauthorized},
		{"malformed header", models.CapViewDashboard, "john-laptop", "Token " + johnToken, http.StatusUnauthorized},
		{"garbage token", models.CapViewDashboard, "john-laptop", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"token from another device", models.CapViewDashboard, "admin-desk", "Bearer " + johnToken, http.StatusUnauthorized},
		{"customer allowed", models.CapTransfer, "john-laptop", "Bearer " + johnToken, http.StatusOK},
		{"customer denied manager panel", models.CapManagerPanel, "john-laptop", "Bearer " + johnToken, http.StatusForbidden},
		{"admin allowed admin panel", models.CapAdminPanel, "admin-desk", "Bearer " + adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.device != "" {
				req.Header.Set(DeviceHeader, tt.device)
			}
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			protectedRouter(svc, tt.capability).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_RoleChangeAppliesImmediately(t *testing.T) {
	svc := newTestService(t)
	token := login(t, svc, "jane-phone", "jane@example.com", "password123")
	router := protectedRouter(svc, models.CapManagerPanel)

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(DeviceHeader, "jane-phone")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, do())
	require.NoError(t, svc.PromoteAccount(4, 2, models.RoleManager))
	assert.Equal(t, http.StatusOK, do())
}

func TestRequireCapability_NoAccount(t *testing.T) {
	handler := RequireCapability(models.CapViewDashboard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
