package handlers

import (
	"net/http"

	mW "github.com/kodbank/backend/internal/middleware"
	"github.com/kodbank/backend/internal/services"
)

type AccountHandler struct {
	service *services.BankingService
}

func NewAccountHandler(service *services.BankingService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Balance reveals the current balance
// @Summary Account balance
// @Description Current balance of the signed in account. Requires a successful /auth/verify-password first.
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Success 200 {object} object{balance=string}
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /accounts/balance [get]
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.RefreshBalance(r.Context(), mW.SessionFromContext(r.Context()))
	if err != nil {
		sendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": balance.StringFixed(2)})
}
