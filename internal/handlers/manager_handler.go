package handlers

import (
	"net/http"

	"github.com/kodbank/backend/internal/services"
)

type ManagerHandler struct {
	service *services.BankingService
}

func NewManagerHandler(service *services.BankingService) *ManagerHandler {
	return &ManagerHandler{service: service}
}

// Accounts lists accounts, optionally filtered
// @Summary Search accounts
// @Tags Manager
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Param q query string false "Name or email fragment"
// @Success 200 {array} models.PublicAccount
// @Failure 403 {object} services.ErrorResponse
// @Router /manager/accounts [get]
func (h *ManagerHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.SearchAccounts(r.URL.Query().Get("q")))
}

// Transactions lists every ledger entry, newest first
// @Summary All transactions
// @Tags Manager
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Success 200 {array} models.Transaction
// @Failure 403 {object} services.ErrorResponse
// @Router /manager/transactions [get]
func (h *ManagerHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListTransactions())
}

// Stats summarises the bank for managers
// @Summary Manager statistics
// @Tags Manager
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Success 200 {object} bank.ManagerStats
// @Failure 403 {object} services.ErrorResponse
// @Router /manager/stats [get]
func (h *ManagerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ManagerStats())
}
