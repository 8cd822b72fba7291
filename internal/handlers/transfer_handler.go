package handlers

import (
	"net/http"
	"strconv"

	"github.com/kodbank/backend/internal/bank"
	mW "github.com/kodbank/backend/internal/middleware"
	"github.com/kodbank/backend/internal/models"
	"github.com/kodbank/backend/internal/services"
	"github.com/shopspring/decimal"
)

type TransferHandler struct {
	service   *services.BankingService
	validator *services.ValidationHelper
}

func NewTransferHandler(service *services.BankingService) *TransferHandler {
	return &TransferHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

type TransferRequest struct {
	ReceiverEmail string          `json:"receiver_email" validate:"required"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string"`
}

// Transfer sends money to another account
// @Summary Transfer money
// @Description Move money from the signed in account to the account registered under receiver_email. An insufficient balance is recorded as a Failed transaction.
// @Tags Transfers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Param request body TransferRequest true "Transfer request"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /transfers [post]
func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	tx, err := h.service.Transfer(r.Context(), mW.SessionFromContext(r.Context()), req.ReceiverEmail, req.Amount)
	if err != nil {
		sendError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// History lists the transactions visible to the caller
// @Summary Transaction history
// @Description Customers see their own transactions, managers and admins see all. Pages hold 5 entries.
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Param search query string false "Party name or amount"
// @Param status query string false "All, Success or Failed"
// @Param page query int false "Page number, 1-based"
// @Success 200 {object} bank.HistoryPage
// @Failure 400 {object} services.ErrorResponse
// @Router /transactions [get]
func (h *TransferHandler) History(w http.ResponseWriter, r *http.Request) {
	account, _ := mW.AccountFromContext(r.Context())
	query := r.URL.Query()

	q := bank.HistoryQuery{Search: query.Get("search"), Page: 1}
	switch status := query.Get("status"); status {
	case "", "All":
	case string(models.TransactionSuccess), string(models.TransactionFailed):
		q.Status = models.TransactionStatus(status)
	default:
		services.SendErrorResponse(w, "status must be All, Success or Failed", http.StatusBadRequest, nil)
		return
	}

	if p := query.Get("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil {
			services.SendErrorResponse(w, "page must be a number", http.StatusBadRequest, nil)
			return
		}
		q.Page = page
	}

	writeJSON(w, http.StatusOK, h.service.History(account, q))
}
