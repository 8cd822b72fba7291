package handlers

import (
	"log"
	"net/http"

	"github.com/kodbank/backend/internal/bank"
	mW "github.com/kodbank/backend/internal/middleware"
	"github.com/kodbank/backend/internal/models"
	"github.com/kodbank/backend/internal/services"
	"github.com/shopspring/decimal"
)

type QRHandler struct {
	service   *services.QRService
	banking   *services.BankingService
	validator *services.ValidationHelper
}

func NewQRHandler(service *services.QRService, banking *services.BankingService) *QRHandler {
	return &QRHandler{
		service:   service,
		banking:   banking,
		validator: services.NewValidationHelper(),
	}
}

type PaymentRequestResponse struct {
	Request services.PaymentRequest `json:"request"`
	QRImage string                  `json:"qr_image"` // base64 PNG
}

type ResolveResponse struct {
	Request     services.PaymentRequest `json:"request"`
	Transaction models.Transaction      `json:"transaction"`
}

// RequestPayment generates a QR code asking to be paid an amount
// @Summary Create payment request QR
// @Description Generate a single use QR code that asks the scanner to pay the signed in account
// @Tags QR
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Param request body object{amount=string} true "Requested amount"
// @Success 201 {object} PaymentRequestResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /qr/request [post]
func (h *QRHandler) RequestPayment(w http.ResponseWriter, r *http.Request) {
	account, ok := mW.AccountFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	payment, qrImage, err := h.service.CreateRequest(r.Context(), account.Public(), req.Amount)
	if err != nil {
		sendError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, PaymentRequestResponse{Request: payment, QRImage: qrImage})
}

// ResolvePayment pays a scanned payment request
// @Summary Pay a QR payment request
// @Description Consume a scanned payment request and transfer its amount from the signed in account. A request that cannot be paid stays valid until it expires.
// @Tags QR
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Param request body object{code=string} true "Scanned code"
// @Success 201 {object} ResolveResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /qr/resolve [post]
func (h *QRHandler) ResolvePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code" validate:"required"`
	}
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	ctx := r.Context()
	payer, ok := mW.AccountFromContext(ctx)
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	payment, err := h.service.Peek(ctx, req.Code)
	if err != nil {
		sendError(w, err)
		return
	}
	if payment.ReceiverID == payer.ID {
		sendError(w, bank.ErrSelfTransfer)
		return
	}

	payment, err = h.service.Resolve(ctx, req.Code)
	if err != nil {
		sendError(w, err)
		return
	}

	tx, err := h.banking.Transfer(ctx, mW.SessionFromContext(ctx), payment.ReceiverEmail, payment.Amount)
	if err != nil {
		if rerr := h.service.Restore(ctx, payment); rerr != nil {
			log.Printf("[QR] Failed to restore payment request %s: %v", payment.Code, rerr)
		}
		sendError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ResolveResponse{Request: payment, Transaction: tx})
}
