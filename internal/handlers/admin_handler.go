package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kodbank/backend/internal/bank"
	mW "github.com/kodbank/backend/internal/middleware"
	"github.com/kodbank/backend/internal/models"
	"github.com/kodbank/backend/internal/services"
)

type AdminHandler struct {
	service   *services.BankingService
	validator *services.ValidationHelper
}

func NewAdminHandler(service *services.BankingService) *AdminHandler {
	return &AdminHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required" enums:"Customer,Manager,Admin"`
}

// Accounts lists every account
// @Summary All accounts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Success 200 {array} models.PublicAccount
// @Failure 403 {object} services.ErrorResponse
// @Router /admin/accounts [get]
func (h *AdminHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListAccounts())
}

// DeleteAccount removes an account
// @Summary Delete account
// @Description Remove an account. Admins cannot delete their own account.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Param id path int true "Account ID"
// @Success 200 {object} object{success=bool}
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/accounts/{id} [delete]
func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor, _ := mW.AccountFromContext(r.Context())

	if err := h.service.DeleteAccount(actor.ID, id); err != nil {
		sendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SetRole changes an account's role
// @Summary Change role
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Param id path int true "Account ID"
// @Param request body SetRoleRequest true "New role"
// @Success 200 {object} object{success=bool}
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/accounts/{id}/role [put]
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SetRoleRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		sendError(w, bank.ErrInvalidRole)
		return
	}
	actor, _ := mW.AccountFromContext(r.Context())

	if err := h.service.PromoteAccount(actor.ID, id, role); err != nil {
		sendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Tokens lists issued session tokens
// @Summary All tokens
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Success 200 {array} models.Token
// @Failure 403 {object} services.ErrorResponse
// @Router /admin/tokens [get]
func (h *AdminHandler) Tokens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListTokens())
}

// RevokeToken revokes a session token
// @Summary Revoke token
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Param id path int true "Token ID"
// @Success 200 {object} object{success=bool}
// @Failure 400 {object} services.ErrorResponse
// @Router /admin/tokens/{id} [delete]
func (h *AdminHandler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor, _ := mW.AccountFromContext(r.Context())

	h.service.RevokeToken(actor.ID, id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Stats summarises the bank for admins
// @Summary Admin statistics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Success 200 {object} bank.AdminStats
// @Failure 403 {object} services.ErrorResponse
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.AdminStats())
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		services.SendErrorResponse(w, "Invalid id", http.StatusBadRequest, nil)
		return 0, false
	}
	return id, true
}
