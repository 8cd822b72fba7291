package handlers

import (
	"fmt"
	"net/http"

	mW "github.com/kodbank/backend/internal/middleware"
	"github.com/kodbank/backend/internal/models"
	"github.com/kodbank/backend/internal/services"
	"github.com/shopspring/decimal"
)

type AuthHandler struct {
	service    *services.BankingService
	validator  *services.ValidationHelper
	minDeposit decimal.Decimal
}

func NewAuthHandler(service *services.BankingService, minDeposit decimal.Decimal) *AuthHandler {
	return &AuthHandler{
		service:    service,
		validator:  services.NewValidationHelper(),
		minDeposit: minDeposit,
	}
}

type SignupRequest struct {
	Name           string          `json:"name" validate:"required,min=2,max=100"`
	Email          string          `json:"email" validate:"required,email"`
	Password       string          `json:"password" validate:"required,min=6"`
	InitialDeposit decimal.Decimal `json:"initial_deposit" swaggertype:"string"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type VerifyPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type SessionResponse struct {
	User  models.PublicAccount `json:"user"`
	Token string               `json:"token"`
}

type MeResponse struct {
	User         models.PublicAccount `json:"user"`
	Capabilities []models.Capability  `json:"capabilities"`
}

// Signup opens a Customer account and signs it in
// @Summary Sign up
// @Description Create a Customer account with an initial deposit and start a session on the calling device
// @Tags Auth
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "Device identifier"
// @Param request body SignupRequest true "Signup request"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	if req.InitialDeposit.LessThan(h.minDeposit) {
		services.SendErrorResponse(w, fmt.Sprintf("minimum initial deposit is %s", h.minDeposit.StringFixed(2)), http.StatusBadRequest, nil)
		return
	}

	user, token, err := h.service.Signup(r.Context(), mW.SessionFromContext(r.Context()), req.Name, req.Email, req.Password, req.InitialDeposit)
	if err != nil {
		sendError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, SessionResponse{User: user, Token: token})
}

// Login starts a session
// @Summary Log in
// @Description Authenticate by email and password and start a session on the calling device
// @Tags Auth
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "Device identifier"
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	user, token, err := h.service.Login(r.Context(), mW.SessionFromContext(r.Context()), req.Email, req.Password)
	if err != nil {
		sendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{User: user, Token: token})
}

// Logout ends the device's session
// @Summary Log out
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Success 200 {object} object{success=bool}
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), mW.SessionFromContext(r.Context())); err != nil {
		sendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me returns the signed in account and what its role may do
// @Summary Current account
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Success 200 {object} MeResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, _ := mW.AccountFromContext(r.Context())
	writeJSON(w, http.StatusOK, MeResponse{
		User:         account.Public(),
		Capabilities: account.Role.Capabilities(),
	})
}

// VerifyPassword re-checks the password before the balance is shown
// @Summary Verify password
// @Description Re-check the signed in account's password. On success the balance stays visible for a short window.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Device-ID header string true "Device identifier"
// @Param request body VerifyPasswordRequest true "Password"
// @Success 200 {object} object{verified=bool}
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/verify-password [post]
func (h *AuthHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req VerifyPasswordRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	verified, err := h.service.VerifyCredential(r.Context(), mW.SessionFromContext(r.Context()), req.Password)
	if err != nil {
		sendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": verified})
}
