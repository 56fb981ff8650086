package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"clinicacrm/models"
	"clinicacrm/services"
	"clinicacrm/utils"
)

type AuthHandler struct {
	service services.AuthService
}

func NewAuthHandler(service services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result := h.service.SignUp(ctx, req.Email, req.Password, req.DisplayName)
	status := http.StatusCreated
	if !result.Success {
		status = http.StatusBadRequest
	}
	writeAuthResult(w, status, result)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result := h.service.SignIn(ctx, req.Email, req.Password)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnauthorized
	}
	writeAuthResult(w, status, result)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	writeAuthResult(w, http.StatusOK, h.service.SignOut(r.Context()))
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result := h.service.ResetPassword(ctx, req.Email)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	writeAuthResult(w, status, result)
}

func writeAuthResult(w http.ResponseWriter, status int, result services.AuthResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(result)
}
