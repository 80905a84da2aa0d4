package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sigepermis/api/internal/auth"
	"github.com/sigepermis/api/internal/service"
	"github.com/sigepermis/api/internal/util"
	"github.com/sigepermis/api/internal/web"
)

type authService interface {
	Login(ctx context.Context, login, password string) (service.LoginResult, error)
	Logout(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ValidateResetToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthHandler expose les endpoints d'authentification publics.
type AuthHandler struct {
	service authService
}

func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Post("/forgot-password", h.forgotPassword)
	r.Get("/validate-reset-token/{token}", h.validateResetToken)
	r.Post("/reset-password", h.resetPassword)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := web.DecodeJSON(r, &payload); err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}
	if strings.TrimSpace(payload.Login) == "" || payload.Password == "" {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "login et password obligatoires", nil)
		return
	}

	result, err := h.service.Login(r.Context(), payload.Login, payload.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		web.WriteError(w, http.StatusUnauthorized, "AUTH", "identifiants invalides", nil)
	case errors.Is(err, service.ErrCompteDesactive):
		web.WriteError(w, http.StatusForbidden, "FORBIDDEN", "compte désactivé", nil)
	case err != nil:
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "connexion impossible", nil)
	default:
		web.WriteJSON(w, http.StatusOK, result)
	}
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		web.WriteError(w, http.StatusUnauthorized, "AUTH", "jeton absent", nil)
		return
	}

	if err := h.service.Logout(r.Context(), parts[1]); err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "déconnexion impossible", nil)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{"message": "Déconnexion réussie"})
}

func (h *AuthHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := web.DecodeJSON(r, &payload); err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}
	if err := util.ValidateEmail(payload.Email); err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	// réponse identique que l'email soit connu ou non
	if _, err := h.service.ForgotPassword(r.Context(), payload.Email); err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "demande impossible", nil)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Si le compte existe, un lien de réinitialisation a été envoyé",
	})
}

func (h *AuthHandler) validateResetToken(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ValidateResetToken(r.Context(), chi.URLParam(r, "token")); err != nil {
		web.WriteError(w, http.StatusBadRequest, "AUTH", "jeton de réinitialisation invalide", nil)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{"valide": true})
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := web.DecodeJSON(r, &payload); err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}

	err := h.service.ResetPassword(r.Context(), payload.Token, payload.NewPassword)
	switch {
	case errors.Is(err, auth.ErrResetInvalid):
		web.WriteError(w, http.StatusBadRequest, "AUTH", "jeton de réinitialisation invalide", nil)
	case err != nil:
		web.WriteServiceError(w, err)
	default:
		web.WriteJSON(w, http.StatusOK, map[string]any{"message": "Mot de passe mis à jour"})
	}
}
