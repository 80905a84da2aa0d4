package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sigepermis/api/internal/repo"
	"github.com/sigepermis/api/internal/web"
)

type ServiceProvider interface {
	List(ctx context.Context) ([]User, error)
	ListByRole(ctx context.Context, role string) ([]User, error)
	Get(ctx context.Context, id uuid.UUID) (User, error)
	LoginExists(ctx context.Context, login string) (bool, error)
	Create(ctx context.Context, req CreateUserRequest) (User, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler expose les endpoints REST des comptes.
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/by-role/{role}", h.listByRole)
	r.Get("/check-existence/{login}", h.checkExistence)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func searchFields(u User) []string {
	return []string{u.Nom, u.Prenom, u.Matricule}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de lister les comptes", nil)
		return
	}
	web.WritePage(w, users, web.ParsePageParams(r), searchFields)
}

func (h *Handler) listByRole(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListByRole(r.Context(), chi.URLParam(r, "role"))
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de lister les comptes", nil)
		return
	}
	web.WritePage(w, users, web.ParsePageParams(r), searchFields)
}

func (h *Handler) checkExistence(w http.ResponseWriter, r *http.Request) {
	exists, err := h.service.LoginExists(r.Context(), chi.URLParam(r, "login"))
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "vérification impossible", nil)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]bool{"existe": exists})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "id invalide", nil)
		return
	}

	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.WriteNotFoundOrInternal(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}

	u, err := h.service.Create(r.Context(), req)
	if errors.Is(err, ErrLoginIndisponible) {
		web.WriteError(w, http.StatusConflict, "VALIDATION", err.Error(), nil)
		return
	}
	if err != nil {
		web.WriteServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "id invalide", nil)
		return
	}

	// décodage tolérant: un éventuel champ role est ignoré, jamais appliqué
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}

	u, err := h.service.Update(r.Context(), id, req)
	switch {
	case err == nil:
		web.WriteJSON(w, http.StatusOK, u)
	case errors.Is(err, repo.ErrNotFound):
		web.WriteNotFoundOrInternal(w, err)
	default:
		web.WriteServiceError(w, err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "id invalide", nil)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		web.WriteNotFoundOrInternal(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{"message": "Compte supprimé"})
}
