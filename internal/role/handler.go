package role

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sigepermis/api/internal/repo"
	"github.com/sigepermis/api/internal/web"
)

type ServiceProvider interface {
	ListAvecEffectifs(ctx context.Context) ([]RoleAvecEffectif, error)
	Get(ctx context.Context, id uuid.UUID) (Role, error)
	Create(ctx context.Context, req UpsertRequest) (Role, error)
	Update(ctx context.Context, id uuid.UUID, req UpsertRequest) (Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler expose les endpoints REST des rôles.
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListAvecEffectifs(r.Context())
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de lister les rôles", nil)
		return
	}
	web.WritePage(w, roles, web.ParsePageParams(r), func(role RoleAvecEffectif) []string {
		return []string{role.Libelle}
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "id invalide", nil)
		return
	}

	role, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.WriteNotFoundOrInternal(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}

	role, err := h.service.Create(r.Context(), req)
	if err != nil {
		web.WriteServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, role)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "id invalide", nil)
		return
	}

	var req UpsertRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}

	role, err := h.service.Update(r.Context(), id, req)
	switch {
	case err == nil:
		web.WriteJSON(w, http.StatusOK, role)
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
	web.WriteJSON(w, http.StatusOK, map[string]any{"message": "Rôle supprimé"})
}
