package categorie

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
	List(ctx context.Context) ([]Categorie, error)
	ListByTypePermis(ctx context.Context, typePermis string) ([]Categorie, error)
	Get(ctx context.Context, id uuid.UUID) (Categorie, error)
	Create(ctx context.Context, req UpsertRequest) (Categorie, error)
	Update(ctx context.Context, id uuid.UUID, req UpsertRequest) (Categorie, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler expose les endpoints REST des grilles d'évaluation.
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/allBy/{typePermis}", h.listByTypePermis)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func searchFields(c Categorie) []string {
	return []string{c.Nom, c.TypePermis}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de lister les catégories", nil)
		return
	}
	web.WritePage(w, categories, web.ParsePageParams(r), searchFields)
}

func (h *Handler) listByTypePermis(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListByTypePermis(r.Context(), chi.URLParam(r, "typePermis"))
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de lister les catégories", nil)
		return
	}
	web.WriteJSON(w, http.StatusOK, categories)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "id invalide", nil)
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.WriteNotFoundOrInternal(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}

	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		web.WriteServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, c)
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

	c, err := h.service.Update(r.Context(), id, req)
	switch {
	case err == nil:
		web.WriteJSON(w, http.StatusOK, c)
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
	web.WriteJSON(w, http.StatusOK, map[string]any{"message": "Catégorie supprimée"})
}
