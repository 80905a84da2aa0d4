package typepermis

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sigepermis/api/internal/web"
)

type ServiceProvider interface {
	List(ctx context.Context) ([]TypePermis, error)
	ActiveOnly(ctx context.Context) ([]TypePermis, error)
	Get(ctx context.Context, id uuid.UUID) (TypePermis, error)
	Create(ctx context.Context, req UpsertRequest) (TypePermis, error)
	Update(ctx context.Context, id uuid.UUID, req UpsertRequest) (TypePermis, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler expose les endpoints REST du référentiel des types de permis.
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
	var (
		types []TypePermis
		err   error
	)
	if actif, perr := strconv.ParseBool(r.URL.Query().Get("actif")); perr == nil && actif {
		types, err = h.service.ActiveOnly(r.Context())
	} else {
		types, err = h.service.List(r.Context())
	}
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de lister les types de permis", nil)
		return
	}

	web.WritePage(w, types, web.ParsePageParams(r), func(t TypePermis) []string {
		return []string{t.Code, t.Libelle}
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "id invalide", nil)
		return
	}

	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.WriteNotFoundOrInternal(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}

	t, err := h.service.Create(r.Context(), req)
	if err != nil {
		web.WriteServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, t)
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

	t, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		web.WriteNotFoundOrInternal(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, t)
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
	web.WriteJSON(w, http.StatusOK, map[string]any{"message": "Type de permis supprimé"})
}
