package candidat

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sigepermis/api/internal/http/middleware"
	"github.com/sigepermis/api/internal/session"
	"github.com/sigepermis/api/internal/web"
)

type ServiceProvider interface {
	List(ctx context.Context, sess *session.Session, filter ListFilter) ([]Candidat, error)
	ListSansInspecteur(ctx context.Context) ([]Candidat, error)
	Get(ctx context.Context, id uuid.UUID) (Candidat, error)
	Create(ctx context.Context, sess *session.Session, req CreateRequest) (Candidat, error)
	Update(ctx context.Context, sess *session.Session, id uuid.UUID, req UpdateRequest) (Candidat, error)
	Delete(ctx context.Context, sess *session.Session, id uuid.UUID) error
	AssignerInspecteur(ctx context.Context, id uuid.UUID, matricule string) (Candidat, error)
	RetirerInspecteur(ctx context.Context, id uuid.UUID) (Candidat, error)
	Stats(ctx context.Context, sess *session.Session) (Stats, error)
}

// Handler expose les endpoints REST des candidats.
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/stats", h.stats)
	r.Get("/sans-inspecteur", h.listSansInspecteur)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/assigner-inspecteur/{matricule}", h.assignerInspecteur)
	r.Post("/{id}/retirer-inspecteur", h.retirerInspecteur)
}

func searchFields(c Candidat) []string {
	return []string{c.Nom, c.Prenom, c.NumeroDossier}
}

func idParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter
	filter.InspecteurMatricule = r.URL.Query().Get("inspecteurMatricule")
	if raw := r.URL.Query().Get("estEvalue"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			web.WriteError(w, http.StatusBadRequest, "VALIDATION", "estEvalue invalide", nil)
			return
		}
		filter.EstEvalue = &v
	}

	candidats, err := h.service.List(r.Context(), middleware.GetSession(r.Context()), filter)
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de lister les candidats", nil)
		return
	}

	web.WritePage(w, candidats, web.ParsePageParams(r), searchFields)
}

func (h *Handler) listSansInspecteur(w http.ResponseWriter, r *http.Request) {
	candidats, err := h.service.ListSansInspecteur(r.Context())
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de lister les candidats", nil)
		return
	}
	web.WritePage(w, candidats, web.ParsePageParams(r), searchFields)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
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
	var req CreateRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}

	c, err := h.service.Create(r.Context(), middleware.GetSession(r.Context()), req)
	if err != nil {
		web.WriteServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "id invalide", nil)
		return
	}

	var req UpdateRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}

	c, err := h.service.Update(r.Context(), middleware.GetSession(r.Context()), id, req)
	if errors.Is(err, ErrForbidden) {
		web.WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
		return
	}
	if err != nil {
		web.WriteNotFoundOrInternal(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "id invalide", nil)
		return
	}

	err = h.service.Delete(r.Context(), middleware.GetSession(r.Context()), id)
	if errors.Is(err, ErrForbidden) {
		web.WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
		return
	}
	if err != nil {
		web.WriteNotFoundOrInternal(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{"message": "Candidat supprimé"})
}

func (h *Handler) assignerInspecteur(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "id invalide", nil)
		return
	}

	c, err := h.service.AssignerInspecteur(r.Context(), id, chi.URLParam(r, "matricule"))
	if err != nil {
		web.WriteNotFoundOrInternal(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) retirerInspecteur(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "id invalide", nil)
		return
	}

	c, err := h.service.RetirerInspecteur(r.Context(), id)
	if err != nil {
		web.WriteNotFoundOrInternal(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de calculer les statistiques", nil)
		return
	}
	web.WriteJSON(w, http.StatusOK, stats)
}
