package evaluation

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sigepermis/api/internal/http/middleware"
	"github.com/sigepermis/api/internal/scoring"
	"github.com/sigepermis/api/internal/session"
	"github.com/sigepermis/api/internal/web"
)

type ServiceProvider interface {
	List(ctx context.Context, sess *session.Session) ([]Evaluation, error)
	MesEvaluations(ctx context.Context, sess *session.Session) ([]Evaluation, error)
	Get(ctx context.Context, id uuid.UUID) (Evaluation, error)
	ListByInspecteur(ctx context.Context, matricule string) ([]Evaluation, error)
	ListByTypePermis(ctx context.Context, code string) ([]Evaluation, error)
	ListByCandidat(ctx context.Context, numeroDossier string) ([]Evaluation, error)
	Stats(ctx context.Context) (scoring.Statistiques, error)
	MesStats(ctx context.Context, sess *session.Session) (scoring.Statistiques, error)
}

// Handler expose les endpoints REST des comptes rendus d'examen.
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/mes-evaluations", h.mesEvaluations)
	// les statistiques globales restent réservées aux administrateurs
	r.With(middleware.RequireAdmin).Get("/stats", h.stats)
	r.Get("/mes-stats", h.mesStats)
	r.Get("/inspecteur/{matricule}", h.listByInspecteur)
	r.Get("/type-permis/{code}", h.listByTypePermis)
	r.Get("/candidat/{numero}", h.listByCandidat)
	r.Get("/{id}", h.get)
}

func searchFields(e Evaluation) []string {
	return []string{e.NumeroDossierCandidat, e.MatriculeInspecteur, e.CodeTypePermis}
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, evaluations []Evaluation, err error) {
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de lister les évaluations", nil)
		return
	}
	web.WritePage(w, evaluations, web.ParsePageParams(r), searchFields)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	evaluations, err := h.service.List(r.Context(), middleware.GetSession(r.Context()))
	h.writeList(w, r, evaluations, err)
}

func (h *Handler) mesEvaluations(w http.ResponseWriter, r *http.Request) {
	evaluations, err := h.service.MesEvaluations(r.Context(), middleware.GetSession(r.Context()))
	h.writeList(w, r, evaluations, err)
}

func (h *Handler) listByInspecteur(w http.ResponseWriter, r *http.Request) {
	evaluations, err := h.service.ListByInspecteur(r.Context(), chi.URLParam(r, "matricule"))
	h.writeList(w, r, evaluations, err)
}

func (h *Handler) listByTypePermis(w http.ResponseWriter, r *http.Request) {
	evaluations, err := h.service.ListByTypePermis(r.Context(), chi.URLParam(r, "code"))
	h.writeList(w, r, evaluations, err)
}

func (h *Handler) listByCandidat(w http.ResponseWriter, r *http.Request) {
	evaluations, err := h.service.ListByCandidat(r.Context(), chi.URLParam(r, "numero"))
	h.writeList(w, r, evaluations, err)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "VALIDATION", "id invalide", nil)
		return
	}

	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.WriteNotFoundOrInternal(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de calculer les statistiques", nil)
		return
	}
	web.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) mesStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.MesStats(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de calculer les statistiques", nil)
		return
	}
	web.WriteJSON(w, http.StatusOK, stats)
}
