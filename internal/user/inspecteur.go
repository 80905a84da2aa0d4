package user

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/sigepermis/api/internal/authz"
	"github.com/sigepermis/api/internal/candidat"
	"github.com/sigepermis/api/internal/scoring"
	"github.com/sigepermis/api/internal/util"
	"github.com/sigepermis/api/internal/web"
)

type candidatProvider interface {
	ListPlanifiesPourJour(ctx context.Context, matricule string, jour time.Time) ([]candidat.Candidat, error)
	Stats(ctx context.Context, matricule string) (candidat.Stats, error)
}

type evaluationStatsProvider interface {
	StatsByInspecteur(ctx context.Context, matricule string) (scoring.Statistiques, error)
}

// InspecteurDashboard est la vue synthétique d'un inspecteur.
type InspecteurDashboard struct {
	Inspecteur  User                 `json:"inspecteur"`
	Candidats   candidat.Stats       `json:"candidats"`
	Evaluations scoring.Statistiques `json:"evaluations"`
}

// InspecteurPerformance joint un inspecteur à ses statistiques d'examen.
type InspecteurPerformance struct {
	Matricule  string               `json:"matricule"`
	NomComplet string               `json:"nomComplet"`
	Statut     string               `json:"statut"`
	Stats      scoring.Statistiques `json:"stats"`
}

// InspecteurService assemble les vues transverses du corps des
// inspecteurs à partir des comptes, des dossiers et des comptes rendus.
type InspecteurService struct {
	users       userRepository
	candidats   candidatProvider
	evaluations evaluationStatsProvider
}

func NewInspecteurService(users userRepository, candidats candidatProvider, evaluations evaluationStatsProvider) *InspecteurService {
	return &InspecteurService{users: users, candidats: candidats, evaluations: evaluations}
}

// List retourne tous les comptes du rôle INSPECTEUR.
func (s *InspecteurService) List(ctx context.Context) ([]User, error) {
	return s.users.ListByRole(ctx, authz.RoleInspecteur)
}

// Disponibles retient les inspecteurs actifs, proposables à l'affectation.
func (s *InspecteurService) Disponibles(ctx context.Context) ([]User, error) {
	return s.users.ListByRoleAndStatut(ctx, authz.RoleInspecteur, "ACTIF")
}

// Dashboard charge la vue synthétique d'un matricule.
func (s *InspecteurService) Dashboard(ctx context.Context, matricule string) (InspecteurDashboard, error) {
	inspecteur, err := s.users.GetByMatricule(ctx, matricule)
	if err != nil {
		return InspecteurDashboard{}, err
	}

	view := InspecteurDashboard{Inspecteur: inspecteur}

	// chaque branche dégrade en valeurs nulles plutôt que d'échouer
	if stats, err := s.candidats.Stats(ctx, matricule); err == nil {
		view.Candidats = stats
	} else {
		log.Warn().Err(err).Str("matricule", matricule).Msg("stats candidats indisponibles")
	}
	if stats, err := s.evaluations.StatsByInspecteur(ctx, matricule); err == nil {
		view.Evaluations = stats
	} else {
		log.Warn().Err(err).Str("matricule", matricule).Msg("stats évaluations indisponibles")
	}
	return view, nil
}

// PlanningDuJour liste les candidats du jour non encore évalués.
func (s *InspecteurService) PlanningDuJour(ctx context.Context, matricule string) ([]candidat.Candidat, error) {
	if _, err := s.users.GetByMatricule(ctx, matricule); err != nil {
		return nil, err
	}
	return s.candidats.ListPlanifiesPourJour(ctx, matricule, util.Now())
}

// Performances calcule les statistiques de chaque inspecteur. Un
// matricule en échec est restitué avec des statistiques nulles.
func (s *InspecteurService) Performances(ctx context.Context) ([]InspecteurPerformance, error) {
	inspecteurs, err := s.users.ListByRole(ctx, authz.RoleInspecteur)
	if err != nil {
		return nil, err
	}

	perfs := make([]InspecteurPerformance, 0, len(inspecteurs))
	for _, insp := range inspecteurs {
		perf := InspecteurPerformance{
			Matricule:  insp.Matricule,
			NomComplet: insp.NomComplet(),
			Statut:     insp.Statut,
		}
		if stats, err := s.evaluations.StatsByInspecteur(ctx, insp.Matricule); err == nil {
			perf.Stats = stats
		} else {
			log.Warn().Err(err).Str("matricule", insp.Matricule).Msg("performances indisponibles")
		}
		perfs = append(perfs, perf)
	}
	return perfs, nil
}

type InspecteurServiceProvider interface {
	List(ctx context.Context) ([]User, error)
	Disponibles(ctx context.Context) ([]User, error)
	Dashboard(ctx context.Context, matricule string) (InspecteurDashboard, error)
	PlanningDuJour(ctx context.Context, matricule string) ([]candidat.Candidat, error)
	Performances(ctx context.Context) ([]InspecteurPerformance, error)
}

// InspecteurHandler expose la surface de lecture /inspecteurs.
type InspecteurHandler struct {
	service InspecteurServiceProvider
}

func NewInspecteurHandler(service InspecteurServiceProvider) *InspecteurHandler {
	return &InspecteurHandler{service: service}
}

func (h *InspecteurHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/disponibles", h.disponibles)
	r.Get("/performances", h.performances)
	r.Get("/{matricule}/dashboard", h.dashboard)
	r.Get("/{matricule}/planning-du-jour", h.planningDuJour)
}

func (h *InspecteurHandler) list(w http.ResponseWriter, r *http.Request) {
	inspecteurs, err := h.service.List(r.Context())
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de lister les inspecteurs", nil)
		return
	}
	web.WritePage(w, inspecteurs, web.ParsePageParams(r), searchFields)
}

func (h *InspecteurHandler) disponibles(w http.ResponseWriter, r *http.Request) {
	inspecteurs, err := h.service.Disponibles(r.Context())
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de lister les inspecteurs", nil)
		return
	}
	web.WriteJSON(w, http.StatusOK, inspecteurs)
}

func (h *InspecteurHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Dashboard(r.Context(), chi.URLParam(r, "matricule"))
	if err != nil {
		web.WriteNotFoundOrInternal(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, view)
}

func (h *InspecteurHandler) planningDuJour(w http.ResponseWriter, r *http.Request) {
	planning, err := h.service.PlanningDuJour(r.Context(), chi.URLParam(r, "matricule"))
	if err != nil {
		web.WriteNotFoundOrInternal(w, err)
		return
	}
	if planning == nil {
		planning = []candidat.Candidat{}
	}
	web.WriteJSON(w, http.StatusOK, planning)
}

func (h *InspecteurHandler) performances(w http.ResponseWriter, r *http.Request) {
	perfs, err := h.service.Performances(r.Context())
	if err != nil {
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL", "impossible de calculer les performances", nil)
		return
	}
	web.WriteJSON(w, http.StatusOK, perfs)
}
