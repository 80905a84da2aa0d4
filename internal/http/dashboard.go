package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sigepermis/api/internal/scoring"
	"github.com/sigepermis/api/internal/typepermis"
	"github.com/sigepermis/api/internal/user"
	"github.com/sigepermis/api/internal/web"
)

type candidatCounter interface {
	Count(ctx context.Context) (int, error)
}

type inspecteurLister interface {
	Disponibles(ctx context.Context) ([]user.User, error)
}

type evaluationStats interface {
	Stats(ctx context.Context) (scoring.Statistiques, error)
}

type typePermisLister interface {
	ActiveOnly(ctx context.Context) ([]typepermis.TypePermis, error)
}

// DashboardOverview est la vue d'accueil agrégée.
type DashboardOverview struct {
	TotalCandidats    int                  `json:"totalCandidats"`
	InspecteursActifs int                  `json:"inspecteursActifs"`
	Evaluations       scoring.Statistiques `json:"evaluations"`
	TypesPermisActifs int                  `json:"typesPermisActifs"`
}

// DashboardHandler assemble la vue d'accueil par chargements parallèles.
// Chaque branche en échec est journalisée et remplacée par sa valeur
// nulle: une source indisponible ne fait jamais tomber toute la vue.
type DashboardHandler struct {
	candidats   candidatCounter
	inspecteurs inspecteurLister
	evaluations evaluationStats
	typesPermis typePermisLister
}

func NewDashboardHandler(candidats candidatCounter, inspecteurs inspecteurLister, evaluations evaluationStats, typesPermis typePermisLister) *DashboardHandler {
	return &DashboardHandler{
		candidats:   candidats,
		inspecteurs: inspecteurs,
		evaluations: evaluations,
		typesPermis: typesPermis,
	}
}

func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		view DashboardOverview
		wg   sync.WaitGroup
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		count, err := h.candidats.Count(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("comptage des candidats indisponible")
			return
		}
		view.TotalCandidats = count
	}()
	go func() {
		defer wg.Done()
		actifs, err := h.inspecteurs.Disponibles(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("liste des inspecteurs indisponible")
			return
		}
		view.InspecteursActifs = len(actifs)
	}()
	go func() {
		defer wg.Done()
		stats, err := h.evaluations.Stats(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("statistiques des évaluations indisponibles")
			return
		}
		view.Evaluations = stats
	}()
	go func() {
		defer wg.Done()
		types, err := h.typesPermis.ActiveOnly(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("types de permis indisponibles")
			return
		}
		view.TypesPermisActifs = len(types)
	}()
	wg.Wait()

	web.WriteJSON(w, http.StatusOK, view)
}
