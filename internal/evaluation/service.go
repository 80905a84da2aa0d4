package evaluation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sigepermis/api/internal/authz"
	"github.com/sigepermis/api/internal/scoring"
	"github.com/sigepermis/api/internal/session"
)

const (
	statsCacheKey = "evaluations:stats"
	statsCacheTTL = 30 * time.Second
)

type evaluationRepository interface {
	List(ctx context.Context) ([]Evaluation, error)
	ListByInspecteur(ctx context.Context, matricule string) ([]Evaluation, error)
	ListByTypePermis(ctx context.Context, code string) ([]Evaluation, error)
	ListByCandidat(ctx context.Context, numeroDossier string) ([]Evaluation, error)
	GetByID(ctx context.Context, id uuid.UUID) (Evaluation, error)
}

// Service expose la lecture des comptes rendus avec la même convention
// de portée que les candidats: une session INSPECTEUR ne voit que ses
// propres enregistrements.
type Service struct {
	repo  evaluationRepository
	cache *redis.Client
}

// NewService accepte un cache nil; les statistiques sont alors
// recalculées à chaque appel.
func NewService(repo evaluationRepository, cache *redis.Client) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) List(ctx context.Context, sess *session.Session) ([]Evaluation, error) {
	if sess != nil && sess.Role == authz.RoleInspecteur {
		return s.repo.ListByInspecteur(ctx, sess.Matricule)
	}
	return s.repo.List(ctx)
}

// MesEvaluations est la vue "mes enregistrements" de la session.
func (s *Service) MesEvaluations(ctx context.Context, sess *session.Session) ([]Evaluation, error) {
	if sess == nil {
		return nil, nil
	}
	return s.repo.ListByInspecteur(ctx, sess.Matricule)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Evaluation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByInspecteur(ctx context.Context, matricule string) ([]Evaluation, error) {
	return s.repo.ListByInspecteur(ctx, matricule)
}

func (s *Service) ListByTypePermis(ctx context.Context, code string) ([]Evaluation, error) {
	return s.repo.ListByTypePermis(ctx, code)
}

func (s *Service) ListByCandidat(ctx context.Context, numeroDossier string) ([]Evaluation, error) {
	return s.repo.ListByCandidat(ctx, numeroDossier)
}

// Stats agrège l'ensemble du parc, avec un cache court.
func (s *Service) Stats(ctx context.Context) (scoring.Statistiques, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, statsCacheKey).Bytes(); err == nil {
			var cached scoring.Statistiques
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	evaluations, err := s.repo.List(ctx)
	if err != nil {
		return scoring.Statistiques{}, err
	}
	stats := scoring.ComputeStats(toScoringView(evaluations))

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, payload, statsCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("cache des statistiques indisponible")
			}
		}
	}
	return stats, nil
}

// MesStats agrège les enregistrements de la session.
func (s *Service) MesStats(ctx context.Context, sess *session.Session) (scoring.Statistiques, error) {
	if sess == nil {
		return scoring.Statistiques{}, nil
	}
	return s.StatsByInspecteur(ctx, sess.Matricule)
}

// StatsByInspecteur agrège les enregistrements d'un matricule.
func (s *Service) StatsByInspecteur(ctx context.Context, matricule string) (scoring.Statistiques, error) {
	evaluations, err := s.repo.ListByInspecteur(ctx, matricule)
	if err != nil {
		return scoring.Statistiques{}, err
	}
	return scoring.ComputeStats(toScoringView(evaluations)), nil
}
