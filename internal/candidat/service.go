package candidat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sigepermis/api/internal/authz"
	"github.com/sigepermis/api/internal/session"
	"github.com/sigepermis/api/internal/util"
)

// ErrForbidden refuse à un inspecteur toute mutation d'un dossier qui
// ne lui est pas affecté. Le contrôle précède tout appel au dépôt.
var ErrForbidden = errors.New("dossier affecté à un autre inspecteur")

type candidatRepository interface {
	List(ctx context.Context, filter ListFilter) ([]Candidat, error)
	ListSansInspecteur(ctx context.Context) ([]Candidat, error)
	GetByID(ctx context.Context, id uuid.UUID) (Candidat, error)
	Create(ctx context.Context, c Candidat) (Candidat, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (Candidat, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AssignerInspecteur(ctx context.Context, id uuid.UUID, matricule string) (Candidat, error)
	RetirerInspecteur(ctx context.Context, id uuid.UUID) (Candidat, error)
	Stats(ctx context.Context, matricule string) (Stats, error)
}

// Service applique la convention de portée par rôle: toute requête de
// liste émise sous une session INSPECTEUR est implicitement restreinte
// au matricule de la session; une session ADMIN n'ajoute aucun filtre.
type Service struct {
	repo candidatRepository
}

func NewService(repo candidatRepository) *Service {
	return &Service{repo: repo}
}

func scoped(filter ListFilter, sess *session.Session) ListFilter {
	if sess != nil && sess.Role == authz.RoleInspecteur {
		filter.InspecteurMatricule = sess.Matricule
	}
	return filter
}

// owns vérifie qu'un inspecteur peut muter le dossier.
func owns(c Candidat, sess *session.Session) bool {
	if sess == nil || sess.Role != authz.RoleInspecteur {
		return true
	}
	return c.InspecteurMatricule != nil && *c.InspecteurMatricule == sess.Matricule
}

func (s *Service) List(ctx context.Context, sess *session.Session, filter ListFilter) ([]Candidat, error) {
	return s.repo.List(ctx, scoped(filter, sess))
}

func (s *Service) ListSansInspecteur(ctx context.Context) ([]Candidat, error) {
	return s.repo.ListSansInspecteur(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Candidat, error) {
	return s.repo.GetByID(ctx, id)
}

// Create enregistre un dossier. Un inspecteur ne peut créer que pour
// lui-même: son matricule écrase toute affectation demandée.
func (s *Service) Create(ctx context.Context, sess *session.Session, req CreateRequest) (Candidat, error) {
	if err := util.RequireString(req.Nom, "nom"); err != nil {
		return Candidat{}, err
	}
	if err := util.RequireString(req.Prenom, "prenom"); err != nil {
		return Candidat{}, err
	}
	if err := util.RequireString(req.NumeroDossier, "numeroDossier"); err != nil {
		return Candidat{}, err
	}
	if err := util.RequireString(req.TypePermis, "typePermis"); err != nil {
		return Candidat{}, err
	}

	inspecteur := req.InspecteurMatricule
	if sess != nil && sess.Role == authz.RoleInspecteur {
		m := sess.Matricule
		inspecteur = &m
	}

	c := Candidat{
		ID:                  uuid.New(),
		Nom:                 req.Nom,
		Prenom:              req.Prenom,
		AutoEcole:           req.AutoEcole,
		TypePermis:          req.TypePermis,
		NumeroDossier:       req.NumeroDossier,
		DateEvaluation:      req.DateEvaluation,
		InspecteurMatricule: inspecteur,
		DateCreation:        util.Now(),
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return Candidat{}, fmt.Errorf("création du dossier: %w", err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, sess *session.Session, id uuid.UUID, req UpdateRequest) (Candidat, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Candidat{}, err
	}
	if !owns(existing, sess) {
		return Candidat{}, ErrForbidden
	}
	if sess != nil && sess.Role == authz.RoleInspecteur {
		// l'affectation reste celle de la session
		m := sess.Matricule
		req.InspecteurMatricule = &m
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, sess *session.Session, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !owns(existing, sess) {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) AssignerInspecteur(ctx context.Context, id uuid.UUID, matricule string) (Candidat, error) {
	if err := util.RequireString(matricule, "matricule"); err != nil {
		return Candidat{}, err
	}
	return s.repo.AssignerInspecteur(ctx, id, matricule)
}

func (s *Service) RetirerInspecteur(ctx context.Context, id uuid.UUID) (Candidat, error) {
	return s.repo.RetirerInspecteur(ctx, id)
}

// Stats agrège les compteurs, restreints au matricule de session pour
// un inspecteur.
func (s *Service) Stats(ctx context.Context, sess *session.Session) (Stats, error) {
	matricule := ""
	if sess != nil && sess.Role == authz.RoleInspecteur {
		matricule = sess.Matricule
	}
	return s.repo.Stats(ctx, matricule)
}
