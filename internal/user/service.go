package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sigepermis/api/internal/auth"
	"github.com/sigepermis/api/internal/authz"
	"github.com/sigepermis/api/internal/util"
)

// ErrLoginIndisponible signale un username ou matricule déjà pris.
var ErrLoginIndisponible = errors.New("identifiant déjà utilisé")

type userRepository interface {
	List(ctx context.Context) ([]User, error)
	ListByRole(ctx context.Context, role string) ([]User, error)
	ListByRoleAndStatut(ctx context.Context, role, statut string) ([]User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByMatricule(ctx context.Context, matricule string) (User, error)
	LoginExists(ctx context.Context, login string) (bool, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByRole(ctx context.Context) (map[string]int, error)
}

// Service gère le cycle de vie des comptes. Le rôle est figé à la
// création: la mise à jour ne le transporte pas.
type Service struct {
	repo userRepository
}

func NewService(repo userRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByRole(ctx context.Context, role string) ([]User, error) {
	return s.repo.ListByRole(ctx, role)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// LoginExists vérifie la disponibilité d'un identifiant avant création.
func (s *Service) LoginExists(ctx context.Context, login string) (bool, error) {
	return s.repo.LoginExists(ctx, login)
}

func (s *Service) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	if err := util.RequireString(req.Matricule, "matricule"); err != nil {
		return User{}, err
	}
	if err := util.RequireString(req.Username, "username"); err != nil {
		return User{}, err
	}
	if err := util.RequireString(req.Nom, "nom"); err != nil {
		return User{}, err
	}
	if err := util.RequireString(req.Prenom, "prenom"); err != nil {
		return User{}, err
	}
	if req.Role != authz.RoleAdmin && req.Role != authz.RoleInspecteur {
		return User{}, util.Invalid("role doit être ADMIN ou INSPECTEUR")
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		return User{}, err
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		return User{}, err
	}

	for _, login := range []string{req.Username, req.Matricule} {
		exists, err := s.repo.LoginExists(ctx, login)
		if err != nil {
			return User{}, fmt.Errorf("vérification d'unicité: %w", err)
		}
		if exists {
			return User{}, ErrLoginIndisponible
		}
	}

	hash, err := auth.Hash(req.Password)
	if err != nil {
		return User{}, fmt.Errorf("hachage du mot de passe: %w", err)
	}

	return s.repo.Create(ctx, User{
		ID:              uuid.New(),
		Matricule:       req.Matricule,
		Username:        req.Username,
		Nom:             req.Nom,
		Prenom:          req.Prenom,
		Telephone:       req.Telephone,
		Statut:          "ACTIF",
		Role:            req.Role,
		Grade:           req.Grade,
		ZoneAffectation: req.ZoneAffectation,
		Email:           req.Email,
		PasswordHash:    hash,
	})
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (User, error) {
	if err := util.RequireString(req.Nom, "nom"); err != nil {
		return User{}, err
	}
	if err := util.RequireString(req.Prenom, "prenom"); err != nil {
		return User{}, err
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		return User{}, err
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
