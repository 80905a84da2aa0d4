// Package role gère les libellés de rôle affichés dans l'administration.
// Distinct des chaînes ADMIN/INSPECTEUR utilisées pour le contrôle d'accès.
package role

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sigepermis/api/internal/repo"
	"github.com/sigepermis/api/internal/util"
)

const dbTimeout = 3 * time.Second

// Role est un libellé libre.
type Role struct {
	ID      uuid.UUID `json:"id"`
	Libelle string    `json:"libelle"`
}

// RoleAvecEffectif joint le libellé au nombre de comptes qui le portent.
type RoleAvecEffectif struct {
	Role
	Effectif int `json:"effectif"`
}

// UpsertRequest porte le champ des formulaires.
type UpsertRequest struct {
	Libelle string `json:"libelle"`
}

// Repository fournit l'accès aux libellés.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]Role, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, libelle FROM roles ORDER BY libelle`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Libelle); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Role, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var role Role
	err := r.db.QueryRow(ctx, `SELECT id, libelle FROM roles WHERE id = $1`, id).Scan(&role.ID, &role.Libelle)
	if errors.Is(err, pgx.ErrNoRows) {
		return role, repo.ErrNotFound
	}
	return role, err
}

func (r *Repository) Create(ctx context.Context, role Role) (Role, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `INSERT INTO roles (id, libelle) VALUES ($1,$2) RETURNING id`,
		role.ID, role.Libelle).Scan(&role.ID)
	return role, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, libelle string) (Role, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var role Role
	err := r.db.QueryRow(ctx, `UPDATE roles SET libelle = $2 WHERE id = $1 RETURNING id, libelle`,
		id, libelle).Scan(&role.ID, &role.Libelle)
	if errors.Is(err, pgx.ErrNoRows) {
		return role, repo.ErrNotFound
	}
	return role, err
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type roleRepository interface {
	List(ctx context.Context) ([]Role, error)
	GetByID(ctx context.Context, id uuid.UUID) (Role, error)
	Create(ctx context.Context, role Role) (Role, error)
	Update(ctx context.Context, id uuid.UUID, libelle string) (Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userCounter interface {
	CountByRole(ctx context.Context) (map[string]int, error)
}

// Service joint les libellés aux effectifs des comptes.
type Service struct {
	repo  roleRepository
	users userCounter
}

func NewService(repo roleRepository, users userCounter) *Service {
	return &Service{repo: repo, users: users}
}

func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}

// ListAvecEffectifs retourne chaque libellé avec son nombre de comptes.
func (s *Service) ListAvecEffectifs(ctx context.Context) ([]RoleAvecEffectif, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]RoleAvecEffectif, 0, len(roles))
	for _, role := range roles {
		out = append(out, RoleAvecEffectif{Role: role, Effectif: counts[role.Libelle]})
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Role, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Role, error) {
	if err := util.RequireString(req.Libelle, "libelle"); err != nil {
		return Role{}, err
	}
	return s.repo.Create(ctx, Role{ID: uuid.New(), Libelle: req.Libelle})
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpsertRequest) (Role, error) {
	if err := util.RequireString(req.Libelle, "libelle"); err != nil {
		return Role{}, err
	}
	return s.repo.Update(ctx, id, req.Libelle)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
