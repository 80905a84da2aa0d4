// Package typepermis gère le référentiel des types de permis.
package typepermis

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

// TypePermis est une catégorie de permis de conduire (A, B, C...).
type TypePermis struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Libelle     string    `json:"libelle"`
	Description string    `json:"description"`
	Actif       bool      `json:"actif"`
}

// UpsertRequest porte les champs des formulaires de création et d'édition.
type UpsertRequest struct {
	Code        string `json:"code"`
	Libelle     string `json:"libelle"`
	Description string `json:"description"`
	Actif       bool   `json:"actif"`
}

// Repository fournit l'accès au référentiel.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanType(row pgx.Row) (TypePermis, error) {
	var t TypePermis
	err := row.Scan(&t.ID, &t.Code, &t.Libelle, &t.Description, &t.Actif)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, repo.ErrNotFound
	}
	return t, err
}

func (r *Repository) List(ctx context.Context) ([]TypePermis, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, code, libelle, description, actif FROM types_permis ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []TypePermis
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (TypePermis, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanType(r.db.QueryRow(ctx, `SELECT id, code, libelle, description, actif FROM types_permis WHERE id = $1`, id))
}

func (r *Repository) Create(ctx context.Context, t TypePermis) (TypePermis, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO types_permis (id, code, libelle, description, actif)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, t.ID, t.Code, t.Libelle, t.Description, t.Actif).Scan(&t.ID)
	return t, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, req UpsertRequest) (TypePermis, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanType(r.db.QueryRow(ctx, `
		UPDATE types_permis SET code=$2, libelle=$3, description=$4, actif=$5
		WHERE id=$1
		RETURNING id, code, libelle, description, actif
	`, id, req.Code, req.Libelle, req.Description, req.Actif))
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM types_permis WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *Repository) CountActifs(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM types_permis WHERE actif`).Scan(&count)
	return count, err
}

type typePermisRepository interface {
	List(ctx context.Context) ([]TypePermis, error)
	GetByID(ctx context.Context, id uuid.UUID) (TypePermis, error)
	Create(ctx context.Context, t TypePermis) (TypePermis, error)
	Update(ctx context.Context, id uuid.UUID, req UpsertRequest) (TypePermis, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service valide et relaie les opérations du référentiel.
type Service struct {
	repo typePermisRepository
}

func NewService(repo typePermisRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]TypePermis, error) {
	return s.repo.List(ctx)
}

// ActiveOnly retient les types proposables dans les formulaires.
func (s *Service) ActiveOnly(ctx context.Context) ([]TypePermis, error) {
	types, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var actifs []TypePermis
	for _, t := range types {
		if t.Actif {
			actifs = append(actifs, t)
		}
	}
	return actifs, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (TypePermis, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (TypePermis, error) {
	if err := util.RequireString(req.Code, "code"); err != nil {
		return TypePermis{}, err
	}
	if err := util.RequireString(req.Libelle, "libelle"); err != nil {
		return TypePermis{}, err
	}
	return s.repo.Create(ctx, TypePermis{
		ID:          uuid.New(),
		Code:        req.Code,
		Libelle:     req.Libelle,
		Description: req.Description,
		Actif:       req.Actif,
	})
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpsertRequest) (TypePermis, error) {
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
