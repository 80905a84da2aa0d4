// Package categorie gère les grilles d'évaluation par type de permis.
package categorie

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sigepermis/api/internal/repo"
	"github.com/sigepermis/api/internal/util"
)

const dbTimeout = 3 * time.Second

// CritereTemplate est un critère de notation de la grille.
type CritereTemplate struct {
	Nom    string  `json:"nom"`
	Points float64 `json:"points"`
}

// CriteresTemplate est la grille de notation d'une catégorie.
type CriteresTemplate struct {
	Criteres []CritereTemplate `json:"criteres"`
}

// Categorie définit les critères d'évaluation d'une épreuve pour un
// type de permis donné.
type Categorie struct {
	ID               uuid.UUID        `json:"id"`
	Nom              string           `json:"nom"`
	TypePermis       string           `json:"typePermis"`
	CriteresTemplate CriteresTemplate `json:"criteresTemplate"`
	ScoreMax         float64          `json:"scoreMax"`
}

// UpsertRequest porte les champs des formulaires de création et d'édition.
type UpsertRequest struct {
	Nom              string           `json:"nom"`
	TypePermis       string           `json:"typePermis"`
	CriteresTemplate CriteresTemplate `json:"criteresTemplate"`
	ScoreMax         float64          `json:"scoreMax"`
}

// Repository fournit l'accès aux grilles. Le template est stocké en JSONB.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanCategorie(row pgx.Row) (Categorie, error) {
	var (
		c   Categorie
		raw []byte
	)
	err := row.Scan(&c.ID, &c.Nom, &c.TypePermis, &raw, &c.ScoreMax)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, repo.ErrNotFound
	}
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(raw, &c.CriteresTemplate); err != nil {
		return c, err
	}
	return c, nil
}

func (r *Repository) collect(ctx context.Context, query string, args ...any) ([]Categorie, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Categorie
	for rows.Next() {
		c, err := scanCategorie(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repository) List(ctx context.Context) ([]Categorie, error) {
	return r.collect(ctx, `
		SELECT id, nom, type_permis, criteres_template, score_max
		FROM categories_evaluation_permis ORDER BY type_permis, nom
	`)
}

func (r *Repository) ListByTypePermis(ctx context.Context, typePermis string) ([]Categorie, error) {
	return r.collect(ctx, `
		SELECT id, nom, type_permis, criteres_template, score_max
		FROM categories_evaluation_permis WHERE type_permis = $1 ORDER BY nom
	`, typePermis)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Categorie, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanCategorie(r.db.QueryRow(ctx, `
		SELECT id, nom, type_permis, criteres_template, score_max
		FROM categories_evaluation_permis WHERE id = $1
	`, id))
}

func (r *Repository) Create(ctx context.Context, c Categorie) (Categorie, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	template, err := json.Marshal(c.CriteresTemplate)
	if err != nil {
		return c, err
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO categories_evaluation_permis (id, nom, type_permis, criteres_template, score_max)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, c.ID, c.Nom, c.TypePermis, template, c.ScoreMax).Scan(&c.ID)
	return c, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, req UpsertRequest) (Categorie, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	template, err := json.Marshal(req.CriteresTemplate)
	if err != nil {
		return Categorie{}, err
	}
	return scanCategorie(r.db.QueryRow(ctx, `
		UPDATE categories_evaluation_permis
		SET nom=$2, type_permis=$3, criteres_template=$4, score_max=$5
		WHERE id=$1
		RETURNING id, nom, type_permis, criteres_template, score_max
	`, id, req.Nom, req.TypePermis, template, req.ScoreMax))
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM categories_evaluation_permis WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type categorieRepository interface {
	List(ctx context.Context) ([]Categorie, error)
	ListByTypePermis(ctx context.Context, typePermis string) ([]Categorie, error)
	GetByID(ctx context.Context, id uuid.UUID) (Categorie, error)
	Create(ctx context.Context, c Categorie) (Categorie, error)
	Update(ctx context.Context, id uuid.UUID, req UpsertRequest) (Categorie, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service valide et relaie les opérations sur les grilles.
type Service struct {
	repo categorieRepository
}

func NewService(repo categorieRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Categorie, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByTypePermis(ctx context.Context, typePermis string) ([]Categorie, error) {
	return s.repo.ListByTypePermis(ctx, typePermis)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Categorie, error) {
	return s.repo.GetByID(ctx, id)
}

// Create vérifie la cohérence de la grille: le score maximal doit
// couvrir la somme des points des critères.
func (s *Service) Create(ctx context.Context, req UpsertRequest) (Categorie, error) {
	if err := validate(req); err != nil {
		return Categorie{}, err
	}
	return s.repo.Create(ctx, Categorie{
		ID:               uuid.New(),
		Nom:              req.Nom,
		TypePermis:       req.TypePermis,
		CriteresTemplate: req.CriteresTemplate,
		ScoreMax:         req.ScoreMax,
	})
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpsertRequest) (Categorie, error) {
	if err := validate(req); err != nil {
		return Categorie{}, err
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ErrScoreMaxInsuffisant signale un plafond inférieur à la somme des points.
var ErrScoreMaxInsuffisant = util.Invalid("scoreMax inférieur à la somme des points des critères")

func validate(req UpsertRequest) error {
	if err := util.RequireString(req.Nom, "nom"); err != nil {
		return err
	}
	if err := util.RequireString(req.TypePermis, "typePermis"); err != nil {
		return err
	}
	var total float64
	for _, c := range req.CriteresTemplate.Criteres {
		total += c.Points
	}
	if req.ScoreMax < total {
		return ErrScoreMaxInsuffisant
	}
	return nil
}
