package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sigepermis/api/internal/repo"
)

const dbTimeout = 3 * time.Second

const evaluationColumns = `id, numero_dossier_candidat, matricule_inspecteur, code_type_permis,
	commentaire, statut, signature_inspecteur, date_enregistrement, resultats_categories`

// Repository fournit l'accès en lecture aux comptes rendus d'examen.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanEvaluation(row pgx.Row) (Evaluation, error) {
	var (
		e   Evaluation
		raw []byte
	)
	err := row.Scan(&e.ID, &e.NumeroDossierCandidat, &e.MatriculeInspecteur, &e.CodeTypePermis,
		&e.Commentaire, &e.Statut, &e.SignatureInspecteur, &e.DateEnregistrement, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return e, repo.ErrNotFound
	}
	if err != nil {
		return e, err
	}
	// une forme inattendue donne la variante inconnue, jamais une erreur
	_ = json.Unmarshal(raw, &e.ResultatsCategories)
	return e, nil
}

func (r *Repository) collect(ctx context.Context, query string, args ...any) ([]Evaluation, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evaluations []Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, e)
	}
	return evaluations, rows.Err()
}

func (r *Repository) List(ctx context.Context) ([]Evaluation, error) {
	return r.collect(ctx, `SELECT `+evaluationColumns+` FROM evaluations ORDER BY date_enregistrement DESC`)
}

func (r *Repository) ListByInspecteur(ctx context.Context, matricule string) ([]Evaluation, error) {
	return r.collect(ctx, `
		SELECT `+evaluationColumns+`
		FROM evaluations
		WHERE matricule_inspecteur = $1
		ORDER BY date_enregistrement DESC
	`, matricule)
}

func (r *Repository) ListByTypePermis(ctx context.Context, code string) ([]Evaluation, error) {
	return r.collect(ctx, `
		SELECT `+evaluationColumns+`
		FROM evaluations
		WHERE code_type_permis = $1
		ORDER BY date_enregistrement DESC
	`, code)
}

func (r *Repository) ListByCandidat(ctx context.Context, numeroDossier string) ([]Evaluation, error) {
	return r.collect(ctx, `
		SELECT `+evaluationColumns+`
		FROM evaluations
		WHERE numero_dossier_candidat = $1
		ORDER BY date_enregistrement DESC
	`, numeroDossier)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Evaluation, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanEvaluation(r.db.QueryRow(ctx, `SELECT `+evaluationColumns+` FROM evaluations WHERE id = $1`, id))
}
