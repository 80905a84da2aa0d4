package candidat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sigepermis/api/internal/db"
	"github.com/sigepermis/api/internal/repo"
)

const dbTimeout = 3 * time.Second

const candidatColumns = `id, nom, prenom, auto_ecole, type_permis, numero_dossier, date_evaluation,
	inspecteur_matricule, est_evalue, est_replanifie, motif_replanification, date_replanification, date_creation`

// Repository fournit l'accès aux dossiers candidats.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanCandidat(row pgx.Row) (Candidat, error) {
	var c Candidat
	err := row.Scan(&c.ID, &c.Nom, &c.Prenom, &c.AutoEcole, &c.TypePermis, &c.NumeroDossier,
		&c.DateEvaluation, &c.InspecteurMatricule, &c.EstEvalue, &c.EstReplanifie,
		&c.MotifReplanification, &c.DateReplanification, &c.DateCreation)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, repo.ErrNotFound
	}
	return c, err
}

func (r *Repository) collect(ctx context.Context, query string, args ...any) ([]Candidat, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidats []Candidat
	for rows.Next() {
		c, err := scanCandidat(rows)
		if err != nil {
			return nil, err
		}
		candidats = append(candidats, c)
	}
	return candidats, rows.Err()
}

// List applique les filtres optionnels matricule et est_evalue.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Candidat, error) {
	query := `SELECT ` + candidatColumns + ` FROM candidats`
	var (
		clauses []string
		args    []any
	)
	if filter.InspecteurMatricule != "" {
		args = append(args, filter.InspecteurMatricule)
		clauses = append(clauses, fmt.Sprintf("inspecteur_matricule = $%d", len(args)))
	}
	if filter.EstEvalue != nil {
		args = append(args, *filter.EstEvalue)
		clauses = append(clauses, fmt.Sprintf("est_evalue = $%d", len(args)))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY date_creation DESC"

	return r.collect(ctx, query, args...)
}

// ListSansInspecteur retourne les dossiers non encore affectés.
func (r *Repository) ListSansInspecteur(ctx context.Context) ([]Candidat, error) {
	return r.collect(ctx, `
		SELECT `+candidatColumns+`
		FROM candidats
		WHERE inspecteur_matricule IS NULL
		ORDER BY date_creation DESC
	`)
}

// ListPlanifiesPourJour retourne les dossiers d'un inspecteur planifiés
// dans la journée donnée et pas encore évalués.
func (r *Repository) ListPlanifiesPourJour(ctx context.Context, matricule string, jour time.Time) ([]Candidat, error) {
	debut := time.Date(jour.Year(), jour.Month(), jour.Day(), 0, 0, 0, 0, time.UTC)
	fin := debut.Add(24 * time.Hour)
	return r.collect(ctx, `
		SELECT `+candidatColumns+`
		FROM candidats
		WHERE inspecteur_matricule = $1
		  AND est_evalue = FALSE
		  AND date_evaluation >= $2 AND date_evaluation < $3
		ORDER BY date_evaluation
	`, matricule, debut, fin)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Candidat, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanCandidat(r.db.QueryRow(ctx, `SELECT `+candidatColumns+` FROM candidats WHERE id = $1`, id))
}

func (r *Repository) Create(ctx context.Context, c Candidat) (Candidat, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO candidats (id, nom, prenom, auto_ecole, type_permis, numero_dossier, date_evaluation,
			inspecteur_matricule, est_evalue, est_replanifie, motif_replanification, date_replanification, date_creation)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id, date_creation
	`, c.ID, c.Nom, c.Prenom, c.AutoEcole, c.TypePermis, c.NumeroDossier, c.DateEvaluation,
		c.InspecteurMatricule, c.EstEvalue, c.EstReplanifie, c.MotifReplanification,
		c.DateReplanification, c.DateCreation).Scan(&c.ID, &c.DateCreation)
	return c, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (Candidat, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanCandidat(r.db.QueryRow(ctx, `
		UPDATE candidats
		SET nom=$2, prenom=$3, auto_ecole=$4, type_permis=$5, date_evaluation=$6,
			inspecteur_matricule=$7, est_evalue=$8, est_replanifie=$9,
			motif_replanification=$10, date_replanification=$11
		WHERE id=$1
		RETURNING `+candidatColumns+`
	`, id, req.Nom, req.Prenom, req.AutoEcole, req.TypePermis, req.DateEvaluation,
		req.InspecteurMatricule, req.EstEvalue, req.EstReplanifie,
		req.MotifReplanification, req.DateReplanification))
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM candidats WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// AssignerInspecteur affecte un inspecteur à un dossier après avoir
// vérifié, dans la même transaction, que le matricule existe et est actif.
func (r *Repository) AssignerInspecteur(ctx context.Context, id uuid.UUID, matricule string) (Candidat, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var c Candidat
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM users WHERE matricule = $1 AND role = 'INSPECTEUR' AND statut = 'ACTIF')
		`, matricule).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repo.ErrNotFound
		}

		var err error
		c, err = scanCandidat(tx.QueryRow(ctx, `
			UPDATE candidats SET inspecteur_matricule = $2 WHERE id = $1
			RETURNING `+candidatColumns+`
		`, id, matricule))
		return err
	})
	return c, err
}

// RetirerInspecteur détache le dossier de son inspecteur.
func (r *Repository) RetirerInspecteur(ctx context.Context, id uuid.UUID) (Candidat, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanCandidat(r.db.QueryRow(ctx, `
		UPDATE candidats SET inspecteur_matricule = NULL WHERE id = $1
		RETURNING `+candidatColumns+`
	`, id))
}

// Stats agrège les compteurs, restreints au matricule s'il est fourni.
func (r *Repository) Stats(ctx context.Context, matricule string) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE est_evalue),
			COUNT(*) FILTER (WHERE NOT est_evalue),
			COUNT(*) FILTER (WHERE inspecteur_matricule IS NULL)
		FROM candidats`
	args := []any{}
	if matricule != "" {
		query += ` WHERE inspecteur_matricule = $1`
		args = append(args, matricule)
	}

	var s Stats
	err := r.db.QueryRow(ctx, query, args...).Scan(&s.Total, &s.Evalues, &s.EnAttente, &s.SansInspecteur)
	return s, err
}

// Count retourne le nombre total de dossiers.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM candidats`).Scan(&count)
	return count, err
}
