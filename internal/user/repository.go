package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sigepermis/api/internal/repo"
)

const dbTimeout = 3 * time.Second

const userColumns = `id, matricule, username, nom, prenom, telephone, statut, role, grade, zone_affectation, email, password_hash`

// Repository fournit l'accès aux comptes.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Matricule, &u.Username, &u.Nom, &u.Prenom, &u.Telephone,
		&u.Statut, &u.Role, &u.Grade, &u.ZoneAffectation, &u.Email, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, repo.ErrNotFound
	}
	return u, err
}

func (r *Repository) collect(ctx context.Context, query string, args ...any) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	return r.collect(ctx, `SELECT `+userColumns+` FROM users ORDER BY nom, prenom`)
}

func (r *Repository) ListByRole(ctx context.Context, role string) ([]User, error) {
	return r.collect(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY nom, prenom`, role)
}

func (r *Repository) ListByRoleAndStatut(ctx context.Context, role, statut string) ([]User, error) {
	return r.collect(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 AND statut = $2 ORDER BY nom, prenom`, role, statut)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByLogin cherche un compte par username ou matricule.
func (r *Repository) GetByLogin(ctx context.Context, login string) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1 OR matricule = $1
	`, login))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (r *Repository) GetByMatricule(ctx context.Context, matricule string) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE matricule = $1`, matricule))
}

// LoginExists vérifie la disponibilité d'un identifiant de connexion.
func (r *Repository) LoginExists(ctx context.Context, login string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR matricule = $1)
	`, login).Scan(&exists)
	return exists, err
}

func (r *Repository) Create(ctx context.Context, u User) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, matricule, username, nom, prenom, telephone, statut, role, grade, zone_affectation, email, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id
	`, u.ID, u.Matricule, u.Username, u.Nom, u.Prenom, u.Telephone, u.Statut, u.Role,
		u.Grade, u.ZoneAffectation, u.Email, u.PasswordHash).Scan(&u.ID)
	return u, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users
		SET nom=$2, prenom=$3, telephone=$4, statut=$5, grade=$6, zone_affectation=$7, email=$8
		WHERE id=$1
		RETURNING `+userColumns+`
	`, id, req.Nom, req.Prenom, req.Telephone, req.Statut, req.Grade, req.ZoneAffectation, req.Email))
}

func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// CountByRole agrège le nombre de comptes par libellé de rôle.
func (r *Repository) CountByRole(ctx context.Context) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts[role] = count
	}
	return counts, rows.Err()
}
