package role

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/sigepermis/api/internal/repo"
)

type stubRepo struct {
	roles []Role
}

func (s *stubRepo) List(ctx context.Context) ([]Role, error) { return s.roles, nil }

func (s *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (Role, error) {
	for _, role := range s.roles {
		if role.ID == id {
			return role, nil
		}
	}
	return Role{}, repo.ErrNotFound
}

func (s *stubRepo) Create(ctx context.Context, role Role) (Role, error) {
	s.roles = append(s.roles, role)
	return role, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, libelle string) (Role, error) {
	for i, role := range s.roles {
		if role.ID == id {
			s.roles[i].Libelle = libelle
			return s.roles[i], nil
		}
	}
	return Role{}, repo.ErrNotFound
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i, role := range s.roles {
		if role.ID == id {
			s.roles = append(s.roles[:i], s.roles[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

type stubCounter map[string]int

func (s stubCounter) CountByRole(ctx context.Context) (map[string]int, error) {
	return s, nil
}

func TestListAvecEffectifs(t *testing.T) {
	svc := NewService(&stubRepo{roles: []Role{
		{ID: uuid.New(), Libelle: "INSPECTEUR"},
		{ID: uuid.New(), Libelle: "SUPERVISEUR"},
	}}, stubCounter{"INSPECTEUR": 12})

	got, err := svc.ListAvecEffectifs(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("attendu 2 rôles, obtenu %d", len(got))
	}
	if got[0].Effectif != 12 {
		t.Fatalf("effectif INSPECTEUR attendu 12, obtenu %d", got[0].Effectif)
	}
	// libellé sans compte: effectif zéro, pas d'erreur
	if got[1].Effectif != 0 {
		t.Fatalf("effectif SUPERVISEUR attendu 0, obtenu %d", got[1].Effectif)
	}
}

func TestCreateExigeLibelle(t *testing.T) {
	svc := NewService(&stubRepo{}, stubCounter{})

	if _, err := svc.Create(context.Background(), UpsertRequest{Libelle: "  "}); err == nil {
		t.Fatal("libellé blanc accepté")
	}
	created, err := svc.Create(context.Background(), UpsertRequest{Libelle: "SUPERVISEUR"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("id non généré")
	}
}
