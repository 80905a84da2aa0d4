package typepermis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sigepermis/api/internal/repo"
)

type stubRepo struct {
	types map[uuid.UUID]TypePermis
}

func newStubRepo(types ...TypePermis) *stubRepo {
	s := &stubRepo{types: make(map[uuid.UUID]TypePermis)}
	for _, t := range types {
		s.types[t.ID] = t
	}
	return s
}

func (s *stubRepo) List(ctx context.Context) ([]TypePermis, error) {
	var out []TypePermis
	for _, t := range s.types {
		out = append(out, t)
	}
	return out, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (TypePermis, error) {
	t, ok := s.types[id]
	if !ok {
		return TypePermis{}, repo.ErrNotFound
	}
	return t, nil
}

func (s *stubRepo) Create(ctx context.Context, t TypePermis) (TypePermis, error) {
	s.types[t.ID] = t
	return t, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, req UpsertRequest) (TypePermis, error) {
	t, ok := s.types[id]
	if !ok {
		return TypePermis{}, repo.ErrNotFound
	}
	t.Code, t.Libelle, t.Description, t.Actif = req.Code, req.Libelle, req.Description, req.Actif
	s.types[id] = t
	return t, nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.types[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.types, id)
	return nil
}

func TestActiveOnly(t *testing.T) {
	svc := NewService(newStubRepo(
		TypePermis{ID: uuid.New(), Code: "A", Libelle: "Moto", Actif: true},
		TypePermis{ID: uuid.New(), Code: "B", Libelle: "Véhicule léger", Actif: true},
		TypePermis{ID: uuid.New(), Code: "F", Libelle: "Ancien régime", Actif: false},
	))

	actifs, err := svc.ActiveOnly(context.Background())
	if err != nil {
		t.Fatalf("active only: %v", err)
	}
	if len(actifs) != 2 {
		t.Fatalf("attendu 2 types actifs, obtenu %d", len(actifs))
	}
	for _, tp := range actifs {
		if !tp.Actif {
			t.Fatalf("type inactif retenu: %+v", tp)
		}
	}
}

func TestCreateValide(t *testing.T) {
	svc := NewService(newStubRepo())

	if _, err := svc.Create(context.Background(), UpsertRequest{Libelle: "Moto"}); err == nil {
		t.Fatal("code vide accepté")
	}
	if _, err := svc.Create(context.Background(), UpsertRequest{Code: "A"}); err == nil {
		t.Fatal("libellé vide accepté")
	}

	created, err := svc.Create(context.Background(), UpsertRequest{Code: "A", Libelle: "Moto", Actif: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("id non généré")
	}
}

func TestHandlerCRUD(t *testing.T) {
	stub := newStubRepo(TypePermis{ID: uuid.New(), Code: "B", Libelle: "Véhicule léger", Actif: true})
	router := chi.NewRouter()
	NewHandler(NewService(stub)).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	var page struct {
		Items []TypePermis `json:"items"`
		Total int          `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("décodage: %v", err)
	}
	if page.Total != 1 || page.Items[0].Code != "B" {
		t.Fatalf("liste inattendue: %+v", page)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"code":"C","libelle":"Poids lourd","actif":true}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete inconnu: status %d", rec.Code)
	}
}
