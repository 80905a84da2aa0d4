package evaluation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/sigepermis/api/internal/repo"
	"github.com/sigepermis/api/internal/scoring"
	"github.com/sigepermis/api/internal/session"
)

type stubRepo struct {
	evaluations []Evaluation
	listCalls   int
	byMatricule map[string]int
}

func (s *stubRepo) List(ctx context.Context) ([]Evaluation, error) {
	s.listCalls++
	return s.evaluations, nil
}

func (s *stubRepo) ListByInspecteur(ctx context.Context, matricule string) ([]Evaluation, error) {
	if s.byMatricule == nil {
		s.byMatricule = make(map[string]int)
	}
	s.byMatricule[matricule]++

	var out []Evaluation
	for _, e := range s.evaluations {
		if e.MatriculeInspecteur == matricule {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubRepo) ListByTypePermis(ctx context.Context, code string) ([]Evaluation, error) {
	var out []Evaluation
	for _, e := range s.evaluations {
		if e.CodeTypePermis == code {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubRepo) ListByCandidat(ctx context.Context, numero string) ([]Evaluation, error) {
	var out []Evaluation
	for _, e := range s.evaluations {
		if e.NumeroDossierCandidat == numero {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (Evaluation, error) {
	for _, e := range s.evaluations {
		if e.ID == id {
			return e, nil
		}
	}
	return Evaluation{}, repo.ErrNotFound
}

func eval(t *testing.T, matricule, statut, resultats string) Evaluation {
	t.Helper()
	var r scoring.Resultats
	if err := json.Unmarshal([]byte(resultats), &r); err != nil {
		t.Fatalf("unmarshal résultats: %v", err)
	}
	return Evaluation{
		ID:                  uuid.New(),
		MatriculeInspecteur: matricule,
		CodeTypePermis:      "B",
		Statut:              statut,
		ResultatsCategories: r,
	}
}

func TestListScopeParRole(t *testing.T) {
	ctx := context.Background()
	stub := &stubRepo{evaluations: []Evaluation{
		eval(t, "INS-001", scoring.StatutAdmis, `null`),
		eval(t, "INS-002", scoring.StatutAdmis, `null`),
	}}
	svc := NewService(stub, nil)

	got, err := svc.List(ctx, &session.Session{Role: "INSPECTEUR", Matricule: "INS-001"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].MatriculeInspecteur != "INS-001" {
		t.Fatalf("inspecteur non restreint: %+v", got)
	}
	if stub.listCalls != 0 {
		t.Fatal("l'inspecteur ne doit pas passer par la liste complète")
	}

	got, err = svc.List(ctx, &session.Session{Role: "ADMIN"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || stub.listCalls != 1 {
		t.Fatalf("l'admin doit tout voir: %d éléments, %d appels", len(got), stub.listCalls)
	}
}

func TestStatsAgrege(t *testing.T) {
	ctx := context.Background()
	stub := &stubRepo{evaluations: []Evaluation{
		eval(t, "INS-001", scoring.StatutAdmis, `[{"score":14,"scoreMax":20}]`),
		eval(t, "INS-001", scoring.StatutAdmis, `{"criteres":[{"nom":"créneau","points":7}]}`),
		eval(t, "INS-002", scoring.StatutAjourne, `{"score":5,"scoreMax":20}`),
		eval(t, "INS-002", scoring.StatutAjourne, `"forme inattendue"`),
	}}
	svc := NewService(stub, nil)

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 4 || stats.Admis != 2 || stats.Ajourne != 2 {
		t.Fatalf("compteurs inattendus: %+v", stats)
	}
	if stats.TauxReussite != 50 || stats.TauxEchec != 50 {
		t.Fatalf("taux inattendus: %+v", stats)
	}
	// (14 + 7 + 5 + 0) / 4 = 6.5 arrondi à 7
	if stats.ScoreMoyen != 7 {
		t.Fatalf("score moyen attendu 7, obtenu %d", stats.ScoreMoyen)
	}
}

func TestMesStatsRestreintALaSession(t *testing.T) {
	ctx := context.Background()
	stub := &stubRepo{evaluations: []Evaluation{
		eval(t, "INS-001", scoring.StatutAdmis, `null`),
		eval(t, "INS-002", scoring.StatutAjourne, `null`),
	}}
	svc := NewService(stub, nil)

	stats, err := svc.MesStats(ctx, &session.Session{Role: "INSPECTEUR", Matricule: "INS-001"})
	if err != nil {
		t.Fatalf("mes-stats: %v", err)
	}
	if stats.Total != 1 || stats.Admis != 1 || stats.TauxReussite != 100 {
		t.Fatalf("stats inattendues: %+v", stats)
	}
	if stub.byMatricule["INS-001"] != 1 {
		t.Fatalf("appels par matricule: %+v", stub.byMatricule)
	}
}
