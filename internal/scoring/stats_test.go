package scoring

import (
	"encoding/json"
	"testing"
)

func TestComputeStatsVide(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.Total != 0 || stats.Admis != 0 || stats.Ajourne != 0 {
		t.Fatalf("compteurs non nuls: %+v", stats)
	}
	if stats.TauxReussite != 0 || stats.TauxEchec != 0 || stats.ScoreMoyen != 0 {
		t.Fatalf("taux non nuls sur ensemble vide: %+v", stats)
	}
}

func TestComputeStatsTaux(t *testing.T) {
	var evaluations []Evaluation
	for i := 0; i < 7; i++ {
		evaluations = append(evaluations, Evaluation{Statut: StatutAdmis})
	}
	for i := 0; i < 3; i++ {
		evaluations = append(evaluations, Evaluation{Statut: StatutAjourne})
	}

	stats := ComputeStats(evaluations)
	if stats.Total != 10 || stats.Admis != 7 || stats.Ajourne != 3 {
		t.Fatalf("compteurs inattendus: %+v", stats)
	}
	if stats.TauxReussite != 70 || stats.TauxEchec != 30 {
		t.Fatalf("taux inattendus: %+v", stats)
	}
}

func TestComputeStatsScoreMoyenArrondi(t *testing.T) {
	mk := func(doc string, statut string) Evaluation {
		var r Resultats
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return Evaluation{Statut: statut, Resultats: r}
	}

	evaluations := []Evaluation{
		mk(`[{"score":14,"scoreMax":20}]`, StatutAdmis),
		mk(`{"score":15,"scoreMax":20}`, StatutAdmis),
		// 14+15+0 = 29 sur 3 évaluations → 9.67 arrondi à 10
		mk(`null`, StatutAjourne),
	}

	stats := ComputeStats(evaluations)
	if stats.ScoreMoyen != 10 {
		t.Fatalf("score moyen attendu 10, obtenu %d", stats.ScoreMoyen)
	}
}
