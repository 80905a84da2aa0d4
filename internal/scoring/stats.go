package scoring

import "math"

// Statuts d'évaluation reconnus.
const (
	StatutAdmis   = "ADMIS"
	StatutAjourne = "AJOURNE"
)

// Evaluation est la vue minimale nécessaire à l'agrégation.
type Evaluation struct {
	Statut    string
	Resultats Resultats
}

// Statistiques agrège les issues d'un ensemble d'évaluations.
type Statistiques struct {
	Total        int     `json:"total"`
	Admis        int     `json:"admis"`
	Ajourne      int     `json:"ajourne"`
	TauxReussite float64 `json:"tauxReussite"`
	TauxEchec    float64 `json:"tauxEchec"`
	ScoreMoyen   int     `json:"scoreMoyen"`
}

// ComputeStats dérive les statistiques agrégées. Un ensemble vide donne
// des taux et une moyenne à zéro, jamais une division par zéro.
func ComputeStats(evaluations []Evaluation) Statistiques {
	stats := Statistiques{Total: len(evaluations)}
	if stats.Total == 0 {
		return stats
	}

	var somme float64
	for _, eval := range evaluations {
		switch eval.Statut {
		case StatutAdmis:
			stats.Admis++
		case StatutAjourne:
			stats.Ajourne++
		}
		score, _ := eval.Resultats.Points()
		somme += score
	}

	stats.TauxReussite = float64(stats.Admis) / float64(stats.Total) * 100
	stats.TauxEchec = float64(stats.Ajourne) / float64(stats.Total) * 100
	stats.ScoreMoyen = int(math.Round(somme / float64(stats.Total)))
	return stats
}
