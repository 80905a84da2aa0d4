package evaluation

import (
	"time"

	"github.com/google/uuid"

	"github.com/sigepermis/api/internal/scoring"
)

// Evaluation est le compte rendu d'un examen pratique. Le statut est
// dérivé côté enregistrement; il est restitué tel quel, jamais recalculé.
type Evaluation struct {
	ID                    uuid.UUID         `json:"id"`
	NumeroDossierCandidat string            `json:"numeroDossierCandidat"`
	MatriculeInspecteur   string            `json:"matriculeInspecteur"`
	CodeTypePermis        string            `json:"codeTypePermis"`
	Commentaire           string            `json:"commentaire"`
	Statut                string            `json:"statut"`
	SignatureInspecteur   string            `json:"signatureInspecteur"`
	DateEnregistrement    time.Time         `json:"dateEnregistrement"`
	ResultatsCategories   scoring.Resultats `json:"resultatsCategories"`
}

// Score expose le total normalisé du compte rendu.
func (e Evaluation) Score() (float64, float64) {
	return e.ResultatsCategories.Points()
}

func toScoringView(evaluations []Evaluation) []scoring.Evaluation {
	views := make([]scoring.Evaluation, 0, len(evaluations))
	for _, e := range evaluations {
		views = append(views, scoring.Evaluation{Statut: e.Statut, Resultats: e.ResultatsCategories})
	}
	return views
}
