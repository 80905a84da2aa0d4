package scoring

import (
	"bytes"
	"encoding/json"
)

// DefaultScoreMax est le barème de repli quand aucun maximum n'est dérivable.
const DefaultScoreMax = 100

// Forme identifie la variante du champ resultatsCategories.
type Forme int

const (
	// FormeInconnue: aucune forme reconnue, score nul sur barème par défaut.
	FormeInconnue Forme = iota
	// FormeTableau: séquence ordonnée de résultats par catégorie.
	FormeTableau
	// FormeCriteres: objet portant une séquence de critères notés.
	FormeCriteres
	// FormePlate: score unique accompagné de son maximum.
	FormePlate
)

// ResultatCategorie est un résultat de catégorie dans la forme tableau.
type ResultatCategorie struct {
	Nom      string  `json:"nom,omitempty"`
	Score    float64 `json:"score"`
	ScoreMax float64 `json:"scoreMax"`
}

// Critere est un critère noté dans la forme critères.
type Critere struct {
	Nom       string  `json:"nom,omitempty"`
	Points    float64 `json:"points"`
	PointsMax float64 `json:"pointsMax,omitempty"`
}

// Resultats est la variante taguée du champ polymorphe resultatsCategories.
// La forme est résolue une seule fois à la frontière JSON; le code aval
// ne renifle jamais la structure brute.
type Resultats struct {
	Forme      Forme
	Categories []ResultatCategorie
	Criteres   []Critere
	Score      float64
	ScoreMax   float64

	raw json.RawMessage
}

// UnmarshalJSON résout la forme avec la précédence: tableau, puis objet à
// critères, puis score plat. Cet ordre est significatif: un document
// ambigu est toujours lu par la première branche applicable.
func (r *Resultats) UnmarshalJSON(data []byte) error {
	*r = Resultats{raw: append(json.RawMessage(nil), data...)}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] == '[' {
		var categories []ResultatCategorie
		if err := json.Unmarshal(trimmed, &categories); err != nil {
			return nil
		}
		r.Forme = FormeTableau
		r.Categories = categories
		return nil
	}

	if trimmed[0] != '{' {
		return nil
	}

	var avecCriteres struct {
		Criteres []Critere `json:"criteres"`
	}
	if err := json.Unmarshal(trimmed, &avecCriteres); err == nil && avecCriteres.Criteres != nil {
		r.Forme = FormeCriteres
		r.Criteres = avecCriteres.Criteres
		return nil
	}

	var plat struct {
		Score    *float64 `json:"score"`
		ScoreMax float64  `json:"scoreMax"`
	}
	if err := json.Unmarshal(trimmed, &plat); err == nil && plat.Score != nil {
		r.Forme = FormePlate
		r.Score = *plat.Score
		r.ScoreMax = plat.ScoreMax
		return nil
	}

	return nil
}

// MarshalJSON restitue le document d'origine tel que reçu du stockage.
func (r Resultats) MarshalJSON() ([]byte, error) {
	if len(r.raw) == 0 {
		return []byte("null"), nil
	}
	return r.raw, nil
}

// Points calcule le score total et le barème d'une évaluation selon la
// forme résolue.
func (r Resultats) Points() (score float64, max float64) {
	switch r.Forme {
	case FormeTableau:
		for _, c := range r.Categories {
			score += c.Score
			max += c.ScoreMax
		}
		if max == 0 {
			max = DefaultScoreMax
		}
		return score, max
	case FormeCriteres:
		for _, c := range r.Criteres {
			score += c.Points
		}
		// le barème n'est pas dérivable de cette forme
		return score, DefaultScoreMax
	case FormePlate:
		max = r.ScoreMax
		if max == 0 {
			max = DefaultScoreMax
		}
		return r.Score, max
	default:
		return 0, DefaultScoreMax
	}
}
