package candidat

import (
	"time"

	"github.com/google/uuid"
)

// Candidat est le dossier d'un candidat à l'examen de conduite.
type Candidat struct {
	ID                   uuid.UUID  `json:"id"`
	Nom                  string     `json:"nom"`
	Prenom               string     `json:"prenom"`
	AutoEcole            string     `json:"autoEcole"`
	TypePermis           string     `json:"typePermis"`
	NumeroDossier        string     `json:"numeroDossier"`
	DateEvaluation       *time.Time `json:"dateEvaluation,omitempty"`
	InspecteurMatricule  *string    `json:"inspecteurMatricule,omitempty"`
	EstEvalue            bool       `json:"estEvalue"`
	EstReplanifie        bool       `json:"estReplanifie"`
	MotifReplanification *string    `json:"motifReplanification,omitempty"`
	DateReplanification  *time.Time `json:"dateReplanification,omitempty"`
	DateCreation         time.Time  `json:"dateCreation"`
}

// CreateRequest porte les champs du formulaire de création.
type CreateRequest struct {
	Nom                 string     `json:"nom"`
	Prenom              string     `json:"prenom"`
	AutoEcole           string     `json:"autoEcole"`
	TypePermis          string     `json:"typePermis"`
	NumeroDossier       string     `json:"numeroDossier"`
	DateEvaluation      *time.Time `json:"dateEvaluation,omitempty"`
	InspecteurMatricule *string    `json:"inspecteurMatricule,omitempty"`
}

// UpdateRequest porte les champs modifiables d'un dossier. Les champs de
// replanification transitent tels quels, sans règle métier locale.
type UpdateRequest struct {
	Nom                  string     `json:"nom"`
	Prenom               string     `json:"prenom"`
	AutoEcole            string     `json:"autoEcole"`
	TypePermis           string     `json:"typePermis"`
	DateEvaluation       *time.Time `json:"dateEvaluation,omitempty"`
	InspecteurMatricule  *string    `json:"inspecteurMatricule,omitempty"`
	EstEvalue            bool       `json:"estEvalue"`
	EstReplanifie        bool       `json:"estReplanifie"`
	MotifReplanification *string    `json:"motifReplanification,omitempty"`
	DateReplanification  *time.Time `json:"dateReplanification,omitempty"`
}

// ListFilter restreint une liste de candidats.
type ListFilter struct {
	InspecteurMatricule string
	EstEvalue           *bool
}

// Stats agrège les compteurs du parc de candidats.
type Stats struct {
	Total          int `json:"total"`
	Evalues        int `json:"evalues"`
	EnAttente      int `json:"enAttente"`
	SansInspecteur int `json:"sansInspecteur"`
}
