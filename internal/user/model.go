package user

import (
	"github.com/google/uuid"
)

// User représente un compte du programme (administrateur ou inspecteur).
type User struct {
	ID              uuid.UUID `json:"id"`
	Matricule       string    `json:"matricule"`
	Username        string    `json:"username"`
	Nom             string    `json:"nom"`
	Prenom          string    `json:"prenom"`
	Telephone       string    `json:"telephone"`
	Statut          string    `json:"statut"`
	Role            string    `json:"role"`
	Grade           *string   `json:"grade,omitempty"`
	ZoneAffectation *string   `json:"zoneAffectation,omitempty"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
}

// NomComplet assemble prénom et nom pour l'affichage.
func (u User) NomComplet() string {
	return u.Prenom + " " + u.Nom
}

// CreateUserRequest porte les champs d'un formulaire de création.
type CreateUserRequest struct {
	Matricule       string  `json:"matricule"`
	Username        string  `json:"username"`
	Nom             string  `json:"nom"`
	Prenom          string  `json:"prenom"`
	Telephone       string  `json:"telephone"`
	Role            string  `json:"role"`
	Grade           *string `json:"grade,omitempty"`
	ZoneAffectation *string `json:"zoneAffectation,omitempty"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
}

// UpdateUserRequest porte les champs modifiables d'un compte. Le rôle
// est immuable après création et n'apparaît donc pas ici.
type UpdateUserRequest struct {
	Nom             string  `json:"nom"`
	Prenom          string  `json:"prenom"`
	Telephone       string  `json:"telephone"`
	Statut          string  `json:"statut"`
	Grade           *string `json:"grade,omitempty"`
	ZoneAffectation *string `json:"zoneAffectation,omitempty"`
	Email           string  `json:"email"`
}
