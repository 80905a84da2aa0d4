package util

import (
	"errors"
	"net/mail"
	"strings"
)

// ValidationError signale une entrée refusée avant tout appel au dépôt.
// Son message peut être renvoyé au client tel quel.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Invalid construit une erreur de validation.
func Invalid(msg string) error {
	return &ValidationError{msg: msg}
}

// IsValidation dit si err provient d'une validation d'entrée.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ValidateEmail retourne une erreur pour les e-mails invalides.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return Invalid("email obligatoire")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Invalid("email invalide")
	}
	return nil
}

// ValidatePassword vérifie les exigences minimales du mot de passe.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return Invalid("le mot de passe doit contenir au moins 8 caractères")
	}
	return nil
}

// RequireString garantit une chaîne non vide.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return Invalid(field + " obligatoire")
	}
	return nil
}
