package repo

import "errors"

var (
	// ErrNotFound est retourné quand aucun enregistrement n'est trouvé.
	ErrNotFound = errors.New("enregistrement introuvable")
)
