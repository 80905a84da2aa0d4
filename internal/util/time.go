package util

import "time"

// Now retourne l'heure courante en UTC.
func Now() time.Time {
	return time.Now().UTC()
}
