package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrResetInvalid est retourné quand le jeton de réinitialisation est invalide ou expiré.
	ErrResetInvalid = errors.New("jeton de réinitialisation invalide")
)

// GenerateResetToken crée un jeton aléatoire sûr et son hash persistable.
func GenerateResetToken() (raw string, hashed string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}

	raw = base64.RawURLEncoding.EncodeToString(buf)
	hashed = HashResetToken(raw)
	return raw, hashed, nil
}

// HashResetToken produit un hash SHA-256 base64.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// ResetRedisKey construit la clé unique de l'état du jeton de réinitialisation.
func ResetRedisKey(hash string) string {
	return fmt.Sprintf("pwdreset:%s", hash)
}
