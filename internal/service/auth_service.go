package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sigepermis/api/internal/auth"
	"github.com/sigepermis/api/internal/repo"
	"github.com/sigepermis/api/internal/session"
	"github.com/sigepermis/api/internal/user"
	"github.com/sigepermis/api/internal/util"
)

var (
	// ErrInvalidCredentials couvre identifiant inconnu et mot de passe erroné.
	ErrInvalidCredentials = errors.New("identifiants invalides")
	// ErrCompteDesactive refuse la connexion d'un compte non actif.
	ErrCompteDesactive = errors.New("compte désactivé")
)

// StatutActif est le seul statut autorisé à se connecter.
const StatutActif = "ACTIF"

type authRepository interface {
	GetByLogin(ctx context.Context, login string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type resetStore interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService orchestre connexion, déconnexion et réinitialisation de
// mot de passe.
type AuthService struct {
	users    authRepository
	sessions *session.Store
	jwt      *auth.JWTManager
	reset    resetStore
	resetTTL time.Duration
}

func NewAuthService(users authRepository, sessions *session.Store, jwt *auth.JWTManager, reset resetStore, resetTTL time.Duration) *AuthService {
	return &AuthService{users: users, sessions: sessions, jwt: jwt, reset: reset, resetTTL: resetTTL}
}

// LoginResult est le corps de réponse d'une connexion réussie.
type LoginResult struct {
	UserID     string `json:"userId"`
	Role       string `json:"role"`
	Matricule  string `json:"matricule"`
	NomComplet string `json:"nomComplet"`
	Token      string `json:"token"`
	Message    string `json:"message"`
}

// Login authentifie par username ou matricule, émet un jeton et ouvre
// la session côté Redis.
func (s *AuthService) Login(ctx context.Context, login, password string) (LoginResult, error) {
	u, err := s.users.GetByLogin(ctx, login)
	if errors.Is(err, repo.ErrNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("recherche du compte: %w", err)
	}

	ok, err := auth.Verify(password, u.PasswordHash)
	if err != nil {
		return LoginResult{}, fmt.Errorf("vérification du mot de passe: %w", err)
	}
	if !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	if u.Statut != StatutActif {
		return LoginResult{}, ErrCompteDesactive
	}

	token, _, err := s.jwt.GenerateAccessToken(u.ID.String(), u.Role, u.Matricule, u.NomComplet())
	if err != nil {
		return LoginResult{}, fmt.Errorf("émission du jeton: %w", err)
	}

	sess := &session.Session{
		UserID:     u.ID.String(),
		Matricule:  u.Matricule,
		NomComplet: u.NomComplet(),
		Role:       u.Role,
		Token:      token,
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return LoginResult{}, fmt.Errorf("ouverture de session: %w", err)
	}

	return LoginResult{
		UserID:     u.ID.String(),
		Role:       u.Role,
		Matricule:  u.Matricule,
		NomComplet: u.NomComplet(),
		Token:      token,
		Message:    "Connexion réussie",
	}, nil
}

// Logout ferme la session associée au jeton. Un jeton déjà expiré ou
// inconnu n'est pas une erreur.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Drop(ctx, token)
}

// ForgotPassword enregistre un jeton de réinitialisation si l'email est
// connu. La réponse est identique que l'email existe ou non.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("recherche par email: %w", err)
	}

	token, hashed, err := auth.GenerateResetToken()
	if err != nil {
		return "", fmt.Errorf("génération du jeton: %w", err)
	}

	key := auth.ResetRedisKey(hashed)
	if err := s.reset.Set(ctx, key, u.ID.String(), s.resetTTL).Err(); err != nil {
		return "", fmt.Errorf("stockage du jeton: %w", err)
	}

	log.Info().Str("user_id", u.ID.String()).Msg("jeton de réinitialisation émis")
	return token, nil
}

// ValidateResetToken vérifie qu'un jeton de réinitialisation est
// toujours actif sans le consommer.
func (s *AuthService) ValidateResetToken(ctx context.Context, token string) error {
	key := auth.ResetRedisKey(auth.HashResetToken(token))
	if err := s.reset.Get(ctx, key).Err(); err != nil {
		return auth.ErrResetInvalid
	}
	return nil
}

// ResetPassword consomme un jeton de réinitialisation et remplace le
// mot de passe du compte associé. Le jeton est à usage unique.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := util.ValidatePassword(newPassword); err != nil {
		return err
	}

	key := auth.ResetRedisKey(auth.HashResetToken(token))
	rawID, err := s.reset.Get(ctx, key).Result()
	if err != nil {
		return auth.ErrResetInvalid
	}

	userID, err := uuid.Parse(rawID)
	if err != nil {
		return auth.ErrResetInvalid
	}

	hash, err := auth.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hachage du mot de passe: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("mise à jour du mot de passe: %w", err)
	}

	// Consommation après succès: un jeton réutilisé doit échouer.
	if err := s.reset.Del(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Msg("suppression du jeton de réinitialisation")
	}
	return nil
}
