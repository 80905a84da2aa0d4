package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sigepermis/api/internal/auth"
	"github.com/sigepermis/api/internal/repo"
	"github.com/sigepermis/api/internal/session"
	"github.com/sigepermis/api/internal/user"
)

type stubUserRepo struct {
	users           []user.User
	passwordUpdates map[uuid.UUID]string
}

func (s *stubUserRepo) GetByLogin(ctx context.Context, login string) (user.User, error) {
	for _, u := range s.users {
		if u.Username == login || u.Matricule == login {
			return u, nil
		}
	}
	return user.User{}, repo.ErrNotFound
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, repo.ErrNotFound
}

func (s *stubUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	if s.passwordUpdates == nil {
		s.passwordUpdates = make(map[uuid.UUID]string)
	}
	s.passwordUpdates[id] = hash
	return nil
}

type stubRedis struct {
	store map[string]string
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if s.store == nil {
		s.store = make(map[string]string)
	}
	switch v := value.(type) {
	case []byte:
		s.store[key] = string(v)
	default:
		s.store[key] = fmt.Sprint(value)
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	val, ok := s.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func newAuthFixture(t *testing.T, users ...user.User) (*AuthService, *stubUserRepo, *session.Store) {
	t.Helper()
	repo := &stubUserRepo{users: users}
	sessions := session.NewStore(&stubRedis{}, time.Hour)
	jwt := auth.NewJWTManager("secret-de-test-suffisamment-long-0000", time.Hour)
	svc := NewAuthService(repo, sessions, jwt, &stubRedis{}, 30*time.Minute)
	return svc, repo, sessions
}

func testUser(t *testing.T, password string) user.User {
	t.Helper()
	hash, err := auth.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return user.User{
		ID:           uuid.New(),
		Matricule:    "INS-001",
		Username:     "adiallo",
		Nom:          "Diallo",
		Prenom:       "Awa",
		Statut:       StatutActif,
		Role:         "INSPECTEUR",
		Email:        "awa.diallo@example.sn",
		PasswordHash: hash,
	}
}

func TestLoginParUsernameEtMatricule(t *testing.T) {
	ctx := context.Background()
	u := testUser(t, "motdepasse")
	svc, _, sessions := newAuthFixture(t, u)

	for _, login := range []string{"adiallo", "INS-001"} {
		res, err := svc.Login(ctx, login, "motdepasse")
		if err != nil {
			t.Fatalf("login %q: %v", login, err)
		}
		if res.Role != "INSPECTEUR" || res.Matricule != "INS-001" || res.NomComplet != "Awa Diallo" {
			t.Fatalf("résultat inattendu: %+v", res)
		}
		if res.Token == "" {
			t.Fatal("jeton vide")
		}
		if got := sessions.Resolve(ctx, res.Token); got == nil || got.UserID != u.ID.String() {
			t.Fatalf("session non ouverte: %+v", got)
		}
	}
}

func TestLoginIdentifiantsInvalides(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(t, testUser(t, "motdepasse"))

	if _, err := svc.Login(ctx, "inconnu", "motdepasse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("identifiant inconnu: attendu ErrInvalidCredentials, obtenu %v", err)
	}
	if _, err := svc.Login(ctx, "adiallo", "mauvais"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("mauvais mot de passe: attendu ErrInvalidCredentials, obtenu %v", err)
	}
}

func TestLoginCompteDesactive(t *testing.T) {
	ctx := context.Background()
	u := testUser(t, "motdepasse")
	u.Statut = "SUSPENDU"
	svc, _, _ := newAuthFixture(t, u)

	if _, err := svc.Login(ctx, "adiallo", "motdepasse"); !errors.Is(err, ErrCompteDesactive) {
		t.Fatalf("attendu ErrCompteDesactive, obtenu %v", err)
	}
}

func TestLogoutFermeLaSession(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions := newAuthFixture(t, testUser(t, "motdepasse"))

	res, err := svc.Login(ctx, "adiallo", "motdepasse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, res.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got := sessions.Resolve(ctx, res.Token); got != nil {
		t.Fatalf("session encore active: %+v", got)
	}
}

func TestForgotPasswordSansEnumeration(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(t, testUser(t, "motdepasse"))

	// email inconnu: pas d'erreur, pas de jeton
	token, err := svc.ForgotPassword(ctx, "personne@example.sn")
	if err != nil || token != "" {
		t.Fatalf("email inconnu: attendu silence, obtenu (%q, %v)", token, err)
	}

	token, err = svc.ForgotPassword(ctx, "awa.diallo@example.sn")
	if err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if token == "" {
		t.Fatal("jeton attendu pour un email connu")
	}
	if err := svc.ValidateResetToken(ctx, token); err != nil {
		t.Fatalf("jeton fraîchement émis invalide: %v", err)
	}
}

func TestResetPasswordUsageUnique(t *testing.T) {
	ctx := context.Background()
	u := testUser(t, "motdepasse")
	svc, users, _ := newAuthFixture(t, u)

	token, err := svc.ForgotPassword(ctx, u.Email)
	if err != nil {
		t.Fatalf("forgot: %v", err)
	}

	if err := svc.ResetPassword(ctx, token, "court"); err == nil {
		t.Fatal("mot de passe trop court accepté")
	}

	if err := svc.ResetPassword(ctx, token, "nouveaumotdepasse"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	hash, ok := users.passwordUpdates[u.ID]
	if !ok {
		t.Fatal("mot de passe non mis à jour")
	}
	if match, _ := auth.Verify("nouveaumotdepasse", hash); !match {
		t.Fatal("le nouveau hash ne correspond pas au mot de passe")
	}

	// le jeton est consommé
	if err := svc.ResetPassword(ctx, token, "encoreunautre"); !errors.Is(err, auth.ErrResetInvalid) {
		t.Fatalf("réutilisation du jeton: attendu ErrResetInvalid, obtenu %v", err)
	}
	if err := svc.ValidateResetToken(ctx, token); !errors.Is(err, auth.ErrResetInvalid) {
		t.Fatalf("validation d'un jeton consommé: attendu ErrResetInvalid, obtenu %v", err)
	}
}
