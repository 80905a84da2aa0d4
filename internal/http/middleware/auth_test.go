package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sigepermis/api/internal/auth"
	"github.com/sigepermis/api/internal/session"
)

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

func fixture(t *testing.T, role string) (http.Handler, string) {
	t.Helper()

	jwtManager := auth.NewJWTManager("secret-de-test-suffisamment-long-0000", time.Hour)
	sessions := session.NewStore(&stubRedis{}, time.Hour)

	token, _, err := jwtManager.GenerateAccessToken("u-1", role, "INS-001", "Awa Diallo")
	if err != nil {
		t.Fatalf("jeton: %v", err)
	}
	if err := sessions.Put(context.Background(), &session.Session{
		UserID: "u-1", Matricule: "INS-001", Role: role, Token: token,
	}); err != nil {
		t.Fatalf("session: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := GetSession(r.Context())
		if sess == nil {
			t.Error("session absente du contexte")
		}
		w.WriteHeader(http.StatusOK)
	})

	return Auth(jwtManager, sessions)(Require("ADMIN")(next)), token
}

func redirectOf(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error struct {
			Redirect string `json:"redirect"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("décodage: %v", err)
	}
	return payload.Error.Redirect
}

func TestAuthSansJeton(t *testing.T) {
	handler, _ := fixture(t, "ADMIN")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("attendu 401, obtenu %d", rec.Code)
	}
	if got := redirectOf(t, rec.Body.Bytes()); got != "/login" {
		t.Fatalf("redirection attendue /login, obtenu %q", got)
	}
}

func TestAuthJetonValideRoleSuffisant(t *testing.T) {
	handler, token := fixture(t, "ADMIN")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("attendu 200, obtenu %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRequireRoleInsuffisant(t *testing.T) {
	handler, token := fixture(t, "INSPECTEUR")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("attendu 403, obtenu %d", rec.Code)
	}
	if got := redirectOf(t, rec.Body.Bytes()); got != "/dashboard" {
		t.Fatalf("redirection attendue /dashboard, obtenu %q", got)
	}
}

func TestLoggingJournaliseLeMatricule(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	jwtManager := auth.NewJWTManager("secret-de-test-suffisamment-long-0000", time.Hour)
	sessions := session.NewStore(&stubRedis{}, time.Hour)

	token, _, err := jwtManager.GenerateAccessToken("u-1", "ADMIN", "INS-042", "Awa Diallo")
	if err != nil {
		t.Fatalf("jeton: %v", err)
	}
	if err := sessions.Put(context.Background(), &session.Session{
		UserID: "u-1", Matricule: "INS-042", Role: "ADMIN", Token: token,
	}); err != nil {
		t.Fatalf("session: %v", err)
	}

	// Logging est monté au-dessus de Auth, comme dans le routeur.
	handler := Logging(Auth(jwtManager, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(buf.String(), `"matricule":"INS-042"`) {
		t.Fatalf("matricule absent du log: %s", buf.String())
	}
}

func TestAuthSessionFermee(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret-de-test-suffisamment-long-0000", time.Hour)
	sessions := session.NewStore(&stubRedis{}, time.Hour)

	// jeton signé mais aucune session persistée: la déconnexion a eu lieu
	token, _, err := jwtManager.GenerateAccessToken("u-1", "ADMIN", "INS-001", "Awa Diallo")
	if err != nil {
		t.Fatalf("jeton: %v", err)
	}

	handler := Auth(jwtManager, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("attendu 401, obtenu %d", rec.Code)
	}
}
