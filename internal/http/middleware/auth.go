package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sigepermis/api/internal/auth"
	"github.com/sigepermis/api/internal/authz"
	"github.com/sigepermis/api/internal/session"
)

type contextKey string

// ContextKeySession porte la session résolue de la requête.
const ContextKeySession contextKey = "session"

const contextKeySessionCapture contextKey = "sessionCapture"

// sessionCapture remonte la session résolue par Auth vers Logging, qui
// est monté plus haut dans la chaîne et ne voit pas le contexte dérivé.
type sessionCapture struct {
	sess *session.Session
}

// Auth valide le JWT porteur, résout la session persistée et l'injecte
// dans le contexte. Un jeton signé mais sans session active est refusé:
// la déconnexion invalide le jeton avant son expiration.
func Auth(jwtManager *auth.JWTManager, sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeAuthError(w, http.StatusUnauthorized, "AUTH", "jeton absent")
				return
			}

			if _, err := jwtManager.ParseAndValidate(parts[1]); err != nil {
				writeAuthError(w, http.StatusUnauthorized, "AUTH", "jeton invalide")
				return
			}

			sess := sessions.Resolve(r.Context(), parts[1])
			if sess == nil {
				writeAuthError(w, http.StatusUnauthorized, "AUTH", "session expirée")
				return
			}

			if capture, ok := r.Context().Value(contextKeySessionCapture).(*sessionCapture); ok {
				capture.sess = sess
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession récupère la session du contexte.
func GetSession(ctx context.Context) *session.Session {
	val, _ := ctx.Value(ContextKeySession).(*session.Session)
	return val
}

// Require évalue la garde de rôle pour l'ensemble requis. nil autorise
// toute session authentifiée.
func Require(requiredRoles ...string) func(http.Handler) http.Handler {
	var roles []string
	if requiredRoles != nil {
		roles = append(roles, requiredRoles...)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := authz.CanEnter(roles, GetSession(r.Context()))
			switch decision.Verdict {
			case authz.Allow:
				next.ServeHTTP(w, r)
			case authz.RedirectLogin:
				writeAuthError(w, http.StatusUnauthorized, "AUTH", "authentification requise")
			default:
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "rôle insuffisant")
			}
		})
	}
}

// RequireAdmin garde les routes réservées aux administrateurs.
func RequireAdmin(next http.Handler) http.Handler {
	return Require(authz.RoleAdmin)(next)
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	redirect := authz.LoginPath
	if status == http.StatusForbidden {
		redirect = authz.DashboardPath
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":     code,
			"message":  message,
			"redirect": redirect,
		},
	})
}
