package authz

import (
	"github.com/sigepermis/api/internal/session"
)

// Rôles reconnus pour le contrôle d'accès.
const (
	RoleAdmin      = "ADMIN"
	RoleInspecteur = "INSPECTEUR"
)

// Cibles de redirection renvoyées avec les refus.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Verdict est l'issue d'une tentative de navigation.
type Verdict int

const (
	// Allow autorise l'accès à la route.
	Allow Verdict = iota
	// RedirectLogin renvoie vers l'écran de connexion (pas d'utilisateur).
	RedirectLogin
	// RedirectDashboard renvoie vers le tableau de bord (rôle insuffisant).
	RedirectDashboard
)

// Decision porte le verdict et la cible de redirection éventuelle.
type Decision struct {
	Verdict  Verdict
	Redirect string
}

// CanEnter évalue une tentative de navigation de façon purement locale:
// aucun appel réseau, le rôle utilisé est celui de la session en cache.
// Une liste de rôles nil désigne une route sans exigence de rôle.
func CanEnter(requiredRoles []string, user *session.Session) Decision {
	if user == nil {
		return Decision{Verdict: RedirectLogin, Redirect: LoginPath}
	}
	if requiredRoles == nil {
		return Decision{Verdict: Allow}
	}
	for _, role := range requiredRoles {
		if user.Role == role {
			return Decision{Verdict: Allow}
		}
	}
	return Decision{Verdict: RedirectDashboard, Redirect: DashboardPath}
}

// Routes annote chaque route de l'interface authentifiée avec ses rôles
// requis. nil signifie accessible à tout utilisateur connecté.
var Routes = map[string][]string{
	"dashboard":             nil,
	"candidats":             nil,
	"evaluations":           nil,
	"roles":                 {RoleAdmin},
	"inspecteurs":           {RoleAdmin},
	"types-permis":          {RoleAdmin},
	"categories-evaluation": {RoleAdmin},
}
