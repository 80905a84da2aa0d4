package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sigepermis/api/internal/auth"
	"github.com/sigepermis/api/internal/authz"
	"github.com/sigepermis/api/internal/candidat"
	"github.com/sigepermis/api/internal/categorie"
	"github.com/sigepermis/api/internal/config"
	"github.com/sigepermis/api/internal/evaluation"
	httpmiddleware "github.com/sigepermis/api/internal/http/middleware"
	"github.com/sigepermis/api/internal/role"
	"github.com/sigepermis/api/internal/service"
	"github.com/sigepermis/api/internal/session"
	"github.com/sigepermis/api/internal/typepermis"
	"github.com/sigepermis/api/internal/user"
	"github.com/sigepermis/api/internal/web"
)

// NewRouter assemble dépôts, services et routes. Chaque route de
// l'interface authentifiée porte l'exigence de rôle annotée dans
// authz.Routes.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, sessions *session.Store, jwtManager *auth.JWTManager, authService *service.AuthService) http.Handler {
	userRepo := user.NewRepository(pool)
	candidatRepo := candidat.NewRepository(pool)
	evaluationRepo := evaluation.NewRepository(pool)
	typePermisRepo := typepermis.NewRepository(pool)
	categorieRepo := categorie.NewRepository(pool)
	roleRepo := role.NewRepository(pool)

	userService := user.NewService(userRepo)
	candidatService := candidat.NewService(candidatRepo)
	evaluationService := evaluation.NewService(evaluationRepo, redisClient)
	typePermisService := typepermis.NewService(typePermisRepo)
	categorieService := categorie.NewService(categorieRepo)
	roleService := role.NewService(roleRepo, userRepo)
	inspecteurService := user.NewInspecteurService(userRepo, candidatRepo, evaluationService)

	authHandler := NewAuthHandler(authService)
	userHandler := user.NewHandler(userService)
	inspecteurHandler := user.NewInspecteurHandler(inspecteurService)
	candidatHandler := candidat.NewHandler(candidatService)
	evaluationHandler := evaluation.NewHandler(evaluationService)
	typePermisHandler := typepermis.NewHandler(typePermisService)
	categorieHandler := categorie.NewHandler(categorieService)
	roleHandler := role.NewHandler(roleService)
	dashboardHandler := NewDashboardHandler(candidatRepo, inspecteurService, evaluationService, typePermisService)

	publicLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst)
	authLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(publicLimiter))

		public.Get("/health", health)
		public.Get("/ready", ready(pool, redisClient))

		public.Route("/auth", authHandler.RegisterRoutes)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(jwtManager, sessions))
		private.Use(httpmiddleware.UserRateLimit(authLimiter))

		private.With(httpmiddleware.Require(authz.Routes["dashboard"]...)).
			Get("/dashboard/overview", dashboardHandler.Overview)

		private.Route("/candidats", func(cr chi.Router) {
			cr.Use(httpmiddleware.Require(authz.Routes["candidats"]...))
			candidatHandler.RegisterRoutes(cr)
		})
		private.Route("/evaluations", func(er chi.Router) {
			er.Use(httpmiddleware.Require(authz.Routes["evaluations"]...))
			evaluationHandler.RegisterRoutes(er)
		})
		private.Route("/users", func(ur chi.Router) {
			ur.Use(httpmiddleware.RequireAdmin)
			userHandler.RegisterRoutes(ur)
		})
		private.Route("/inspecteurs", func(ir chi.Router) {
			ir.Use(httpmiddleware.Require(authz.Routes["inspecteurs"]...))
			inspecteurHandler.RegisterRoutes(ir)
		})
		private.Route("/types-permis", func(tr chi.Router) {
			tr.Use(httpmiddleware.Require(authz.Routes["types-permis"]...))
			typePermisHandler.RegisterRoutes(tr)
		})
		private.Route("/categorie-evaluation-permis", func(gr chi.Router) {
			gr.Use(httpmiddleware.Require(authz.Routes["categories-evaluation"]...))
			categorieHandler.RegisterRoutes(gr)
		})
		private.Route("/roles", func(rr chi.Router) {
			rr.Use(httpmiddleware.Require(authz.Routes["roles"]...))
			roleHandler.RegisterRoutes(rr)
		})
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	web.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func ready(pool *pgxpool.Pool, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			web.WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "base de données indisponible", nil)
			return
		}
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				web.WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "redis indisponible", nil)
				return
			}
		}
		web.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
