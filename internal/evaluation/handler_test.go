package evaluation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sigepermis/api/internal/http/middleware"
	"github.com/sigepermis/api/internal/scoring"
	"github.com/sigepermis/api/internal/session"
)

func statsRequest(t *testing.T, sess *session.Session) *httptest.ResponseRecorder {
	t.Helper()
	stub := &stubRepo{evaluations: []Evaluation{
		eval(t, "INS-001", scoring.StatutAdmis, `null`),
	}}
	router := chi.NewRouter()
	NewHandler(NewService(stub, nil)).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	if sess != nil {
		req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeySession, sess))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStatsReserveAuxAdmins(t *testing.T) {
	rec := statsRequest(t, &session.Session{UserID: "u-1", Role: "INSPECTEUR", Matricule: "INS-001"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("attendu 403 pour un inspecteur, obtenu %d: %s", rec.Code, rec.Body.String())
	}

	rec = statsRequest(t, &session.Session{UserID: "u-0", Role: "ADMIN"})
	if rec.Code != http.StatusOK {
		t.Fatalf("attendu 200 pour un admin, obtenu %d: %s", rec.Code, rec.Body.String())
	}
}
