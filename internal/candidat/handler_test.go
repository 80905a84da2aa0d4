package candidat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sigepermis/api/internal/http/middleware"
	"github.com/sigepermis/api/internal/session"
)

func newTestRouter(stub *stubRepo) *chi.Mux {
	router := chi.NewRouter()
	NewHandler(NewService(stub)).RegisterRoutes(router)
	return router
}

func doRequest(router http.Handler, method, target, body string, sess *session.Session) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if sess != nil {
		ctx := context.WithValue(req.Context(), middleware.ContextKeySession, sess)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListPagineEtFiltre(t *testing.T) {
	stub := newStubRepo()
	for i := 0; i < 12; i++ {
		c := dossier("INS-001")
		c.ID = uuid.New()
		stub.candidats[c.ID] = c
	}
	router := newTestRouter(stub)

	rec := doRequest(router, http.MethodGet, "/?page=2&size=5", "", sessionAdmin())
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Items      []Candidat `json:"items"`
		Total      int        `json:"total"`
		TotalPages int        `json:"totalPages"`
		Pages      []int      `json:"pages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("décodage: %v", err)
	}
	if resp.Total != 12 || resp.TotalPages != 3 || len(resp.Items) != 5 {
		t.Fatalf("pagination inattendue: total=%d pages=%d items=%d", resp.Total, resp.TotalPages, len(resp.Items))
	}
	if len(resp.Pages) != 3 || resp.Pages[0] != 1 {
		t.Fatalf("fenêtre de pages inattendue: %v", resp.Pages)
	}

	// la recherche réduit le total
	rec = doRequest(router, http.MethodGet, "/?q=introuvable", "", sessionAdmin())
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("décodage: %v", err)
	}
	if resp.Total != 0 || len(resp.Items) != 0 {
		t.Fatalf("recherche sans correspondance devrait être vide: %+v", resp)
	}
}

func TestCreateValidation(t *testing.T) {
	router := newTestRouter(newStubRepo())

	rec := doRequest(router, http.MethodPost, "/", `{"nom":"","prenom":"X","typePermis":"B","numeroDossier":"D-1"}`, sessionAdmin())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("nom vide accepté: status %d", rec.Code)
	}

	rec = doRequest(router, http.MethodPost, "/", `{"nom":"Fall","prenom":"Ibrahima","typePermis":"B","numeroDossier":"D-1"}`, sessionAdmin())
	if rec.Code != http.StatusCreated {
		t.Fatalf("création refusée: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestCreatePanneDepotRenvoieInternal(t *testing.T) {
	stub := newStubRepo()
	stub.createErr = errors.New(`ERROR: duplicate key value violates unique constraint "candidats_numero_dossier_key" (SQLSTATE 23505)`)
	router := newTestRouter(stub)

	rec := doRequest(router, http.MethodPost, "/", `{"nom":"Fall","prenom":"Ibrahima","typePermis":"B","numeroDossier":"D-1"}`, sessionAdmin())
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("attendu 500, obtenu %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "SQLSTATE") {
		t.Fatalf("le texte brut du pilote ne doit pas sortir: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"INTERNAL"`) {
		t.Fatalf("code INTERNAL attendu: %s", rec.Body.String())
	}
}

func TestDeleteForbiddenRenvoie403(t *testing.T) {
	c := dossier("INS-002")
	stub := newStubRepo(c)
	router := newTestRouter(stub)

	rec := doRequest(router, http.MethodDelete, "/"+c.ID.String(), "", sessionInspecteur("INS-001"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("attendu 403, obtenu %d: %s", rec.Code, rec.Body.String())
	}
	if stub.deleteCalls != 0 {
		t.Fatalf("le dépôt ne doit pas être sollicité, obtenu %d", stub.deleteCalls)
	}
}

func TestAssignerInspecteurInconnu(t *testing.T) {
	stub := newStubRepo()
	router := newTestRouter(stub)

	rec := doRequest(router, http.MethodPost, "/"+uuid.NewString()+"/assigner-inspecteur/INS-404", "", sessionAdmin())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("attendu 404, obtenu %d", rec.Code)
	}
}
