package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/sigepermis/api/internal/listing"
	"github.com/sigepermis/api/internal/repo"
	"github.com/sigepermis/api/internal/util"
)

// ErrorEnvelope normalise les réponses d'échec.
type ErrorEnvelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody décrit une erreur normalisée.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON écrit la charge utile de succès telle quelle.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError écrit l'enveloppe d'erreur normalisée.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Data:  nil,
		Error: &ErrorBody{Code: code, Message: message, Details: details},
	})
}

// WriteNotFoundOrInternal convertit les erreurs de dépôt en réponse. Le
// texte brut d'une erreur interne est journalisé mais jamais renvoyé.
func WriteNotFoundOrInternal(w http.ResponseWriter, err error) {
	if errors.Is(err, repo.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "enregistrement introuvable", nil)
		return
	}
	log.Error().Err(err).Msg("erreur interne")
	WriteError(w, http.StatusInternalServerError, "INTERNAL", "erreur interne", nil)
}

// WriteServiceError distingue les refus de validation des pannes. Une
// erreur de validation revient au client telle quelle en 400; tout le
// reste passe par WriteNotFoundOrInternal.
func WriteServiceError(w http.ResponseWriter, err error) {
	if util.IsValidation(err) {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	WriteNotFoundOrInternal(w, err)
}

// DecodeJSON lit un corps JSON en refusant les champs inconnus.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// PageParams porte les paramètres de liste q, page et size.
type PageParams struct {
	Query string
	Page  int
	Size  int
}

// ParsePageParams lit q, page et size avec des valeurs par défaut. Les
// pages commencent à 1; size est borné à 100.
func ParsePageParams(r *http.Request) PageParams {
	p := PageParams{Query: r.URL.Query().Get("q"), Page: 1, Size: 10}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && v > 0 {
		p.Size = v
	}
	if p.Size > 100 {
		p.Size = 100
	}
	return p
}

// PagedResponse est l'enveloppe des listes paginées.
type PagedResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int   `json:"total"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalPages int   `json:"totalPages"`
	Pages      []int `json:"pages"`
}

// WritePage filtre, pagine et écrit une liste. Une requête de recherche
// non vide ramène toujours à la page demandée dans la liste filtrée.
func WritePage[T any](w http.ResponseWriter, items []T, params PageParams, fields func(T) []string) {
	filtered := listing.Filter(items, params.Query, fields)
	totalPages := listing.TotalPages(len(filtered), params.Size)

	WriteJSON(w, http.StatusOK, PagedResponse[T]{
		Items:      listing.Paginate(filtered, params.Page, params.Size),
		Total:      len(filtered),
		Page:       params.Page,
		Size:       params.Size,
		TotalPages: totalPages,
		Pages:      listing.PageWindow(params.Page, totalPages),
	})
}
