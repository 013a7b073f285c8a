package handlers

import (
	"errors"
	"net/http"

	"github.com/ladder-gg/ladder/config"
	"github.com/ladder-gg/ladder/middleware"
	"github.com/ladder-gg/ladder/services"
)

type SearchHandler struct {
	searchService services.SearchService
	catalog       *config.Catalog
}

func NewSearchHandler(ss services.SearchService, catalog *config.Catalog) *SearchHandler {
	return &SearchHandler{searchService: ss, catalog: catalog}
}

// FindHandler обрабатывает GET /search?mode=1v1&server=Majestic%20RP%20%231
func (h *SearchHandler) FindHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to search")
		return
	}

	mode := r.URL.Query().Get("mode")
	server := r.URL.Query().Get("server")
	if mode == "" || server == "" {
		badRequestResponse(w, r, errors.New("mode and server query parameters are required"))
		return
	}

	result, err := h.searchService.FindCandidates(r.Context(), playerID, mode, server)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"search": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CatalogHandler обрабатывает GET /catalog — режимы и серверы для клиента.
func (h *SearchHandler) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{
		"modes":   h.catalog.Modes(),
		"servers": h.catalog.Servers(),
	}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
