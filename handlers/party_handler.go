package handlers

import (
	"net/http"

	"github.com/ladder-gg/ladder/middleware"
	"github.com/ladder-gg/ladder/services"
)

type PartyHandler struct {
	partyService services.PartyService
}

func NewPartyHandler(ps services.PartyService) *PartyHandler {
	return &PartyHandler{partyService: ps}
}

// CreateHandler обрабатывает POST /parties
func (h *PartyHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	leaderID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create party")
		return
	}

	var input struct {
		Mode   string `json:"mode"`
		Server string `json:"server"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	party, err := h.partyService.CreateParty(r.Context(), leaderID, input.Mode, input.Server)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"party": party}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /parties/{partyID}
func (h *PartyHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	partyID, err := getIDFromURL(r, "partyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	party, err := h.partyService.GetParty(r.Context(), partyID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"party": party}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// InviteHandler обрабатывает POST /parties/{partyID}/members
func (h *PartyHandler) InviteHandler(w http.ResponseWriter, r *http.Request) {
	leaderID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	partyID, err := getIDFromURL(r, "partyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		PlayerID int `json:"player_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.partyService.InviteToParty(r.Context(), partyID, leaderID, input.PlayerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LeaveHandler обрабатывает POST /parties/{partyID}/leave
func (h *PartyHandler) LeaveHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	partyID, err := getIDFromURL(r, "partyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.partyService.LeaveParty(r.Context(), partyID, playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
