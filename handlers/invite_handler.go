package handlers

import (
	"net/http"
	"time"

	"github.com/ladder-gg/ladder/middleware"
	"github.com/ladder-gg/ladder/services"
)

type InviteHandler struct {
	inviteService services.InviteService
}

func NewInviteHandler(is services.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: is}
}

// EnsureCodeHandler обрабатывает POST /lobbies/{lobbyID}/invite.
// Идемпотентен: повторный вызов возвращает уже существующий код.
func (h *InviteHandler) EnsureCodeHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		TTLSeconds int `json:"ttl_seconds"`
		MaxUses    int `json:"max_uses"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	invite, err := h.inviteService.EnsureInviteCode(r.Context(), lobbyID, playerID, services.InviteOptions{
		TTL:     time.Duration(input.TTLSeconds) * time.Second,
		MaxUses: input.MaxUses,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"invite": invite}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
