package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ladder-gg/ladder/realtime"
	"github.com/ladder-gg/ladder/services"
)

type RealtimeHandler struct {
	hub          *realtime.Hub
	lobbyService services.LobbyService
}

func NewRealtimeHandler(hub *realtime.Hub, ls services.LobbyService) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, lobbyService: ls}
}

// SubscribeHandler обрабатывает GET /lobbies/{lobbyID}/ws — апгрейд до
// WebSocket и подписка на события лобби.
func (h *RealtimeHandler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Подписка только на существующее лобби.
	if _, err := h.lobbyService.Get(r.Context(), lobbyID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// При отказе апгрейда upgrader уже ответил клиенту сам.
	if err := h.hub.ServeWS(w, r, lobbyID); err != nil {
		slog.Debug("websocket upgrade failed", "lobby_id", lobbyID, "error", err)
	}
}
