package handlers

import (
	"net/http"

	"github.com/ladder-gg/ladder/middleware"
	"github.com/ladder-gg/ladder/models"
	"github.com/ladder-gg/ladder/services"
)

type LobbyHandler struct {
	lobbyService services.LobbyService
}

func NewLobbyHandler(ls services.LobbyService) *LobbyHandler {
	return &LobbyHandler{lobbyService: ls}
}

// CreateHandler обрабатывает POST /lobbies
func (h *LobbyHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	creatorID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create lobby")
		return
	}

	var input struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Mode        string  `json:"mode"`
		Server      string  `json:"server"`
		Capacity    int     `json:"capacity"`
		IsPublic    bool    `json:"is_public"`
		Password    string  `json:"password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lobby, err := h.lobbyService.Create(r.Context(), creatorID, services.CreateLobbyParams{
		Name:        input.Name,
		Description: input.Description,
		Mode:        input.Mode,
		Server:      input.Server,
		Capacity:    input.Capacity,
		IsPublic:    input.IsPublic,
		Password:    input.Password,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"lobby": lobby}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /lobbies/{lobbyID}
func (h *LobbyHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lobby, err := h.lobbyService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"lobby": lobby}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /lobbies?status=open&limit=20&offset=0
func (h *LobbyHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	status := models.LobbyStatus(r.URL.Query().Get("status"))
	limit := queryInt(r, "limit", "20")
	offset := queryInt(r, "offset", "0")

	lobbies, err := h.lobbyService.ListPublic(r.Context(), status, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"lobbies": lobbies}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// JoinHandler обрабатывает POST /lobbies/{lobbyID}/join
func (h *LobbyHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to join lobby")
		return
	}

	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Password   string `json:"password"`
		InviteCode string `json:"invite_code"`
	}
	// Тело не обязательно: вход в открытое публичное лобби идёт без него.
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	outcome, err := h.lobbyService.Join(r.Context(), lobbyID, playerID, services.JoinCredentials{
		Password:   input.Password,
		InviteCode: input.InviteCode,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"lobby": outcome.Lobby, "rejoined": outcome.Rejoined}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaveHandler обрабатывает POST /lobbies/{lobbyID}/leave
func (h *LobbyHandler) LeaveHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := h.lobbyService.Leave(r.Context(), lobbyID, playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// KickHandler обрабатывает POST /lobbies/{lobbyID}/kick/{playerID}
func (h *LobbyHandler) KickHandler(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	targetID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.lobbyService.Kick(r.Context(), lobbyID, actorID, targetID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartHandler обрабатывает POST /lobbies/{lobbyID}/start
func (h *LobbyHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.lobbyService.Start(r.Context(), lobbyID, actorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelHandler обрабатывает DELETE /lobbies/{lobbyID}
func (h *LobbyHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.lobbyService.Cancel(r.Context(), lobbyID, actorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostMessageHandler обрабатывает POST /lobbies/{lobbyID}/messages
func (h *LobbyHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
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
		Text string `json:"text"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	message, err := h.lobbyService.PostMessage(r.Context(), lobbyID, playerID, input.Text)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"message": message}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMessagesHandler обрабатывает GET /lobbies/{lobbyID}/messages
func (h *LobbyHandler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	limit := queryInt(r, "limit", "50")

	messages, err := h.lobbyService.ListMessages(r.Context(), lobbyID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"messages": messages}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
