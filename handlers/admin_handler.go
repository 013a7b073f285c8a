package handlers

import (
	"net/http"
	"time"

	"github.com/ladder-gg/ladder/middleware"
	"github.com/ladder-gg/ladder/models"
	"github.com/ladder-gg/ladder/repositories"
	"github.com/ladder-gg/ladder/services"
)

type AdminHandler struct {
	moderationService services.ModerationService
}

func NewAdminHandler(ms services.ModerationService) *AdminHandler {
	return &AdminHandler{moderationService: ms}
}

func adminFromContext(w http.ResponseWriter, r *http.Request) (int, models.PrivilegeLevel, bool) {
	adminID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return 0, 0, false
	}
	privilege, err := middleware.GetPrivilegeFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return 0, 0, false
	}
	return adminID, privilege, true
}

// BanPlayerHandler обрабатывает POST /admin/players/{playerID}/ban
func (h *AdminHandler) BanPlayerHandler(w http.ResponseWriter, r *http.Request) {
	adminID, privilege, ok := adminFromContext(w, r)
	if !ok {
		return
	}

	targetID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Reason          string `json:"reason"`
		Type            string `json:"type"`
		DurationMinutes int    `json:"duration_minutes"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	ban, err := h.moderationService.BanPlayer(r.Context(), adminID, privilege, services.BanParams{
		TargetID: targetID,
		Reason:   input.Reason,
		Type:     models.BanType(input.Type),
		Duration: time.Duration(input.DurationMinutes) * time.Minute,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"ban": ban}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UnbanPlayerHandler обрабатывает POST /admin/players/{playerID}/unban
func (h *AdminHandler) UnbanPlayerHandler(w http.ResponseWriter, r *http.Request) {
	adminID, privilege, ok := adminFromContext(w, r)
	if !ok {
		return
	}

	targetID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.moderationService.UnbanPlayer(r.Context(), adminID, privilege, targetID, input.Reason); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetPrivilegeHandler обрабатывает PUT /admin/players/{playerID}/privilege
func (h *AdminHandler) SetPrivilegeHandler(w http.ResponseWriter, r *http.Request) {
	adminID, privilege, ok := adminFromContext(w, r)
	if !ok {
		return
	}

	targetID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Level  int    `json:"level"`
		Reason string `json:"reason"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.moderationService.SetPrivilegeLevel(r.Context(), adminID, privilege, targetID, models.PrivilegeLevel(input.Level), input.Reason); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LobbyBanHandler обрабатывает POST /admin/lobbies/{lobbyID}/bans/{playerID}
func (h *AdminHandler) LobbyBanHandler(w http.ResponseWriter, r *http.Request) {
	adminID, privilege, ok := adminFromContext(w, r)
	if !ok {
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

	var input struct {
		Reason string `json:"reason"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.moderationService.BanFromLobby(r.Context(), adminID, privilege, lobbyID, targetID, input.Reason); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LobbyUnbanHandler обрабатывает DELETE /admin/lobbies/{lobbyID}/bans/{playerID}
func (h *AdminHandler) LobbyUnbanHandler(w http.ResponseWriter, r *http.Request) {
	adminID, privilege, ok := adminFromContext(w, r)
	if !ok {
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

	var input struct {
		Reason string `json:"reason"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.moderationService.UnbanFromLobby(r.Context(), adminID, privilege, lobbyID, targetID, input.Reason); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteLobbyHandler обрабатывает DELETE /admin/lobbies/{lobbyID}
func (h *AdminHandler) DeleteLobbyHandler(w http.ResponseWriter, r *http.Request) {
	adminID, privilege, ok := adminFromContext(w, r)
	if !ok {
		return
	}

	lobbyID, err := getIDFromURL(r, "lobbyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.moderationService.DeleteLobby(r.Context(), adminID, privilege, lobbyID, input.Reason); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListActionsHandler обрабатывает GET /admin/actions — журнал только
// для чтения.
func (h *AdminHandler) ListActionsHandler(w http.ResponseWriter, r *http.Request) {
	filter := repositories.AdminActionFilter{
		AdminID:        queryInt(r, "admin_id", "0"),
		TargetPlayerID: queryInt(r, "target_player_id", "0"),
		Limit:          queryInt(r, "limit", "50"),
		Offset:         queryInt(r, "offset", "0"),
	}

	actions, err := h.moderationService.ListAdminActions(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"actions": actions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
