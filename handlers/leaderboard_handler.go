package handlers

import (
	"net/http"

	"github.com/ladder-gg/ladder/leaderboard"
	"github.com/ladder-gg/ladder/middleware"
)

type LeaderboardHandler struct {
	board *leaderboard.Leaderboard
}

func NewLeaderboardHandler(board *leaderboard.Leaderboard) *LeaderboardHandler {
	return &LeaderboardHandler{board: board}
}

// TopHandler обрабатывает GET /leaderboard?limit=25&offset=0
func (h *LeaderboardHandler) TopHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", "25")
	offset := queryInt(r, "offset", "0")

	entries, err := h.board.Top(r.Context(), limit, offset)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MyRankHandler обрабатывает GET /leaderboard/me
func (h *LeaderboardHandler) MyRankHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	rank, ok := h.board.Rank(r.Context(), playerID)
	resp := jsonResponse{"ranked": ok}
	if ok {
		resp["rank"] = rank
	}

	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
