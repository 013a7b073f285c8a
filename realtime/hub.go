// Package realtime рассылает события лобби подключенным по WebSocket
// клиентам. Комната — одно лобби; пустые комнаты удаляются.
package realtime

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
)

// Event — кадр, уходящий клиентам комнаты.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	LobbyID int         `json:"lobby_id"`
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run обслуживает регистрацию клиентов. Запускается одной горутиной
// на всё приложение.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.logger.Debug("realtime client joined", "room", client.room, "clients", len(h.rooms[client.room]))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, member := clients[client]; member {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// NotifyLobby реализует services.LobbyNotifier. Медленные клиенты
// пропускают кадр, а не тормозят остальных.
func (h *Hub) NotifyLobby(lobbyID int, event string, payload interface{}) {
	data, err := json.Marshal(Event{Type: event, Payload: payload, LobbyID: lobbyID})
	if err != nil {
		h.logger.Error("failed to marshal realtime event", "event", event, "error", err)
		return
	}

	room := roomKey(lobbyID)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		client.trySend(data)
	}
}

func roomKey(lobbyID int) string {
	return "lobby:" + strconv.Itoa(lobbyID)
}
