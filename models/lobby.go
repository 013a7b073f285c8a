package models

import "time"

// LobbyStatus представляет статусы лобби, соответствующие ENUM в БД.
type LobbyStatus string

const (
	LobbyStatusOpen      LobbyStatus = "open"
	LobbyStatusFull      LobbyStatus = "full"
	LobbyStatusStarted   LobbyStatus = "started"
	LobbyStatusFinished  LobbyStatus = "finished"
	LobbyStatusCancelled LobbyStatus = "cancelled"
)

// Joinable — статусы, при которых лобби ещё принимает игроков.
func (s LobbyStatus) Joinable() bool {
	return s == LobbyStatusOpen
}

// Terminal статусы: лобби удаляется сразу при входе в них.
func (s LobbyStatus) Terminal() bool {
	return s == LobbyStatusFinished || s == LobbyStatusCancelled
}

// Lobby — игровая комната с ограниченным жизненным циклом.
// PasswordHash хранится только для приватных лобби (bcrypt).
type Lobby struct {
	ID             int         `json:"id" db:"id"`
	Name           string      `json:"name" db:"name"`
	Description    *string     `json:"description,omitempty" db:"description"`
	CreatorID      int         `json:"creator_id" db:"creator_id"`
	Mode           string      `json:"mode" db:"mode"`
	Server         string      `json:"server" db:"server"`
	IsPublic       bool        `json:"is_public" db:"is_public"`
	PasswordHash   *string     `json:"-" db:"password_hash"`
	MaxPlayers     int         `json:"max_players" db:"max_players"`
	CurrentPlayers int         `json:"current_players" db:"current_players"`
	Status         LobbyStatus `json:"status" db:"status"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Creator *Player       `json:"creator,omitempty" db:"-"`
	Members []LobbyMember `json:"members,omitempty" db:"-"`
}

// LobbyMember — активное членство игрока в лобби, уникально по (lobby, player).
type LobbyMember struct {
	ID       int       `json:"id" db:"id"`
	LobbyID  int       `json:"lobby_id" db:"lobby_id"`
	PlayerID int       `json:"player_id" db:"player_id"`
	Team     int       `json:"team" db:"team"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}

// LobbyBan навсегда закрывает игроку вход в конкретное лобби.
type LobbyBan struct {
	ID        int       `json:"id" db:"id"`
	LobbyID   int       `json:"lobby_id" db:"lobby_id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	AdminID   int       `json:"admin_id" db:"admin_id"`
	Reason    string    `json:"reason" db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LobbyMessage — непрозрачная запись чата; движок её только хранит.
type LobbyMessage struct {
	ID        int       `json:"id" db:"id"`
	LobbyID   int       `json:"lobby_id" db:"lobby_id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
