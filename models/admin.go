package models

import (
	"encoding/json"
	"time"
)

// BanType — тип глобального бана.
type BanType string

const (
	BanTypeTemporary BanType = "temporary"
	BanTypePermanent BanType = "permanent"
)

// PlayerBan — глобальный бан игрока, выданный модератором.
type PlayerBan struct {
	ID        int        `json:"id" db:"id"`
	PlayerID  int        `json:"player_id" db:"player_id"`
	AdminID   int        `json:"admin_id" db:"admin_id"`
	Reason    string     `json:"reason" db:"reason"`
	Type      BanType    `json:"type" db:"ban_type"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// AdminAction — неизменяемая запись в журнале привилегированных действий.
// Только append; путей обновления и удаления нет.
type AdminAction struct {
	ID             int             `json:"id" db:"id"`
	AdminID        int             `json:"admin_id" db:"admin_id"`
	Action         string          `json:"action" db:"action"`
	TargetPlayerID int             `json:"target_player_id" db:"target_player_id"`
	Reason         *string         `json:"reason,omitempty" db:"reason"`
	Details        json.RawMessage `json:"details,omitempty" db:"details"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Виды действий, попадающие в журнал.
const (
	ActionBan              = "ban"
	ActionUnban            = "unban"
	ActionRoleChange       = "role_change"
	ActionLobbyBan         = "lobby_ban"
	ActionLobbyUnban       = "lobby_unban"
	ActionLobbyDelete      = "lobby_delete"
	ActionSubmissionReview = "submission_review"
)
