package models

import "time"

// LobbyInvite — одноразовый к лобби привязанный инвайт-код (1:1).
// ExpiresAt и MaxUses опциональны; NULL означает без ограничения.
type LobbyInvite struct {
	ID        int        `json:"id" db:"id"`
	LobbyID   int        `json:"lobby_id" db:"lobby_id"`
	Code      string     `json:"code" db:"code"`
	CreatedBy int        `json:"created_by" db:"created_by"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	MaxUses   *int       `json:"max_uses,omitempty" db:"max_uses"`
	UsesCount int        `json:"uses_count" db:"uses_count"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Expired проверяется только в момент join; фонового удаления нет.
func (i *LobbyInvite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// Exhausted — лимит использований исчерпан.
func (i *LobbyInvite) Exhausted() bool {
	return i.MaxUses != nil && i.UsesCount >= *i.MaxUses
}
