package models

import "time"

// Party — временная группа до формирования лобби. Ровно один лидер;
// размер ограничен размером команды выбранного режима.
type Party struct {
	ID        int       `json:"id" db:"id"`
	LeaderID  int       `json:"leader_id" db:"leader_id"`
	Mode      string    `json:"mode" db:"mode"`
	Server    string    `json:"server" db:"server"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Members []PartyMember `json:"members,omitempty" db:"-"`
}

// PartyMember уникален по (party, player).
type PartyMember struct {
	ID       int       `json:"id" db:"id"`
	PartyID  int       `json:"party_id" db:"party_id"`
	PlayerID int       `json:"player_id" db:"player_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}
