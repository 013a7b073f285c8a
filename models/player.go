package models

import "time"

// PrivilegeLevel — упорядоченная ступень модераторских прав.
// Сравнение уровней делается по числовому значению, не по имени.
type PrivilegeLevel int

const (
	PrivilegeUser        PrivilegeLevel = 0
	PrivilegeHelper      PrivilegeLevel = 1
	PrivilegeJunior      PrivilegeLevel = 2
	PrivilegeAdmin       PrivilegeLevel = 3
	PrivilegeCheatHunter PrivilegeLevel = 4
	PrivilegeDeputy      PrivilegeLevel = 5
	PrivilegeOwner       PrivilegeLevel = 6
)

func (p PrivilegeLevel) String() string {
	switch p {
	case PrivilegeHelper:
		return "HELPER"
	case PrivilegeJunior:
		return "JUNIOR"
	case PrivilegeAdmin:
		return "ADMIN"
	case PrivilegeCheatHunter:
		return "CHEATHUNTER"
	case PrivilegeDeputy:
		return "DEP"
	case PrivilegeOwner:
		return "OWNER"
	default:
		return "USER"
	}
}

func (p PrivilegeLevel) Valid() bool {
	return p >= PrivilegeUser && p <= PrivilegeOwner
}

// Capability predicates per privileged action.

func (p PrivilegeLevel) CanReviewSubmissions() bool { return p >= PrivilegeHelper }

func (p PrivilegeLevel) CanDeleteLobbies() bool { return p >= PrivilegeHelper }

func (p PrivilegeLevel) CanBanPlayers() bool { return p >= PrivilegeJunior }

func (p PrivilegeLevel) CanBanPermanently() bool { return p >= PrivilegeAdmin }

func (p PrivilegeLevel) CanUnbanPlayers() bool { return p >= PrivilegeAdmin }

func (p PrivilegeLevel) CanAssignRoles() bool { return p >= PrivilegeOwner }

// Player — игрок с рейтингом GGP. Учетные данные (email, пароль) живут
// во внешнем identity-сервисе; этот движок хранит только игровой профиль.
type Player struct {
	ID         int            `json:"id"`
	Username   string         `json:"username"`
	Rating     int            `json:"rating"`
	Level      int            `json:"level"`
	Privilege  PrivilegeLevel `json:"privilege"`
	IsBanned   bool           `json:"is_banned"`
	BanExpires *time.Time     `json:"ban_expires,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Suspended reports whether the player is currently locked out: a permanent
// ban has no expiry, a temporary one counts until its timestamp passes.
func (p *Player) Suspended(now time.Time) bool {
	if !p.IsBanned {
		return false
	}
	if p.BanExpires == nil {
		return true
	}
	return now.Before(*p.BanExpires)
}
