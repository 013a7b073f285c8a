package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации
	ErrValidationFailed     = errors.New("validation failed")
	ErrInvalidMode          = errors.New("unknown game mode")
	ErrInvalidServer        = errors.New("unknown game server")
	ErrLobbyNameTooShort    = errors.New("lobby name must be at least 3 characters")
	ErrInvalidCapacity      = errors.New("lobby capacity must be between 2 and 10")
	ErrInvalidOutcome       = errors.New("result must be win or loss")
	ErrInvalidPrivilege     = errors.New("invalid privilege level")
	ErrReasonRequired       = errors.New("reason is required")
	ErrInvalidBanDuration   = errors.New("ban duration must be positive")
	ErrMessageEmpty         = errors.New("message must not be empty")
	ErrEvidenceUnavailable  = errors.New("evidence storage is not configured")

	// Ошибки конфликтов и бизнес-правил
	ErrLobbyFull           = errors.New("lobby is full")
	ErrLobbyStarted        = errors.New("lobby has already started")
	ErrLobbyNotStarted     = errors.New("lobby has not started yet")
	ErrWrongPassword       = errors.New("wrong lobby password")
	ErrInviteInvalid       = errors.New("invite code does not belong to this lobby")
	ErrInviteExpired       = errors.New("invite code has expired")
	ErrInviteExhausted     = errors.New("invite code use limit reached")
	ErrPartyFull           = errors.New("party is full")
	ErrAlreadyGrouped      = errors.New("player is already in a party or lobby of this mode")
	ErrSubmissionConflict  = errors.New("lobby already has a pending submission")
	ErrSubmissionReviewed  = errors.New("submission has already been reviewed")

	// Ошибки авторизации и доступа
	ErrForbiddenOperation     = errors.New("operation not allowed for the current player")
	ErrLobbyBanned            = errors.New("player is banned from this lobby")
	ErrPlayerSuspended        = errors.New("player account is suspended")
	ErrNotLobbyMember         = errors.New("player is not a member of this lobby")
	ErrNotLobbyCreator        = errors.New("only the lobby creator can perform this action")
	ErrNotPartyLeader         = errors.New("only the party leader can perform this action")
	ErrInsufficientPrivilege  = errors.New("insufficient privilege level for this action")

	// Ошибки, специфичные для сущностей
	ErrPlayerNotFound     = errors.New("player not found")
	ErrLobbyNotFound      = errors.New("lobby not found")
	ErrPartyNotFound      = errors.New("party not found")
	ErrInviteNotFound     = errors.New("invite not found")
	ErrSubmissionNotFound = errors.New("result submission not found")
)
