package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ladder-gg/ladder/models"
)

var (
	ErrInviteNotFound = errors.New("invite not found")
	// ErrInviteCodeConflict — коллизия случайного кода, можно перегенерировать.
	ErrInviteCodeConflict = errors.New("invite code conflict")
	// ErrInviteLobbyConflict — у лобби уже есть живой инвайт (уникальность по lobby_id).
	ErrInviteLobbyConflict = errors.New("lobby already has an invite code")
	ErrInviteLobbyInvalid  = errors.New("invite lobby conflict or invalid")
	// ErrInviteUsesExhausted — условный инкремент не прошёл: лимит достигнут.
	ErrInviteUsesExhausted = errors.New("invite uses exhausted")
)

type InviteRepository interface {
	// Create создает инвайт. Заполняет ID, UsesCount и CreatedAt.
	Create(ctx context.Context, exec SQLExecutor, invite *models.LobbyInvite) error

	GetByLobbyID(ctx context.Context, exec SQLExecutor, lobbyID int) (*models.LobbyInvite, error)

	// ConsumeUse инкрементирует счетчик использований условно:
	// uses_count < max_uses (или max_uses IS NULL). Монотонно, без гонок.
	ConsumeUse(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresInviteRepository struct {
	db *sql.DB
}

func NewPostgresInviteRepository(db *sql.DB) InviteRepository {
	return &postgresInviteRepository{db: db}
}

func (r *postgresInviteRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresInviteRepository) Create(ctx context.Context, exec SQLExecutor, invite *models.LobbyInvite) error {
	query := `
		INSERT INTO lobby_invites (lobby_id, code, created_by, expires_at, max_uses)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, uses_count, created_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		invite.LobbyID,
		invite.Code,
		invite.CreatedBy,
		invite.ExpiresAt,
		invite.MaxUses,
	).Scan(&invite.ID, &invite.UsesCount, &invite.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "lobby_invites_code_key") {
			return ErrInviteCodeConflict
		}
		if isUniqueViolation(err, "lobby_invites_lobby_id_key") {
			return ErrInviteLobbyConflict
		}
		if isForeignKeyViolation(err, "lobby_invites_lobby_id_fkey") {
			return ErrInviteLobbyInvalid
		}
		return err
	}
	return nil
}

func (r *postgresInviteRepository) GetByLobbyID(ctx context.Context, exec SQLExecutor, lobbyID int) (*models.LobbyInvite, error) {
	query := `
		SELECT id, lobby_id, code, created_by, expires_at, max_uses, uses_count, created_at
		FROM lobby_invites
		WHERE lobby_id = $1`

	i := &models.LobbyInvite{}
	err := r.exec(exec).QueryRowContext(ctx, query, lobbyID).Scan(
		&i.ID,
		&i.LobbyID,
		&i.Code,
		&i.CreatedBy,
		&i.ExpiresAt,
		&i.MaxUses,
		&i.UsesCount,
		&i.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return i, nil
}

func (r *postgresInviteRepository) ConsumeUse(ctx context.Context, exec SQLExecutor, id int) error {
	query := `
		UPDATE lobby_invites
		SET uses_count = uses_count + 1
		WHERE id = $1
		  AND (max_uses IS NULL OR uses_count < max_uses)`

	result, err := r.exec(exec).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInviteUsesExhausted)
}
