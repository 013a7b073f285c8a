package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ladder-gg/ladder/models"
)

var (
	ErrLobbyBanNotFound = errors.New("lobby ban not found")
	ErrLobbyBanConflict = errors.New("player is already banned from this lobby")
)

type LobbyBanRepository interface {
	Create(ctx context.Context, exec SQLExecutor, ban *models.LobbyBan) error
	Exists(ctx context.Context, exec SQLExecutor, lobbyID, playerID int) (bool, error)
	Delete(ctx context.Context, exec SQLExecutor, lobbyID, playerID int) error
}

type postgresLobbyBanRepository struct {
	db *sql.DB
}

func NewPostgresLobbyBanRepository(db *sql.DB) LobbyBanRepository {
	return &postgresLobbyBanRepository{db: db}
}

func (r *postgresLobbyBanRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLobbyBanRepository) Create(ctx context.Context, exec SQLExecutor, ban *models.LobbyBan) error {
	query := `
		INSERT INTO lobby_bans (lobby_id, player_id, admin_id, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		ban.LobbyID,
		ban.PlayerID,
		ban.AdminID,
		ban.Reason,
	).Scan(&ban.ID, &ban.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "lobby_bans_lobby_id_player_id_key") {
			return ErrLobbyBanConflict
		}
		return err
	}
	return nil
}

func (r *postgresLobbyBanRepository) Exists(ctx context.Context, exec SQLExecutor, lobbyID, playerID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM lobby_bans WHERE lobby_id = $1 AND player_id = $2)`

	var exists bool
	if err := r.exec(exec).QueryRowContext(ctx, query, lobbyID, playerID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresLobbyBanRepository) Delete(ctx context.Context, exec SQLExecutor, lobbyID, playerID int) error {
	query := `DELETE FROM lobby_bans WHERE lobby_id = $1 AND player_id = $2`

	result, err := r.exec(exec).ExecContext(ctx, query, lobbyID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLobbyBanNotFound)
}
