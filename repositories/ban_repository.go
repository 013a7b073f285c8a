package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ladder-gg/ladder/models"
)

var ErrBanNotFound = errors.New("ban record not found")

type BanRepository interface {
	Create(ctx context.Context, exec SQLExecutor, ban *models.PlayerBan) error

	// DeactivateByPlayer гасит все активные баны игрока.
	// Возвращает количество затронутых записей.
	DeactivateByPlayer(ctx context.Context, exec SQLExecutor, playerID int) (int64, error)

	ListActiveByPlayer(ctx context.Context, playerID int) ([]*models.PlayerBan, error)
}

type postgresBanRepository struct {
	db *sql.DB
}

func NewPostgresBanRepository(db *sql.DB) BanRepository {
	return &postgresBanRepository{db: db}
}

func (r *postgresBanRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresBanRepository) Create(ctx context.Context, exec SQLExecutor, ban *models.PlayerBan) error {
	query := `
		INSERT INTO player_bans (player_id, admin_id, reason, ban_type, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id, is_active, created_at`

	return r.exec(exec).QueryRowContext(ctx, query,
		ban.PlayerID,
		ban.AdminID,
		ban.Reason,
		ban.Type,
		ban.ExpiresAt,
	).Scan(&ban.ID, &ban.IsActive, &ban.CreatedAt)
}

func (r *postgresBanRepository) DeactivateByPlayer(ctx context.Context, exec SQLExecutor, playerID int) (int64, error) {
	query := `UPDATE player_bans SET is_active = FALSE WHERE player_id = $1 AND is_active`

	result, err := r.exec(exec).ExecContext(ctx, query, playerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresBanRepository) ListActiveByPlayer(ctx context.Context, playerID int) ([]*models.PlayerBan, error) {
	query := `
		SELECT id, player_id, admin_id, reason, ban_type, expires_at, is_active, created_at
		FROM player_bans
		WHERE player_id = $1 AND is_active
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bans := make([]*models.PlayerBan, 0)
	for rows.Next() {
		var b models.PlayerBan
		if scanErr := rows.Scan(&b.ID, &b.PlayerID, &b.AdminID, &b.Reason, &b.Type, &b.ExpiresAt, &b.IsActive, &b.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		bans = append(bans, &b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bans, nil
}
