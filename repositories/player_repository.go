package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ladder-gg/ladder/models"
)

var (
	ErrPlayerNotFound         = errors.New("player not found")
	ErrPlayerUsernameConflict = errors.New("player username conflict")
)

// RatingRange — параметры выборки кандидатов для подбора соперника.
type RatingRange struct {
	Min int
	Max int
	// ExcludePlayerID — сам ищущий.
	ExcludePlayerID int
	// ExcludeActiveLobbyMode исключает игроков, уже занятых в активном
	// лобби этого режима (open/full/started).
	ExcludeActiveLobbyMode string
}

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)

	// ApplyRatingDelta атомарно пересчитывает рейтинг и уровень одним
	// UPDATE: GREATEST(floor, rating+delta) и LEAST(maxLevel, rating/threshold).
	// Рейтинг и уровень никогда не расходятся наблюдаемо.
	ApplyRatingDelta(ctx context.Context, exec SQLExecutor, id, delta, floor, threshold, maxLevel int) (*models.Player, error)

	ListByRatingRange(ctx context.Context, rr RatingRange) ([]*models.Player, error)
	ListTopByRating(ctx context.Context, limit, offset int) ([]*models.Player, error)

	SetBanState(ctx context.Context, exec SQLExecutor, id int, banned bool, expires *time.Time) error
	SetPrivilege(ctx context.Context, exec SQLExecutor, id int, level models.PrivilegeLevel) error

	// ClearExpiredBans снимает флаг бана у игроков с истекшим сроком.
	// Возвращает количество затронутых строк.
	ClearExpiredBans(ctx context.Context) (int64, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, username, rating, level, privilege, is_banned, ban_expires, created_at`

func scanPlayer(row interface{ Scan(...interface{}) error }) (*models.Player, error) {
	p := &models.Player{}
	err := row.Scan(
		&p.ID,
		&p.Username,
		&p.Rating,
		&p.Level,
		&p.Privilege,
		&p.IsBanned,
		&p.BanExpires,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (username, rating, level, privilege)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		player.Username,
		player.Rating,
		player.Level,
		player.Privilege,
	).Scan(&player.ID, &player.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "players_username_key") {
			return ErrPlayerUsernameConflict
		}
		return err
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	p, err := scanPlayer(r.exec(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) ApplyRatingDelta(ctx context.Context, exec SQLExecutor, id, delta, floor, threshold, maxLevel int) (*models.Player, error) {
	// Один UPDATE — одна точка сериализации по строке игрока.
	query := `
		UPDATE players
		SET rating = GREATEST($2, rating + $3),
		    level  = LEAST($4, GREATEST($2, rating + $3) / $5)
		WHERE id = $1
		RETURNING ` + playerColumns

	p, err := scanPlayer(r.exec(exec).QueryRowContext(ctx, query, id, floor, delta, maxLevel, threshold))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) ListByRatingRange(ctx context.Context, rr RatingRange) ([]*models.Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players p
		WHERE p.rating BETWEEN $1 AND $2
		  AND p.id <> $3
		  AND NOT (p.is_banned AND (p.ban_expires IS NULL OR p.ban_expires > NOW()))
		  AND NOT EXISTS (
			SELECT 1
			FROM lobby_members lm
			JOIN lobbies l ON l.id = lm.lobby_id
			WHERE lm.player_id = p.id
			  AND l.mode = $4
			  AND l.status IN ('open', 'full', 'started')
		  )
		ORDER BY p.rating DESC`

	rows, err := r.db.QueryContext(ctx, query, rr.Min, rr.Max, rr.ExcludePlayerID, rr.ExcludeActiveLobbyMode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPlayers(rows)
}

func (r *postgresPlayerRepository) ListTopByRating(ctx context.Context, limit, offset int) ([]*models.Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players
		ORDER BY rating DESC, id ASC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPlayers(rows)
}

func collectPlayers(rows *sql.Rows) ([]*models.Player, error) {
	players := make([]*models.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) SetBanState(ctx context.Context, exec SQLExecutor, id int, banned bool, expires *time.Time) error {
	query := `UPDATE players SET is_banned = $2, ban_expires = $3 WHERE id = $1`

	result, err := r.exec(exec).ExecContext(ctx, query, id, banned, expires)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) SetPrivilege(ctx context.Context, exec SQLExecutor, id int, level models.PrivilegeLevel) error {
	query := `UPDATE players SET privilege = $2 WHERE id = $1`

	result, err := r.exec(exec).ExecContext(ctx, query, id, level)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) ClearExpiredBans(ctx context.Context) (int64, error) {
	query := `
		UPDATE players
		SET is_banned = FALSE, ban_expires = NULL
		WHERE is_banned AND ban_expires IS NOT NULL AND ban_expires <= NOW()`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n, nil
}
