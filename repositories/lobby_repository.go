package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ladder-gg/ladder/models"
	"github.com/lib/pq"
)

var (
	ErrLobbyNotFound = errors.New("lobby not found")
	// ErrLobbySlotUnavailable: условный UPDATE не затронул строк —
	// лобби заполнено, стартовало или удалено конкурентной операцией.
	ErrLobbySlotUnavailable = errors.New("lobby slot unavailable")
	ErrLobbyStateConflict   = errors.New("lobby state conflict")
)

// LobbyFilter — параметры листинга публичных лобби.
type LobbyFilter struct {
	Status models.LobbyStatus // пустой — все
	Limit  int
	Offset int
}

type LobbyRepository interface {
	Create(ctx context.Context, exec SQLExecutor, lobby *models.Lobby) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Lobby, error)

	// ClaimSlot атомарно занимает место: инкремент occupancy и перевод
	// open→full при достижении вместимости, одним условным UPDATE.
	// Проигравший гонку получает ErrLobbySlotUnavailable.
	ClaimSlot(ctx context.Context, exec SQLExecutor, id int) (*models.Lobby, error)

	// ReleaseSlot атомарно освобождает место и возвращает full→open.
	ReleaseSlot(ctx context.Context, exec SQLExecutor, id int) (*models.Lobby, error)

	// UpdateStatus переводит лобби из одного из состояний from в to.
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from []models.LobbyStatus, to models.LobbyStatus) error

	// Delete удаляет лобби и каскадно все дочерние записи (членов,
	// баны, сообщения, инвайт, заявки) в рамках переданной транзакции.
	Delete(ctx context.Context, exec SQLExecutor, id int) error

	ListPublic(ctx context.Context, filter LobbyFilter) ([]*models.Lobby, error)

	// FindActiveIDByPlayerAndMode возвращает ID активного лобби данного
	// режима, в котором игрок состоит, или ErrLobbyNotFound.
	FindActiveIDByPlayerAndMode(ctx context.Context, playerID int, mode string) (int, error)
}

type postgresLobbyRepository struct {
	db *sql.DB
}

func NewPostgresLobbyRepository(db *sql.DB) LobbyRepository {
	return &postgresLobbyRepository{db: db}
}

func (r *postgresLobbyRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const lobbyColumns = `id, name, description, creator_id, mode, server, is_public, password_hash, max_players, current_players, status, created_at`

func scanLobby(row interface{ Scan(...interface{}) error }) (*models.Lobby, error) {
	l := &models.Lobby{}
	err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Description,
		&l.CreatorID,
		&l.Mode,
		&l.Server,
		&l.IsPublic,
		&l.PasswordHash,
		&l.MaxPlayers,
		&l.CurrentPlayers,
		&l.Status,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *postgresLobbyRepository) Create(ctx context.Context, exec SQLExecutor, lobby *models.Lobby) error {
	query := `
		INSERT INTO lobbies (name, description, creator_id, mode, server, is_public, password_hash, max_players, current_players, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	return r.exec(exec).QueryRowContext(ctx, query,
		lobby.Name,
		lobby.Description,
		lobby.CreatorID,
		lobby.Mode,
		lobby.Server,
		lobby.IsPublic,
		lobby.PasswordHash,
		lobby.MaxPlayers,
		lobby.CurrentPlayers,
		lobby.Status,
	).Scan(&lobby.ID, &lobby.CreatedAt)
}

func (r *postgresLobbyRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Lobby, error) {
	query := `SELECT ` + lobbyColumns + ` FROM lobbies WHERE id = $1`

	l, err := scanLobby(r.exec(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLobbyNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *postgresLobbyRepository) ClaimSlot(ctx context.Context, exec SQLExecutor, id int) (*models.Lobby, error) {
	// WHERE-условия повторяют проверки сервиса: это защита от гонки,
	// а не их замена. 0 затронутых строк — место уже не достаётся.
	query := `
		UPDATE lobbies
		SET current_players = current_players + 1,
		    status = CASE WHEN current_players + 1 >= max_players THEN 'full' ELSE status END
		WHERE id = $1
		  AND status = 'open'
		  AND current_players < max_players
		RETURNING ` + lobbyColumns

	l, err := scanLobby(r.exec(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLobbySlotUnavailable
		}
		return nil, err
	}
	return l, nil
}

func (r *postgresLobbyRepository) ReleaseSlot(ctx context.Context, exec SQLExecutor, id int) (*models.Lobby, error) {
	// full не «залипает»: уход участника сразу возвращает open.
	query := `
		UPDATE lobbies
		SET current_players = GREATEST(0, current_players - 1),
		    status = CASE WHEN status = 'full' THEN 'open' ELSE status END
		WHERE id = $1
		RETURNING ` + lobbyColumns

	l, err := scanLobby(r.exec(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLobbyNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *postgresLobbyRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from []models.LobbyStatus, to models.LobbyStatus) error {
	fromStr := make([]string, len(from))
	for i, s := range from {
		fromStr[i] = string(s)
	}

	query := `
		UPDATE lobbies
		SET status = $2
		WHERE id = $1 AND status = ANY($3)`

	result, err := r.exec(exec).ExecContext(ctx, query, id, to, pq.Array(fromStr))
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLobbyStateConflict)
}

func (r *postgresLobbyRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.exec(exec)

	// Дочерние записи удаляются явно, в порядке зависимости,
	// в одной транзакции с самим лобби.
	childQueries := []string{
		`DELETE FROM result_submissions WHERE lobby_id = $1`,
		`DELETE FROM lobby_invites WHERE lobby_id = $1`,
		`DELETE FROM lobby_bans WHERE lobby_id = $1`,
		`DELETE FROM lobby_messages WHERE lobby_id = $1`,
		`DELETE FROM lobby_members WHERE lobby_id = $1`,
	}
	for _, q := range childQueries {
		if _, err := executor.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}

	result, err := executor.ExecContext(ctx, `DELETE FROM lobbies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLobbyNotFound)
}

func (r *postgresLobbyRepository) ListPublic(ctx context.Context, filter LobbyFilter) ([]*models.Lobby, error) {
	query := `
		SELECT ` + lobbyColumns + `
		FROM lobbies
		WHERE is_public
		  AND ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, query, string(filter.Status), limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lobbies := make([]*models.Lobby, 0)
	for rows.Next() {
		l, scanErr := scanLobby(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		lobbies = append(lobbies, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return lobbies, nil
}

func (r *postgresLobbyRepository) FindActiveIDByPlayerAndMode(ctx context.Context, playerID int, mode string) (int, error) {
	query := `
		SELECT l.id
		FROM lobbies l
		JOIN lobby_members lm ON lm.lobby_id = l.id
		WHERE lm.player_id = $1
		  AND l.mode = $2
		  AND l.status IN ('open', 'full', 'started')
		LIMIT 1`

	var id int
	err := r.db.QueryRowContext(ctx, query, playerID, mode).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrLobbyNotFound
		}
		return 0, err
	}
	return id, nil
}
