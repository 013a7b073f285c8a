package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ladder-gg/ladder/models"
)

var (
	ErrLobbyMemberNotFound = errors.New("lobby member not found")
	ErrLobbyMemberConflict = errors.New("player is already a member of this lobby")
	ErrLobbyMemberInvalid  = errors.New("lobby member references invalid lobby or player")
)

type LobbyMemberRepository interface {
	Create(ctx context.Context, exec SQLExecutor, member *models.LobbyMember) error
	Get(ctx context.Context, exec SQLExecutor, lobbyID, playerID int) (*models.LobbyMember, error)
	Delete(ctx context.Context, exec SQLExecutor, lobbyID, playerID int) error
	ListByLobby(ctx context.Context, exec SQLExecutor, lobbyID int) ([]*models.LobbyMember, error)
}

type postgresLobbyMemberRepository struct {
	db *sql.DB
}

func NewPostgresLobbyMemberRepository(db *sql.DB) LobbyMemberRepository {
	return &postgresLobbyMemberRepository{db: db}
}

func (r *postgresLobbyMemberRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLobbyMemberRepository) Create(ctx context.Context, exec SQLExecutor, member *models.LobbyMember) error {
	query := `
		INSERT INTO lobby_members (lobby_id, player_id, team)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		member.LobbyID,
		member.PlayerID,
		member.Team,
	).Scan(&member.ID, &member.JoinedAt)

	if err != nil {
		if isUniqueViolation(err, "lobby_members_lobby_id_player_id_key") {
			return ErrLobbyMemberConflict
		}
		if isForeignKeyViolation(err, "lobby_members_lobby_id_fkey") ||
			isForeignKeyViolation(err, "lobby_members_player_id_fkey") {
			return ErrLobbyMemberInvalid
		}
		return err
	}
	return nil
}

func (r *postgresLobbyMemberRepository) Get(ctx context.Context, exec SQLExecutor, lobbyID, playerID int) (*models.LobbyMember, error) {
	query := `
		SELECT id, lobby_id, player_id, team, joined_at
		FROM lobby_members
		WHERE lobby_id = $1 AND player_id = $2`

	m := &models.LobbyMember{}
	err := r.exec(exec).QueryRowContext(ctx, query, lobbyID, playerID).Scan(
		&m.ID,
		&m.LobbyID,
		&m.PlayerID,
		&m.Team,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLobbyMemberNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresLobbyMemberRepository) Delete(ctx context.Context, exec SQLExecutor, lobbyID, playerID int) error {
	query := `DELETE FROM lobby_members WHERE lobby_id = $1 AND player_id = $2`

	result, err := r.exec(exec).ExecContext(ctx, query, lobbyID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLobbyMemberNotFound)
}

func (r *postgresLobbyMemberRepository) ListByLobby(ctx context.Context, exec SQLExecutor, lobbyID int) ([]*models.LobbyMember, error) {
	query := `
		SELECT id, lobby_id, player_id, team, joined_at
		FROM lobby_members
		WHERE lobby_id = $1
		ORDER BY joined_at ASC`

	rows, err := r.exec(exec).QueryContext(ctx, query, lobbyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*models.LobbyMember, 0)
	for rows.Next() {
		var m models.LobbyMember
		if scanErr := rows.Scan(&m.ID, &m.LobbyID, &m.PlayerID, &m.Team, &m.JoinedAt); scanErr != nil {
			return nil, scanErr
		}
		members = append(members, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}
