package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ladder-gg/ladder/models"
)

var ErrLobbyMessageInvalid = errors.New("lobby message references invalid lobby or player")

// Сообщения чата — непрозрачные записи: только добавление и чтение.
type LobbyMessageRepository interface {
	Create(ctx context.Context, message *models.LobbyMessage) error
	ListByLobby(ctx context.Context, lobbyID, limit int) ([]*models.LobbyMessage, error)
}

type postgresLobbyMessageRepository struct {
	db *sql.DB
}

func NewPostgresLobbyMessageRepository(db *sql.DB) LobbyMessageRepository {
	return &postgresLobbyMessageRepository{db: db}
}

func (r *postgresLobbyMessageRepository) Create(ctx context.Context, message *models.LobbyMessage) error {
	query := `
		INSERT INTO lobby_messages (lobby_id, player_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		message.LobbyID,
		message.PlayerID,
		message.Message,
	).Scan(&message.ID, &message.CreatedAt)

	if err != nil {
		if isForeignKeyViolation(err, "lobby_messages_lobby_id_fkey") ||
			isForeignKeyViolation(err, "lobby_messages_player_id_fkey") {
			return ErrLobbyMessageInvalid
		}
		return err
	}
	return nil
}

func (r *postgresLobbyMessageRepository) ListByLobby(ctx context.Context, lobbyID, limit int) ([]*models.LobbyMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, lobby_id, player_id, message, created_at
		FROM lobby_messages
		WHERE lobby_id = $1
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, lobbyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*models.LobbyMessage, 0)
	for rows.Next() {
		var m models.LobbyMessage
		if scanErr := rows.Scan(&m.ID, &m.LobbyID, &m.PlayerID, &m.Message, &m.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		messages = append(messages, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
