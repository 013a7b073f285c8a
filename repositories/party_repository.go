package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ladder-gg/ladder/models"
)

var (
	ErrPartyNotFound       = errors.New("party not found")
	ErrPartyMemberNotFound = errors.New("party member not found")
	ErrPartyMemberConflict = errors.New("player is already a member of this party")
)

type PartyRepository interface {
	// Create создает группу и сразу добавляет лидера первым участником
	// в одной транзакции.
	Create(ctx context.Context, exec SQLExecutor, party *models.Party) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Party, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error

	AddMember(ctx context.Context, exec SQLExecutor, member *models.PartyMember) error
	RemoveMember(ctx context.Context, exec SQLExecutor, partyID, playerID int) error
	ListMembers(ctx context.Context, exec SQLExecutor, partyID int) ([]*models.PartyMember, error)
	CountMembers(ctx context.Context, exec SQLExecutor, partyID int) (int, error)

	// FindByMemberAndMode возвращает группу данного режима, в которой
	// игрок уже состоит, или ErrPartyNotFound.
	FindByMemberAndMode(ctx context.Context, playerID int, mode string) (*models.Party, error)
}

type postgresPartyRepository struct {
	db *sql.DB
}

func NewPostgresPartyRepository(db *sql.DB) PartyRepository {
	return &postgresPartyRepository{db: db}
}

func (r *postgresPartyRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPartyRepository) Create(ctx context.Context, exec SQLExecutor, party *models.Party) error {
	executor := r.exec(exec)

	query := `
		INSERT INTO parties (leader_id, mode, server)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		party.LeaderID,
		party.Mode,
		party.Server,
	).Scan(&party.ID, &party.CreatedAt)
	if err != nil {
		return err
	}

	member := &models.PartyMember{PartyID: party.ID, PlayerID: party.LeaderID}
	if err := r.AddMember(ctx, executor, member); err != nil {
		return err
	}
	party.Members = []models.PartyMember{*member}
	return nil
}

func (r *postgresPartyRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Party, error) {
	query := `
		SELECT id, leader_id, mode, server, created_at
		FROM parties
		WHERE id = $1`

	p := &models.Party{}
	err := r.exec(exec).QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.LeaderID,
		&p.Mode,
		&p.Server,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPartyNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPartyRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.exec(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM party_members WHERE party_id = $1`, id); err != nil {
		return err
	}

	result, err := executor.ExecContext(ctx, `DELETE FROM parties WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPartyNotFound)
}

func (r *postgresPartyRepository) AddMember(ctx context.Context, exec SQLExecutor, member *models.PartyMember) error {
	query := `
		INSERT INTO party_members (party_id, player_id)
		VALUES ($1, $2)
		RETURNING id, joined_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		member.PartyID,
		member.PlayerID,
	).Scan(&member.ID, &member.JoinedAt)

	if err != nil {
		if isUniqueViolation(err, "party_members_party_id_player_id_key") {
			return ErrPartyMemberConflict
		}
		return err
	}
	return nil
}

func (r *postgresPartyRepository) RemoveMember(ctx context.Context, exec SQLExecutor, partyID, playerID int) error {
	query := `DELETE FROM party_members WHERE party_id = $1 AND player_id = $2`

	result, err := r.exec(exec).ExecContext(ctx, query, partyID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPartyMemberNotFound)
}

func (r *postgresPartyRepository) ListMembers(ctx context.Context, exec SQLExecutor, partyID int) ([]*models.PartyMember, error) {
	query := `
		SELECT id, party_id, player_id, joined_at
		FROM party_members
		WHERE party_id = $1
		ORDER BY joined_at ASC`

	rows, err := r.exec(exec).QueryContext(ctx, query, partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*models.PartyMember, 0)
	for rows.Next() {
		var m models.PartyMember
		if scanErr := rows.Scan(&m.ID, &m.PartyID, &m.PlayerID, &m.JoinedAt); scanErr != nil {
			return nil, scanErr
		}
		members = append(members, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *postgresPartyRepository) CountMembers(ctx context.Context, exec SQLExecutor, partyID int) (int, error) {
	var count int
	err := r.exec(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM party_members WHERE party_id = $1`, partyID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresPartyRepository) FindByMemberAndMode(ctx context.Context, playerID int, mode string) (*models.Party, error) {
	query := `
		SELECT p.id, p.leader_id, p.mode, p.server, p.created_at
		FROM parties p
		JOIN party_members pm ON pm.party_id = p.id
		WHERE pm.player_id = $1 AND p.mode = $2
		LIMIT 1`

	p := &models.Party{}
	err := r.db.QueryRowContext(ctx, query, playerID, mode).Scan(
		&p.ID,
		&p.LeaderID,
		&p.Mode,
		&p.Server,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPartyNotFound
		}
		return nil, err
	}
	return p, nil
}
