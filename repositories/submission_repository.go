package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/ladder-gg/ladder/models"
)

var (
	ErrSubmissionNotFound = errors.New("result submission not found")
	// ErrSubmissionPendingConflict — у лобби уже есть необработанная заявка.
	ErrSubmissionPendingConflict = errors.New("lobby already has a pending submission")
	// ErrSubmissionNotPending — условный UPDATE не прошёл: заявка уже
	// обработана (или исчезла) до нас.
	ErrSubmissionNotPending = errors.New("submission is not pending")
	ErrSubmissionInvalid    = errors.New("submission references invalid lobby or player")
)

type SubmissionFilter struct {
	Status models.SubmissionStatus // пустой — все
	Limit  int
	Offset int
}

type SubmissionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, sub *models.ResultSubmission) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.ResultSubmission, error)

	// MarkReviewed условно переводит pending-заявку в терминальный статус.
	// Повторный вызов по уже обработанной заявке — ErrSubmissionNotPending.
	MarkReviewed(ctx context.Context, exec SQLExecutor, id int, status models.SubmissionStatus, reviewerID int, notes *string, reviewedAt time.Time) error

	List(ctx context.Context, filter SubmissionFilter) ([]*models.ResultSubmission, error)
}

type postgresSubmissionRepository struct {
	db *sql.DB
}

func NewPostgresSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &postgresSubmissionRepository{db: db}
}

func (r *postgresSubmissionRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const submissionColumns = `id, lobby_id, player_id, result, evidence_key, hint, status, reviewed_by, reviewed_at, notes, created_at`

func scanSubmission(row interface{ Scan(...interface{}) error }) (*models.ResultSubmission, error) {
	s := &models.ResultSubmission{}
	var hintRaw []byte
	err := row.Scan(
		&s.ID,
		&s.LobbyID,
		&s.PlayerID,
		&s.Result,
		&s.EvidenceKey,
		&hintRaw,
		&s.Status,
		&s.ReviewedBy,
		&s.ReviewedAt,
		&s.Notes,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(hintRaw) > 0 {
		hint := &models.EvidenceHint{}
		if err := json.Unmarshal(hintRaw, hint); err == nil {
			s.Hint = hint
		}
	}
	return s, nil
}

func (r *postgresSubmissionRepository) Create(ctx context.Context, exec SQLExecutor, sub *models.ResultSubmission) error {
	var hintRaw []byte
	if sub.Hint != nil {
		var err error
		hintRaw, err = json.Marshal(sub.Hint)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO result_submissions (lobby_id, player_id, result, evidence_key, hint, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		sub.LobbyID,
		sub.PlayerID,
		sub.Result,
		sub.EvidenceKey,
		hintRaw,
		sub.Status,
	).Scan(&sub.ID, &sub.CreatedAt)

	if err != nil {
		// Частичный уникальный индекс: не более одной pending-заявки на лобби.
		if isUniqueViolation(err, "result_submissions_lobby_pending_key") {
			return ErrSubmissionPendingConflict
		}
		if isForeignKeyViolation(err, "result_submissions_lobby_id_fkey") ||
			isForeignKeyViolation(err, "result_submissions_player_id_fkey") {
			return ErrSubmissionInvalid
		}
		return err
	}
	return nil
}

func (r *postgresSubmissionRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.ResultSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM result_submissions WHERE id = $1`

	s, err := scanSubmission(r.exec(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresSubmissionRepository) MarkReviewed(ctx context.Context, exec SQLExecutor, id int, status models.SubmissionStatus, reviewerID int, notes *string, reviewedAt time.Time) error {
	query := `
		UPDATE result_submissions
		SET status = $2, reviewed_by = $3, notes = $4, reviewed_at = $5
		WHERE id = $1 AND status = 'pending'`

	result, err := r.exec(exec).ExecContext(ctx, query, id, status, reviewerID, notes, reviewedAt)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSubmissionNotPending)
}

func (r *postgresSubmissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]*models.ResultSubmission, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + submissionColumns + `
		FROM result_submissions
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, string(filter.Status), limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]*models.ResultSubmission, 0)
	for rows.Next() {
		s, scanErr := scanSubmission(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}
