package repositories

import (
	"context"
	"database/sql"

	"github.com/ladder-gg/ladder/models"
)

type AdminActionFilter struct {
	AdminID        int // 0 — все
	TargetPlayerID int // 0 — все
	Limit          int
	Offset         int
}

// AdminActionRepository — журнал привилегированных действий.
// Намеренно только Create и List: записи не меняются и не удаляются.
type AdminActionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, action *models.AdminAction) error
	List(ctx context.Context, filter AdminActionFilter) ([]*models.AdminAction, error)
}

type postgresAdminActionRepository struct {
	db *sql.DB
}

func NewPostgresAdminActionRepository(db *sql.DB) AdminActionRepository {
	return &postgresAdminActionRepository{db: db}
}

func (r *postgresAdminActionRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresAdminActionRepository) Create(ctx context.Context, exec SQLExecutor, action *models.AdminAction) error {
	query := `
		INSERT INTO admin_actions (admin_id, action, target_player_id, reason, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	var details interface{}
	if len(action.Details) > 0 {
		details = []byte(action.Details)
	}

	return r.exec(exec).QueryRowContext(ctx, query,
		action.AdminID,
		action.Action,
		action.TargetPlayerID,
		action.Reason,
		details,
	).Scan(&action.ID, &action.CreatedAt)
}

func (r *postgresAdminActionRepository) List(ctx context.Context, filter AdminActionFilter) ([]*models.AdminAction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, admin_id, action, target_player_id, reason, details, created_at
		FROM admin_actions
		WHERE ($1 = 0 OR admin_id = $1)
		  AND ($2 = 0 OR target_player_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, filter.AdminID, filter.TargetPlayerID, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actions := make([]*models.AdminAction, 0)
	for rows.Next() {
		var a models.AdminAction
		var details []byte
		if scanErr := rows.Scan(&a.ID, &a.AdminID, &a.Action, &a.TargetPlayerID, &a.Reason, &details, &a.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		a.Details = details
		actions = append(actions, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return actions, nil
}
