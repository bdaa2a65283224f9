package repository

import (
	"context"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type GoalRepository interface {
	Create(ctx context.Context, goal *models.Goal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Goal, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, status *models.GoalStatus) ([]models.Goal, error)
	Update(ctx context.Context, id uuid.UUID, update *models.GoalUpdate) error
	AddSaved(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddContribution(ctx context.Context, goalID uuid.UUID, contribution *models.GoalContribution) error
	GetContributions(ctx context.Context, goalID uuid.UUID) ([]models.GoalContribution, error)
}

type goalRepository struct {
	pool *pgxpool.Pool
}

func NewGoalRepository(pool *pgxpool.Pool) GoalRepository {
	return &goalRepository{pool: pool}
}

func (r *goalRepository) db(ctx context.Context) DBTX {
	return GetTxOrPool(ctx, r.pool)
}

const goalColumns = `id, user_id, description, target_amount, saved_amount, deadline, recurrence, monthly_amount, category, status, created_at, updated_at, completed_at`

func scanGoal(row pgx.Row) (models.Goal, error) {
	var goal models.Goal
	var recurrence, category *string
	err := row.Scan(
		&goal.ID, &goal.UserID, &goal.Description,
		&goal.TargetAmount, &goal.SavedAmount, &goal.Deadline,
		&recurrence, &goal.MonthlyAmount, &category, &goal.Status,
		&goal.CreatedAt, &goal.UpdatedAt, &goal.CompletedAt,
	)
	if recurrence != nil {
		goal.Recurrence = *recurrence
	}
	if category != nil {
		goal.Category = *category
	}
	return goal, err
}

func (r *goalRepository) Create(ctx context.Context, goal *models.Goal) error {
	query := `
		INSERT INTO goals (id, user_id, description, target_amount, saved_amount, deadline, recurrence, monthly_amount, category, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	now := time.Now()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	goal.Status = models.GoalStatusActive

	_, err := r.db(ctx).Exec(ctx, query,
		goal.ID, goal.UserID, goal.Description,
		goal.TargetAmount, goal.SavedAmount, goal.Deadline,
		goal.Recurrence, goal.MonthlyAmount, goal.Category, goal.Status,
		goal.CreatedAt, goal.UpdatedAt,
	)
	return err
}

func (r *goalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Goal, error) {
	goal, err := scanGoal(r.db(ctx).QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &goal, nil
}

func (r *goalRepository) GetByUserID(ctx context.Context, userID uuid.UUID, status *models.GoalStatus) ([]models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1`
	args := []interface{}{userID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY deadline ASC NULLS LAST, created_at DESC"

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]models.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

func (r *goalRepository) Update(ctx context.Context, id uuid.UUID, update *models.GoalUpdate) error {
	query := `
		UPDATE goals SET
			description = COALESCE($2, description),
			target_amount = COALESCE($3, target_amount),
			deadline = COALESCE($4, deadline),
			recurrence = COALESCE($5, recurrence),
			monthly_amount = COALESCE($6, monthly_amount),
			category = COALESCE($7, category),
			status = COALESCE($8, status),
			updated_at = $9
		WHERE id = $1
	`

	tag, err := r.db(ctx).Exec(ctx, query,
		id, update.Description, update.TargetAmount, update.Deadline,
		update.Recurrence, update.MonthlyAmount, update.Category, update.Status,
		time.Now(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddSaved увеличивает накопленную сумму и закрывает цель, если цель достигнута
func (r *goalRepository) AddSaved(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE goals SET
			saved_amount = saved_amount + $2,
			updated_at = $3
		WHERE id = $1
	`
	if _, err := r.db(ctx).Exec(ctx, query, id, amount, time.Now()); err != nil {
		return err
	}

	checkQuery := `
		UPDATE goals SET
			status = 'completed',
			completed_at = $2
		WHERE id = $1 AND target_amount IS NOT NULL AND saved_amount >= target_amount AND status = 'active'
	`
	_, err := r.db(ctx).Exec(ctx, checkQuery, id, time.Now())
	return err
}

func (r *goalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *goalRepository) AddContribution(ctx context.Context, goalID uuid.UUID, contribution *models.GoalContribution) error {
	query := `
		INSERT INTO goal_contributions (id, goal_id, amount, date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if contribution.ID == uuid.Nil {
		contribution.ID = uuid.New()
	}
	contribution.GoalID = goalID
	contribution.CreatedAt = time.Now()
	if contribution.Date.IsZero() {
		contribution.Date = contribution.CreatedAt
	}

	_, err := r.db(ctx).Exec(ctx, query,
		contribution.ID, contribution.GoalID, contribution.Amount,
		contribution.Date, contribution.Notes, contribution.CreatedAt,
	)
	return err
}

func (r *goalRepository) GetContributions(ctx context.Context, goalID uuid.UUID) ([]models.GoalContribution, error) {
	query := `
		SELECT id, goal_id, amount, date, COALESCE(notes, ''), created_at
		FROM goal_contributions
		WHERE goal_id = $1
		ORDER BY date DESC
	`

	rows, err := r.db(ctx).Query(ctx, query, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contributions := make([]models.GoalContribution, 0)
	for rows.Next() {
		var c models.GoalContribution
		if err := rows.Scan(&c.ID, &c.GoalID, &c.Amount, &c.Date, &c.Notes, &c.CreatedAt); err != nil {
			return nil, err
		}
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}
