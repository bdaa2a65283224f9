package repository

import (
	"context"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BudgetRepository interface {
	Create(ctx context.Context, budget *models.Budget) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Budget, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Budget, error)
	Update(ctx context.Context, id uuid.UUID, update *models.BudgetUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type budgetRepository struct {
	pool *pgxpool.Pool
}

func NewBudgetRepository(pool *pgxpool.Pool) BudgetRepository {
	return &budgetRepository{pool: pool}
}

const budgetColumns = `id, user_id, category, limit_amount, alert_percent, is_active, created_at, updated_at`

func scanBudget(row pgx.Row) (models.Budget, error) {
	var budget models.Budget
	err := row.Scan(
		&budget.ID, &budget.UserID, &budget.Category, &budget.Limit,
		&budget.AlertPercent, &budget.IsActive,
		&budget.CreatedAt, &budget.UpdatedAt,
	)
	return budget, err
}

func (r *budgetRepository) Create(ctx context.Context, budget *models.Budget) error {
	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	now := time.Now()
	budget.CreatedAt = now
	budget.UpdatedAt = now
	budget.IsActive = true

	if budget.AlertPercent == 0 {
		budget.AlertPercent = 80
	}

	_, err := r.pool.Exec(ctx, query,
		budget.ID, budget.UserID, budget.Category, budget.Limit,
		budget.AlertPercent, budget.IsActive,
		budget.CreatedAt, budget.UpdatedAt,
	)
	return duplicate(err)
}

func (r *budgetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Budget, error) {
	budget, err := scanBudget(r.pool.QueryRow(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &budget, nil
}

func (r *budgetRepository) GetByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1`
	if activeOnly {
		query += " AND is_active = true"
	}
	query += " ORDER BY category ASC"

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make([]models.Budget, 0)
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

func (r *budgetRepository) Update(ctx context.Context, id uuid.UUID, update *models.BudgetUpdate) error {
	query := `
		UPDATE budgets SET
			category = COALESCE($2, category),
			limit_amount = COALESCE($3, limit_amount),
			alert_percent = COALESCE($4, alert_percent),
			is_active = COALESCE($5, is_active),
			updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		id, update.Category, update.Limit, update.AlertPercent, update.IsActive,
		time.Now(),
	)
	if err != nil {
		return duplicate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *budgetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
