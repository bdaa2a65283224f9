package repository

import (
	"context"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RecurringRepository interface {
	Create(ctx context.Context, rec *models.RecurringTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RecurringTransaction, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.RecurringTransaction, error)
	// ListDue активные шаблоны всех пользователей с next_date <= until
	ListDue(ctx context.Context, until time.Time) ([]models.RecurringTransaction, error)
	Update(ctx context.Context, id uuid.UUID, update *models.RecurringUpdate) error
	SetNextDate(ctx context.Context, id uuid.UUID, next time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type recurringRepository struct {
	pool *pgxpool.Pool
}

func NewRecurringRepository(pool *pgxpool.Pool) RecurringRepository {
	return &recurringRepository{pool: pool}
}

func (r *recurringRepository) db(ctx context.Context) DBTX {
	return GetTxOrPool(ctx, r.pool)
}

const recurringColumns = `id, user_id, description, amount, type, category, account, frequency, next_date, is_active, created_at, updated_at`

func scanRecurring(row pgx.Row) (models.RecurringTransaction, error) {
	var rec models.RecurringTransaction
	var account *string
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Description, &rec.Amount, &rec.Type,
		&rec.Category, &account, &rec.Frequency, &rec.NextDate, &rec.IsActive,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if account != nil {
		rec.Account = *account
	}
	return rec, err
}

func (r *recurringRepository) Create(ctx context.Context, rec *models.RecurringTransaction) error {
	query := `
		INSERT INTO recurring_transactions (` + recurringColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.IsActive = true

	_, err := r.db(ctx).Exec(ctx, query,
		rec.ID, rec.UserID, rec.Description, rec.Amount, rec.Type,
		rec.Category, rec.Account, rec.Frequency, rec.NextDate, rec.IsActive,
		rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

func (r *recurringRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RecurringTransaction, error) {
	rec, err := scanRecurring(r.db(ctx).QueryRow(ctx, `SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

func (r *recurringRepository) GetByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.RecurringTransaction, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions WHERE user_id = $1`
	if activeOnly {
		query += " AND is_active = true"
	}
	query += " ORDER BY next_date ASC"

	return r.list(ctx, query, userID)
}

func (r *recurringRepository) ListDue(ctx context.Context, until time.Time) ([]models.RecurringTransaction, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions
		WHERE is_active = true AND next_date <= $1
		ORDER BY next_date ASC`

	return r.list(ctx, query, until)
}

func (r *recurringRepository) list(ctx context.Context, query string, arg interface{}) ([]models.RecurringTransaction, error) {
	rows, err := r.db(ctx).Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]models.RecurringTransaction, 0)
	for rows.Next() {
		rec, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func (r *recurringRepository) Update(ctx context.Context, id uuid.UUID, update *models.RecurringUpdate) error {
	query := `
		UPDATE recurring_transactions SET
			description = COALESCE($2, description),
			amount = COALESCE($3, amount),
			category = COALESCE($4, category),
			frequency = COALESCE($5, frequency),
			next_date = COALESCE($6, next_date),
			is_active = COALESCE($7, is_active),
			updated_at = $8
		WHERE id = $1
	`

	tag, err := r.db(ctx).Exec(ctx, query,
		id, update.Description, update.Amount, update.Category,
		update.Frequency, update.NextDate, update.IsActive, time.Now(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recurringRepository) SetNextDate(ctx context.Context, id uuid.UUID, next time.Time) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE recurring_transactions SET next_date = $2, updated_at = $3 WHERE id = $1`,
		id, next, time.Now(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recurringRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM recurring_transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
