package repository

import (
	"context"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Account, error)
	Update(ctx context.Context, id uuid.UUID, update *models.AccountUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id, user_id, name, type, balance, credit_limit, due_day, institution, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (models.Account, error) {
	var account models.Account
	var institution *string
	err := row.Scan(
		&account.ID, &account.UserID, &account.Name, &account.Type,
		&account.Balance, &account.CreditLimit, &account.DueDay,
		&institution, &account.IsActive,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if institution != nil {
		account.Institution = *institution
	}
	return account, err
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	account.IsActive = true

	_, err := r.pool.Exec(ctx, query,
		account.ID, account.UserID, account.Name, account.Type,
		account.Balance, account.CreditLimit, account.DueDay,
		account.Institution, account.IsActive,
		account.CreatedAt, account.UpdatedAt,
	)
	return duplicate(err)
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND deleted_at IS NULL`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND deleted_at IS NULL`
	if activeOnly {
		query += " AND is_active = true"
	}
	query += " ORDER BY created_at"

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *accountRepository) Update(ctx context.Context, id uuid.UUID, update *models.AccountUpdate) error {
	query := `
		UPDATE accounts SET
			name = COALESCE($2, name),
			balance = COALESCE($3, balance),
			credit_limit = COALESCE($4, credit_limit),
			due_day = COALESCE($5, due_day),
			institution = COALESCE($6, institution),
			is_active = COALESCE($7, is_active),
			updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query,
		id, update.Name, update.Balance, update.CreditLimit, update.DueDay,
		update.Institution, update.IsActive, time.Now(),
	)
	if err != nil {
		return duplicate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete мягкое удаление, транзакции ссылаются на счет по имени
func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE accounts SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
