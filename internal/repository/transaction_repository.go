package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	GetByFilter(ctx context.Context, userID uuid.UUID, filter *models.TransactionFilter) (*models.TransactionList, error)
	// ListByUser все транзакции пользователя по возрастанию даты, границы необязательны
	ListByUser(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]models.Transaction, error)
	GetRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error)
	GetTotals(ctx context.Context, userID uuid.UUID) (income, expense decimal.Decimal, err error)
	GetCategoryCounts(ctx context.Context, userID uuid.UUID) ([]models.CategoryInfo, error)
	Update(ctx context.Context, id uuid.UUID, update *models.TransactionUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type transactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepository{pool: pool}
}

func (r *transactionRepository) db(ctx context.Context) DBTX {
	return GetTxOrPool(ctx, r.pool)
}

const transactionColumns = `t.id, t.user_id, t.type, t.amount, t.description, t.category, t.account, t.date, t.is_recurring, t.created_at, t.updated_at`

// поля, по которым разрешена сортировка
var transactionSortColumns = map[string]string{
	"date":       "t.date",
	"amount":     "t.amount",
	"category":   "t.category",
	"created_at": "t.created_at",
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var tx models.Transaction
	var description, account *string
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &description,
		&tx.Category, &account, &tx.Date, &tx.IsRecurring,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if description != nil {
		tx.Description = *description
	}
	if account != nil {
		tx.Account = *account
	}
	return tx, err
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, type, amount, description, category, account, date, is_recurring, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	_, err := r.db(ctx).Exec(ctx, query,
		tx.ID, tx.UserID, tx.Type, tx.Amount, tx.Description,
		tx.Category, tx.Account, tx.Date, tx.IsRecurring,
		tx.CreatedAt, tx.UpdatedAt,
	)
	return err
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions t WHERE t.id = $1 AND t.deleted_at IS NULL`

	tx, err := scanTransaction(r.db(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &tx, nil
}

func (r *transactionRepository) GetByFilter(ctx context.Context, userID uuid.UUID, filter *models.TransactionFilter) (*models.TransactionList, error) {
	baseQuery := `SELECT ` + transactionColumns + ` FROM transactions t WHERE t.user_id = $1 AND t.deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM transactions t WHERE t.user_id = $1 AND t.deleted_at IS NULL`

	var conditions []string
	args := []interface{}{userID}
	argIndex := 2

	if len(filter.Categories) > 0 {
		conditions = append(conditions, fmt.Sprintf("t.category = ANY($%d)", argIndex))
		args = append(args, filter.Categories)
		argIndex++
	}

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("t.type = $%d", argIndex))
		args = append(args, *filter.Type)
		argIndex++
	}

	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("t.date >= $%d", argIndex))
		args = append(args, *filter.DateFrom)
		argIndex++
	}

	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("t.date <= $%d", argIndex))
		args = append(args, *filter.DateTo)
		argIndex++
	}

	if filter.AmountMin != nil {
		conditions = append(conditions, fmt.Sprintf("t.amount >= $%d", argIndex))
		args = append(args, *filter.AmountMin)
		argIndex++
	}

	if filter.AmountMax != nil {
		conditions = append(conditions, fmt.Sprintf("t.amount <= $%d", argIndex))
		args = append(args, *filter.AmountMax)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(`(t.description ILIKE $%d ESCAPE '\' OR t.category ILIKE $%d ESCAPE '\')`, argIndex, argIndex))
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " AND " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db(ctx).QueryRow(ctx, countQuery+whereClause, args...).Scan(&total); err != nil {
		return nil, err
	}

	offset := normalizePage(filter)

	sortBy, ok := transactionSortColumns[filter.SortBy]
	if !ok {
		sortBy = "t.date"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	finalQuery := baseQuery + whereClause + fmt.Sprintf(" ORDER BY %s %s, t.created_at %s LIMIT $%d OFFSET $%d", sortBy, sortOrder, sortOrder, argIndex, argIndex+1)
	args = append(args, filter.Limit, offset)

	rows, err := r.db(ctx).Query(ctx, finalQuery, args...)
	if err != nil {
		return nil, err
	}
	transactions, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit > 0 {
		totalPages++
	}

	return &models.TransactionList{
		Transactions: transactions,
		Total:        total,
		Page:         filter.Page,
		Limit:        filter.Limit,
		TotalPages:   totalPages,
	}, nil
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// normalizePage приводит Page и Limit к допустимым значениям, возвращает OFFSET
func normalizePage(filter *models.TransactionFilter) int {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	return (filter.Page - 1) * filter.Limit
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike поиск по подстроке: % и _ из ввода ищутся буквально
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions t WHERE t.user_id = $1 AND t.deleted_at IS NULL`
	args := []interface{}{userID}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND t.date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND t.date <= $%d", len(args))
	}
	query += " ORDER BY t.date ASC, t.created_at ASC"

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (r *transactionRepository) GetRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		WHERE t.user_id = $1 AND t.deleted_at IS NULL
		ORDER BY t.date DESC, t.created_at DESC
		LIMIT $2
	`
	rows, err := r.db(ctx).Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// GetTotals суммы доходов и расходов за все время, из них считается общий баланс
func (r *transactionRepository) GetTotals(ctx context.Context, userID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0)
		FROM transactions
		WHERE user_id = $1 AND deleted_at IS NULL
	`

	var income, expense decimal.Decimal
	if err := r.db(ctx).QueryRow(ctx, query, userID).Scan(&income, &expense); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return income, expense, nil
}

func (r *transactionRepository) GetCategoryCounts(ctx context.Context, userID uuid.UUID) ([]models.CategoryInfo, error) {
	query := `
		SELECT category, type, COUNT(*)
		FROM transactions
		WHERE user_id = $1 AND deleted_at IS NULL
		GROUP BY category, type
		ORDER BY COUNT(*) DESC, category ASC
	`

	rows, err := r.db(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.CategoryInfo, 0)
	for rows.Next() {
		var info models.CategoryInfo
		if err := rows.Scan(&info.Name, &info.Type, &info.Count); err != nil {
			return nil, err
		}
		categories = append(categories, info)
	}
	return categories, rows.Err()
}

func (r *transactionRepository) Update(ctx context.Context, id uuid.UUID, update *models.TransactionUpdate) error {
	query := `
		UPDATE transactions SET
			type = COALESCE($2, type),
			amount = COALESCE($3, amount),
			description = COALESCE($4, description),
			category = COALESCE($5, category),
			account = COALESCE($6, account),
			date = COALESCE($7, date),
			is_recurring = COALESCE($8, is_recurring),
			updated_at = $9
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := r.db(ctx).Exec(ctx, query,
		id, update.Type, update.Amount, update.Description,
		update.Category, update.Account, update.Date, update.IsRecurring,
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

func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE transactions SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.db(ctx).Exec(ctx, query, id, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
