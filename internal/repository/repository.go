package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// код postgres для нарушения уникальности
const uniqueViolation = "23505"

type Repositories struct {
	TxManager    TxManager
	User         UserRepository
	RefreshToken RefreshTokenRepository
	Transaction  TransactionRepository
	Budget       BudgetRepository
	Goal         GoalRepository
	Account      AccountRepository
	Recurring    RecurringRepository
}

func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		TxManager:    NewTxManager(pool),
		User:         NewUserRepository(pool),
		RefreshToken: NewRefreshTokenRepository(pool),
		Transaction:  NewTransactionRepository(pool),
		Budget:       NewBudgetRepository(pool),
		Goal:         NewGoalRepository(pool),
		Account:      NewAccountRepository(pool),
		Recurring:    NewRecurringRepository(pool),
	}
}

// notFound переводит pgx.ErrNoRows в ErrNotFound, остальные ошибки как есть
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// duplicate переводит нарушение уникального индекса в ErrAlreadyExists
func duplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrAlreadyExists
	}
	return err
}
