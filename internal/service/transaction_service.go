package service

import (
	"context"
	"errors"
	"strings"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/alligatorO15/fin-dashboard/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAmount          = errors.New("amount must not be zero")
	ErrEmptyCategory          = errors.New("category is required")
)

type TransactionService interface {
	Create(ctx context.Context, userID uuid.UUID, input *models.TransactionCreate) (*models.Transaction, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error)
	GetByFilter(ctx context.Context, userID uuid.UUID, filter *models.TransactionFilter) (*models.TransactionList, error)
	Update(ctx context.Context, userID, id uuid.UUID, update *models.TransactionUpdate) (*models.Transaction, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type transactionService struct {
	txManager       repository.TxManager
	transactionRepo repository.TransactionRepository
}

func NewTransactionService(txManager repository.TxManager, transactionRepo repository.TransactionRepository) TransactionService {
	return &transactionService{
		txManager:       txManager,
		transactionRepo: transactionRepo,
	}
}

func (s *transactionService) Create(ctx context.Context, userID uuid.UUID, input *models.TransactionCreate) (*models.Transaction, error) {
	if !input.Type.Valid() {
		return nil, ErrInvalidTransactionType
	}
	if input.Amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, ErrEmptyCategory
	}

	// знак задает тип, в базе храним модуль
	tx := &models.Transaction{
		UserID:      userID,
		Date:        input.Date,
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount.Abs(),
		Type:        input.Type,
		Category:    category,
		Account:     strings.TrimSpace(input.Account),
		IsRecurring: input.IsRecurring,
	}

	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, ErrForbidden
	}
	return tx, nil
}

func (s *transactionService) GetByFilter(ctx context.Context, userID uuid.UUID, filter *models.TransactionFilter) (*models.TransactionList, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, ErrInvalidTransactionType
	}
	return s.transactionRepo.GetByFilter(ctx, userID, filter)
}

func (s *transactionService) Update(ctx context.Context, userID, id uuid.UUID, update *models.TransactionUpdate) (*models.Transaction, error) {
	if update.Type != nil && !update.Type.Valid() {
		return nil, ErrInvalidTransactionType
	}
	if update.Amount != nil {
		if update.Amount.IsZero() {
			return nil, ErrInvalidAmount
		}
		abs := update.Amount.Abs()
		update.Amount = &abs
	}
	if update.Category != nil {
		category := strings.TrimSpace(*update.Category)
		if category == "" {
			return nil, ErrEmptyCategory
		}
		update.Category = &category
	}

	var updated *models.Transaction
	// проверка владельца и запись в одной транзакции
	err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.GetByID(txCtx, userID, id); err != nil {
			return err
		}
		if err := s.transactionRepo.Update(txCtx, id, update); err != nil {
			return err
		}

		var err error
		updated, err = s.transactionRepo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *transactionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.GetByID(txCtx, userID, id); err != nil {
			return err
		}
		return s.transactionRepo.Delete(txCtx, id)
	})
}
