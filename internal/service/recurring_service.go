package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/alligatorO15/fin-dashboard/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidFrequency = errors.New("frequency must be daily, weekly, biweekly, monthly or yearly")
	ErrEmptyNextDate    = errors.New("next date is required")
)

// больше стольких пропущенных повторов за один проход не догоняем
const maxCatchUp = 366

type RecurringService interface {
	Create(ctx context.Context, userID uuid.UUID, input *models.RecurringCreate) (*models.RecurringTransaction, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.RecurringTransaction, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.RecurringTransaction, error)
	Update(ctx context.Context, userID, id uuid.UUID, update *models.RecurringUpdate) (*models.RecurringTransaction, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// ProcessDue создает транзакции по всем наступившим шаблонам и сдвигает NextDate.
	// Возвращает кол-во созданных транзакций
	ProcessDue(ctx context.Context) (int, error)
}

type recurringService struct {
	txManager       repository.TxManager
	recurringRepo   repository.RecurringRepository
	transactionRepo repository.TransactionRepository
	now             func() time.Time
}

func NewRecurringService(txManager repository.TxManager, recurringRepo repository.RecurringRepository, transactionRepo repository.TransactionRepository, now func() time.Time) RecurringService {
	return &recurringService{
		txManager:       txManager,
		recurringRepo:   recurringRepo,
		transactionRepo: transactionRepo,
		now:             now,
	}
}

func (s *recurringService) Create(ctx context.Context, userID uuid.UUID, input *models.RecurringCreate) (*models.RecurringTransaction, error) {
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
	if !input.Frequency.Valid() {
		return nil, ErrInvalidFrequency
	}
	if input.NextDate.IsZero() {
		return nil, ErrEmptyNextDate
	}

	rec := &models.RecurringTransaction{
		UserID:      userID,
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount.Abs(),
		Type:        input.Type,
		Category:    category,
		Account:     strings.TrimSpace(input.Account),
		Frequency:   input.Frequency,
		NextDate:    civilDate(input.NextDate),
	}

	if err := s.recurringRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *recurringService) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.RecurringTransaction, error) {
	return s.owned(ctx, userID, id)
}

func (s *recurringService) GetByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.RecurringTransaction, error) {
	return s.recurringRepo.GetByUserID(ctx, userID, activeOnly)
}

func (s *recurringService) Update(ctx context.Context, userID, id uuid.UUID, update *models.RecurringUpdate) (*models.RecurringTransaction, error) {
	if update.Frequency != nil && !update.Frequency.Valid() {
		return nil, ErrInvalidFrequency
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
	if update.NextDate != nil {
		next := civilDate(*update.NextDate)
		update.NextDate = &next
	}

	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.recurringRepo.Update(ctx, id, update); err != nil {
		return nil, err
	}
	return s.recurringRepo.GetByID(ctx, id)
}

func (s *recurringService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.recurringRepo.Delete(ctx, id)
}

func (s *recurringService) ProcessDue(ctx context.Context) (int, error) {
	today := civilDate(s.now())

	due, err := s.recurringRepo.ListDue(ctx, today)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, rec := range due {
		n, err := s.materialize(ctx, rec, today)
		if err != nil {
			// один сломанный шаблон не останавливает остальные
			log.Error().Err(err).Str("recurring_id", rec.ID.String()).Msg("recurring transaction failed")
			continue
		}
		created += n
	}

	if created > 0 {
		log.Info().Int("created", created).Int("templates", len(due)).Msg("recurring transactions processed")
	}
	return created, nil
}

// materialize транзакция на каждую пропущенную дату до today включительно, в одной транзакции БД
func (s *recurringService) materialize(ctx context.Context, rec models.RecurringTransaction, today time.Time) (int, error) {
	if !rec.Frequency.Valid() {
		return 0, ErrInvalidFrequency
	}

	created := 0
	err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		next := civilDate(rec.NextDate)
		for !next.After(today) && created < maxCatchUp {
			tx := &models.Transaction{
				UserID:      rec.UserID,
				Date:        next,
				Description: rec.Description,
				Amount:      rec.Amount,
				Type:        rec.Type,
				Category:    rec.Category,
				Account:     rec.Account,
				IsRecurring: true,
			}
			if err := s.transactionRepo.Create(txCtx, tx); err != nil {
				return err
			}
			created++
			next = NextOccurrence(next, rec.Frequency)
		}
		return s.recurringRepo.SetNextDate(txCtx, rec.ID, next)
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// NextOccurrence следующая дата повтора. Месяц и год прибавляются календарно,
// день прижимается к концу месяца (31 января + месяц = 28/29 февраля)
func NextOccurrence(t time.Time, freq models.RecurringFrequency) time.Time {
	switch freq {
	case models.FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case models.FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case models.FrequencyBiweekly:
		return t.AddDate(0, 0, 14)
	case models.FrequencyMonthly:
		return dueDate(t.Year(), t.Month()+1, t.Day())
	case models.FrequencyYearly:
		return dueDate(t.Year()+1, t.Month(), t.Day())
	}
	return t
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *recurringService) owned(ctx context.Context, userID, id uuid.UUID) (*models.RecurringTransaction, error) {
	rec, err := s.recurringRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID {
		return nil, ErrForbidden
	}
	return rec, nil
}
