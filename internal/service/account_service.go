package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/alligatorO15/fin-dashboard/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrEmptyAccountName   = errors.New("account name is required")
	ErrInvalidCreditLimit = errors.New("credit limit must be positive")
	ErrInvalidDueDay      = errors.New("due day must be between 1 and 31")
	ErrCreditOnlyField    = errors.New("credit limit and due day apply to credit cards only")
)

type AccountService interface {
	Create(ctx context.Context, userID uuid.UUID, input *models.AccountCreate) (*models.Account, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Account, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Account, error)
	GetSummary(ctx context.Context, userID uuid.UUID) (*models.AccountSummary, error)
	Update(ctx context.Context, userID, id uuid.UUID, update *models.AccountUpdate) (*models.Account, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type accountService struct {
	accountRepo repository.AccountRepository
	now         func() time.Time
}

func NewAccountService(accountRepo repository.AccountRepository, now func() time.Time) AccountService {
	return &accountService{
		accountRepo: accountRepo,
		now:         now,
	}
}

func (s *accountService) Create(ctx context.Context, userID uuid.UUID, input *models.AccountCreate) (*models.Account, error) {
	if !input.Type.Valid() {
		return nil, ErrInvalidAccountType
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEmptyAccountName
	}
	if err := validateCreditFields(input.Type, input.CreditLimit, input.DueDay); err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:      userID,
		Name:        name,
		Type:        input.Type,
		Balance:     input.Balance,
		CreditLimit: input.CreditLimit,
		DueDay:      input.DueDay,
		Institution: strings.TrimSpace(input.Institution),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	enrichAccount(account, s.now())
	return account, nil
}

func validateCreditFields(accountType models.AccountType, limit *decimal.Decimal, dueDay *int) error {
	if accountType != models.AccountTypeCreditCard && (limit != nil || dueDay != nil) {
		return ErrCreditOnlyField
	}
	if limit != nil && !limit.IsPositive() {
		return ErrInvalidCreditLimit
	}
	if dueDay != nil && (*dueDay < 1 || *dueDay > 31) {
		return ErrInvalidDueDay
	}
	return nil
}

func (s *accountService) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Account, error) {
	account, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	enrichAccount(account, s.now())
	return account, nil
}

func (s *accountService) GetByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Account, error) {
	accounts, err := s.accountRepo.GetByUserID(ctx, userID, activeOnly)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		enrichAccount(&accounts[i], s.now())
	}
	return accounts, nil
}

func (s *accountService) GetSummary(ctx context.Context, userID uuid.UUID) (*models.AccountSummary, error) {
	accounts, err := s.GetByUserID(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	summary := &models.AccountSummary{
		AccountsByType: make(map[models.AccountType]int),
		Accounts:       accounts,
	}

	for _, acc := range accounts {
		summary.AccountsByType[acc.Type]++

		if acc.Type != models.AccountTypeCreditCard {
			summary.TotalBalance = summary.TotalBalance.Add(acc.Balance)
			continue
		}
		summary.TotalCreditUsed = summary.TotalCreditUsed.Add(acc.Balance.Abs())
		if acc.CreditLimit != nil {
			summary.TotalCreditLimit = summary.TotalCreditLimit.Add(*acc.CreditLimit)
		}
	}

	return summary, nil
}

// enrichAccount процент использованного лимита и дни до платежа по карте
func enrichAccount(account *models.Account, now time.Time) {
	if account.CreditLimit != nil && account.CreditLimit.IsPositive() {
		account.CreditUsage = account.Balance.Abs().Div(*account.CreditLimit).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	if account.DueDay != nil {
		days := daysUntilDue(*account.DueDay, now)
		account.DaysUntilDue = &days
	}
}

// daysUntilDue если день платежа в этом месяце уже прошел, считаем до следующего.
// В коротких месяцах день прижимается к последнему числу
func daysUntilDue(dueDay int, now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	due := dueDate(today.Year(), today.Month(), dueDay)
	if due.Before(today) {
		due = dueDate(today.Year(), today.Month()+1, dueDay)
	}
	return int(due.Sub(today).Hours() / 24)
}

func dueDate(year int, month time.Month, day int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func (s *accountService) Update(ctx context.Context, userID, id uuid.UUID, update *models.AccountUpdate) (*models.Account, error) {
	current, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, ErrEmptyAccountName
		}
		update.Name = &name
	}
	if err := validateCreditFields(current.Type, update.CreditLimit, update.DueDay); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Update(ctx, id, update); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, userID, id)
}

func (s *accountService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.accountRepo.Delete(ctx, id)
}

func (s *accountService) owned(ctx context.Context, userID, id uuid.UUID) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, ErrForbidden
	}
	return account, nil
}
