package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/analytics"
	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/alligatorO15/fin-dashboard/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrInvalidBudgetLimit = errors.New("budget limit must be positive")
	ErrInvalidAlert       = errors.New("alert percent must be between 1 and 100")
)

const defaultAlertPercent = 80

type BudgetService interface {
	Create(ctx context.Context, userID uuid.UUID, input *models.BudgetCreate) (*models.Budget, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Budget, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Budget, error)
	GetSummary(ctx context.Context, userID uuid.UUID) (*models.BudgetSummary, error)
	GetAlerts(ctx context.Context, userID uuid.UUID) ([]models.BudgetAlert, error)
	Update(ctx context.Context, userID, id uuid.UUID, update *models.BudgetUpdate) (*models.Budget, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type budgetService struct {
	budgetRepo      repository.BudgetRepository
	transactionRepo repository.TransactionRepository
	palette         analytics.ColorPalette
	now             func() time.Time
}

func NewBudgetService(budgetRepo repository.BudgetRepository, transactionRepo repository.TransactionRepository, palette analytics.ColorPalette, now func() time.Time) BudgetService {
	return &budgetService{
		budgetRepo:      budgetRepo,
		transactionRepo: transactionRepo,
		palette:         palette,
		now:             now,
	}
}

func (s *budgetService) Create(ctx context.Context, userID uuid.UUID, input *models.BudgetCreate) (*models.Budget, error) {
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, ErrEmptyCategory
	}
	if !input.Limit.IsPositive() {
		return nil, ErrInvalidBudgetLimit
	}

	budget := &models.Budget{
		UserID:       userID,
		Category:     category,
		Limit:        input.Limit,
		AlertPercent: input.AlertPercent,
	}
	if budget.AlertPercent == 0 {
		budget.AlertPercent = defaultAlertPercent
	}
	if budget.AlertPercent < 0 || budget.AlertPercent > 100 {
		return nil, ErrInvalidAlert
	}

	if err := s.budgetRepo.Create(ctx, budget); err != nil {
		return nil, err
	}

	return s.withSpending(ctx, userID, *budget)
}

func (s *budgetService) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Budget, error) {
	budget, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.withSpending(ctx, userID, *budget)
}

func (s *budgetService) GetByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Budget, error) {
	budgets, err := s.budgetRepo.GetByUserID(ctx, userID, activeOnly)
	if err != nil {
		return nil, err
	}

	spending, err := monthSpending(ctx, s.transactionRepo, s.palette, userID, s.now())
	if err != nil {
		return nil, err
	}
	return analytics.BudgetSpending(budgets, spending), nil
}

func (s *budgetService) GetSummary(ctx context.Context, userID uuid.UUID) (*models.BudgetSummary, error) {
	budgets, err := s.GetByUserID(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	summary := &models.BudgetSummary{
		Budgets: budgets,
	}

	for _, budget := range budgets {
		summary.TotalBudgeted = summary.TotalBudgeted.Add(budget.Limit)
		summary.TotalSpent = summary.TotalSpent.Add(budget.Spent)

		if budget.SpentPercent >= 100 {
			summary.OverBudgetCount++
		}
	}

	summary.TotalRemaining = summary.TotalBudgeted.Sub(summary.TotalSpent)

	return summary, nil
}

func (s *budgetService) GetAlerts(ctx context.Context, userID uuid.UUID) ([]models.BudgetAlert, error) {
	budgets, err := s.GetByUserID(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	alerts := make([]models.BudgetAlert, 0)
	for _, budget := range budgets {
		if budget.SpentPercent < float64(budget.AlertPercent) {
			continue
		}

		alertType := "warning"
		if budget.SpentPercent >= 100 {
			alertType = "exceeded"
		}

		alerts = append(alerts, models.BudgetAlert{
			BudgetID:  budget.ID,
			Category:  budget.Category,
			Limit:     budget.Limit,
			Spent:     budget.Spent,
			Percent:   budget.SpentPercent,
			AlertType: alertType,
		})
	}

	return alerts, nil
}

func (s *budgetService) Update(ctx context.Context, userID, id uuid.UUID, update *models.BudgetUpdate) (*models.Budget, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	if update.Limit != nil && !update.Limit.IsPositive() {
		return nil, ErrInvalidBudgetLimit
	}
	if update.AlertPercent != nil && (*update.AlertPercent <= 0 || *update.AlertPercent > 100) {
		return nil, ErrInvalidAlert
	}
	if update.Category != nil {
		category := strings.TrimSpace(*update.Category)
		if category == "" {
			return nil, ErrEmptyCategory
		}
		update.Category = &category
	}

	if err := s.budgetRepo.Update(ctx, id, update); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, userID, id)
}

func (s *budgetService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.budgetRepo.Delete(ctx, id)
}

func (s *budgetService) owned(ctx context.Context, userID, id uuid.UUID) (*models.Budget, error) {
	budget, err := s.budgetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget.UserID != userID {
		return nil, ErrForbidden
	}
	return budget, nil
}

func (s *budgetService) withSpending(ctx context.Context, userID uuid.UUID, budget models.Budget) (*models.Budget, error) {
	spending, err := monthSpending(ctx, s.transactionRepo, s.palette, userID, s.now())
	if err != nil {
		return nil, err
	}
	return &analytics.BudgetSpending([]models.Budget{budget}, spending)[0], nil
}

// monthSpending расходы по категориям за текущий календарный месяц
func monthSpending(ctx context.Context, repo repository.TransactionRepository, palette analytics.ColorPalette, userID uuid.UUID, now time.Time) ([]models.CategorySpending, error) {
	month := analytics.CurrentMonth(now)
	txs, err := repo.ListByUser(ctx, userID, &month.From, &month.To)
	if err != nil {
		return nil, err
	}
	return analytics.AggregateByCategory(analytics.FilterByRange(txs, month), palette), nil
}
