package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/analytics"
	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/alligatorO15/fin-dashboard/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	historyDays = 30
	recentLimit = 10
)

type AnalyticsService interface {
	// GetAnalytics topN > 0 переопределяет кол-во трендов движка
	GetAnalytics(ctx context.Context, userID uuid.UUID, desc models.PeriodDescriptor, topN int) (*models.AnalyticsReport, error)
	GetDashboard(ctx context.Context, userID uuid.UUID) (*models.Dashboard, error)
	GetCategories(ctx context.Context, userID uuid.UUID) ([]models.CategoryInfo, error)
}

type analyticsService struct {
	repos   *repository.Repositories
	engine  *analytics.Engine
	palette analytics.ColorPalette
	now     func() time.Time
}

func NewAnalyticsService(repos *repository.Repositories, engine *analytics.Engine, palette analytics.ColorPalette, now func() time.Time) AnalyticsService {
	return &analyticsService{
		repos:   repos,
		engine:  engine,
		palette: palette,
		now:     now,
	}
}

// GetAnalytics отчет пересчитывается целиком из всех транзакций пользователя
func (s *analyticsService) GetAnalytics(ctx context.Context, userID uuid.UUID, desc models.PeriodDescriptor, topN int) (*models.AnalyticsReport, error) {
	// некорректный период отсекаем до похода в базу
	if _, err := analytics.ResolvePeriod(desc, s.now()); err != nil {
		return nil, err
	}

	txs, err := s.repos.Transaction.ListByUser(ctx, userID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	report, err := s.engine.Compute(txs, desc)
	if err != nil {
		return nil, err
	}
	if topN > 0 {
		report.Trends = analytics.ExtractTrends(report.Categories, report.Monthly, topN)
	}
	return report, nil
}

func (s *analyticsService) GetDashboard(ctx context.Context, userID uuid.UUID) (*models.Dashboard, error) {
	now := s.now()
	month := analytics.CurrentMonth(now)

	// окно загрузки покрывает и текущий месяц, и историю за 30 дней
	from := now.AddDate(0, 0, -(historyDays - 1))
	if month.From.Before(from) {
		from = month.From
	}

	var (
		income, expense decimal.Decimal
		txs             []models.Transaction
		accounts        []models.Account
		budgets         []models.Budget
		goals           []models.Goal
		recurring       []models.RecurringTransaction
		recent          []models.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		income, expense, err = s.repos.Transaction.GetTotals(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.repos.Transaction.ListByUser(gctx, userID, &from, &now)
		return err
	})
	g.Go(func() error {
		var err error
		accounts, err = s.repos.Account.GetByUserID(gctx, userID, true)
		return err
	})
	g.Go(func() error {
		var err error
		recurring, err = s.repos.Recurring.GetByUserID(gctx, userID, true)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.repos.Budget.GetByUserID(gctx, userID, true)
		return err
	})
	g.Go(func() error {
		active := models.GoalStatusActive
		var err error
		goals, err = s.repos.Goal.GetByUserID(gctx, userID, &active)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.repos.Transaction.GetRecent(gctx, userID, recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	monthTxs := analytics.FilterByRange(txs, month)
	monthIncome, monthExpense := analytics.Totals(monthTxs)
	spending := analytics.AggregateByCategory(monthTxs, s.palette)
	for i := range goals {
		enrichGoal(&goals[i], now)
	}
	for i := range accounts {
		enrichAccount(&accounts[i], now)
	}

	return &models.Dashboard{
		TotalBalance:   income.Sub(expense),
		MonthlyIncome:  monthIncome,
		MonthlyExpense: monthExpense,
		History:        analytics.DailyHistory(txs, now, historyDays),
		Health:         analytics.ComputeHealth(monthIncome, monthExpense),
		Accounts:       accounts,
		Budgets:        analytics.BudgetSpending(budgets, spending),
		Goals:          goals,
		Recurring:      recurring,
		Recent:         recent,
	}, nil
}

// GetCategories категории из транзакций пользователя с токеном цвета
func (s *analyticsService) GetCategories(ctx context.Context, userID uuid.UUID) ([]models.CategoryInfo, error) {
	categories, err := s.repos.Transaction.GetCategoryCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		categories[i].Color = s.palette.ColorFor(categories[i].Name)
	}
	return categories, nil
}
