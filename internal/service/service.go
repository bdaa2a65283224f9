package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/analytics"
	"github.com/alligatorO15/fin-dashboard/internal/config"
	"github.com/alligatorO15/fin-dashboard/internal/ratelimit"
	"github.com/alligatorO15/fin-dashboard/internal/repository"
)

var (
	// ErrNotFound ресурс не существует или принадлежит другому пользователю
	ErrNotFound      = repository.ErrNotFound
	ErrAlreadyExists = repository.ErrAlreadyExists
	ErrForbidden     = errors.New("access denied")
)

type Services struct {
	Auth        AuthService
	User        UserService
	Transaction TransactionService
	Budget      BudgetService
	Goal        GoalService
	Account     AccountService
	Recurring   RecurringService
	Analytics   AnalyticsService
	Command     CommandService
}

// Deps внешние зависимости сервисов, которые собираются в main
type Deps struct {
	Engine    *analytics.Engine
	Palette   analytics.ColorPalette
	Assistant AssistantClient
	Limiter   *ratelimit.Store // лимит команд на пользователя
	Now       func() time.Time
}

func NewServices(repos *repository.Repositories, cfg *config.Config, deps Deps) *Services {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Palette == nil {
		deps.Palette = analytics.NewHashPalette()
	}
	if deps.Engine == nil {
		deps.Engine = analytics.NewEngine(analytics.WithPalette(deps.Palette), analytics.WithClock(deps.Now))
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NewStore(cfg.CommandRateLimit, cfg.RateLimitWindow)
	}

	return &Services{
		Auth:        NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:        NewUserService(repos.User),
		Transaction: NewTransactionService(repos.TxManager, repos.Transaction),
		Budget:      NewBudgetService(repos.Budget, repos.Transaction, deps.Palette, deps.Now),
		Goal:        NewGoalService(repos.TxManager, repos.Goal, deps.Now),
		Account:     NewAccountService(repos.Account, deps.Now),
		Recurring:   NewRecurringService(repos.TxManager, repos.Recurring, repos.Transaction, deps.Now),
		Analytics:   NewAnalyticsService(repos, deps.Engine, deps.Palette, deps.Now),
		Command:     NewCommandService(repos.User, deps.Assistant, deps.Limiter),
	}
}

// NewEngine собирает движок аналитики из конфига: палитра, локаль подписей месяцев, top-N трендов
func NewEngine(cfg *config.Config) (*analytics.Engine, analytics.ColorPalette, error) {
	var palette analytics.ColorPalette
	switch cfg.CategoryColors {
	case "", "hash":
		palette = analytics.NewHashPalette()
	case "registry":
		palette = analytics.NewRegistryPalette(nil)
	default:
		return nil, nil, fmt.Errorf("unknown category color mode %q", cfg.CategoryColors)
	}

	labeler, err := analytics.NewMonthLabeler(cfg.LabelLocale)
	if err != nil {
		return nil, nil, err
	}

	engine := analytics.NewEngine(
		analytics.WithPalette(palette),
		analytics.WithLabeler(labeler),
		analytics.WithTopN(cfg.TrendTopN),
	)
	return engine, palette, nil
}
