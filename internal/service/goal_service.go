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
	ErrInvalidContribution = errors.New("contribution amount must be positive")
	ErrInvalidRecurrence   = errors.New("recurrence must be empty or monthly")
	ErrGoalClosed          = errors.New("goal is not active")
)

// среднее кол-во дней в месяце
var daysPerMonth = decimal.NewFromFloat(30.44)

type GoalService interface {
	Create(ctx context.Context, userID uuid.UUID, input *models.GoalCreate) (*models.Goal, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, status *models.GoalStatus) ([]models.Goal, error)
	Update(ctx context.Context, userID, id uuid.UUID, update *models.GoalUpdate) (*models.Goal, error)
	AddContribution(ctx context.Context, userID, goalID uuid.UUID, input *models.GoalContributionCreate) (*models.Goal, error)
	GetContributions(ctx context.Context, userID, goalID uuid.UUID) ([]models.GoalContribution, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type goalService struct {
	txManager repository.TxManager
	goalRepo  repository.GoalRepository
	now       func() time.Time
}

func NewGoalService(txManager repository.TxManager, goalRepo repository.GoalRepository, now func() time.Time) GoalService {
	return &goalService{
		txManager: txManager,
		goalRepo:  goalRepo,
		now:       now,
	}
}

func (s *goalService) Create(ctx context.Context, userID uuid.UUID, input *models.GoalCreate) (*models.Goal, error) {
	if input.Recurrence != "" && input.Recurrence != models.GoalRecurrenceMonthly {
		return nil, ErrInvalidRecurrence
	}

	goal := &models.Goal{
		UserID:        userID,
		Description:   strings.TrimSpace(input.Description),
		TargetAmount:  input.TargetAmount,
		SavedAmount:   input.SavedAmount,
		Deadline:      input.Deadline,
		Recurrence:    input.Recurrence,
		MonthlyAmount: input.MonthlyAmount,
		Category:      strings.TrimSpace(input.Category),
	}

	if err := s.goalRepo.Create(ctx, goal); err != nil {
		return nil, err
	}

	enrichGoal(goal, s.now())
	return goal, nil
}

func (s *goalService) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error) {
	goal, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	enrichGoal(goal, s.now())
	return goal, nil
}

func (s *goalService) GetByUserID(ctx context.Context, userID uuid.UUID, status *models.GoalStatus) ([]models.Goal, error) {
	goals, err := s.goalRepo.GetByUserID(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	for i := range goals {
		enrichGoal(&goals[i], s.now())
	}
	return goals, nil
}

// enrichGoal вычисляет прогресс, дни до дедлайна и необходимый ежемесячный взнос
func enrichGoal(goal *models.Goal, now time.Time) {
	if goal.TargetAmount != nil && goal.TargetAmount.IsPositive() {
		progress := goal.SavedAmount.Div(*goal.TargetAmount).Mul(decimal.NewFromInt(100)).InexactFloat64()
		switch {
		case progress > 100:
			goal.Progress = 100
		case progress > 0:
			goal.Progress = progress
		}
	}

	if goal.Deadline == nil {
		return
	}

	days := int(goal.Deadline.Sub(now).Hours() / 24)
	if days > 0 {
		goal.DaysRemaining = days
	}

	if goal.TargetAmount == nil || days <= 0 {
		return
	}
	remaining := goal.TargetAmount.Sub(goal.SavedAmount)
	if remaining.IsPositive() {
		months := decimal.NewFromInt(int64(days)).Div(daysPerMonth)
		if months.LessThan(decimal.NewFromInt(1)) {
			months = decimal.NewFromInt(1)
		}
		goal.RequiredMonthly = remaining.Div(months).Round(2)
	}
}

func (s *goalService) Update(ctx context.Context, userID, id uuid.UUID, update *models.GoalUpdate) (*models.Goal, error) {
	if update.Recurrence != nil && *update.Recurrence != "" && *update.Recurrence != models.GoalRecurrenceMonthly {
		return nil, ErrInvalidRecurrence
	}
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}

	if err := s.goalRepo.Update(ctx, id, update); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, userID, id)
}

// AddContribution взнос и увеличение накопленной суммы атомарно
func (s *goalService) AddContribution(ctx context.Context, userID, goalID uuid.UUID, input *models.GoalContributionCreate) (*models.Goal, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidContribution
	}

	contribution := &models.GoalContribution{
		Amount: input.Amount,
		Date:   input.Date,
		Notes:  input.Notes,
	}

	var goal *models.Goal
	err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.owned(txCtx, userID, goalID)
		if err != nil {
			return err
		}
		if current.Status != models.GoalStatusActive {
			return ErrGoalClosed
		}

		if err := s.goalRepo.AddContribution(txCtx, goalID, contribution); err != nil {
			return err
		}
		if err := s.goalRepo.AddSaved(txCtx, goalID, input.Amount); err != nil {
			return err
		}

		goal, err = s.goalRepo.GetByID(txCtx, goalID)
		return err
	})
	if err != nil {
		return nil, err
	}

	enrichGoal(goal, s.now())
	return goal, nil
}

func (s *goalService) GetContributions(ctx context.Context, userID, goalID uuid.UUID) ([]models.GoalContribution, error) {
	if _, err := s.owned(ctx, userID, goalID); err != nil {
		return nil, err
	}
	return s.goalRepo.GetContributions(ctx, goalID)
}

func (s *goalService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.goalRepo.Delete(ctx, id)
}

func (s *goalService) owned(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error) {
	goal, err := s.goalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, ErrForbidden
	}
	return goal, nil
}
