package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var goalNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestGoals() (GoalService, *fakeGoalRepo, *fakeTxManager) {
	repo := newFakeGoalRepo()
	txm := &fakeTxManager{}
	return NewGoalService(txm, repo, fixedClock(goalNow)), repo, txm
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestEnrichGoal(t *testing.T) {
	deadline := goalNow.AddDate(0, 0, 92)
	soon := goalNow.AddDate(0, 0, 10)
	past := goalNow.AddDate(0, 0, -1)

	tests := []struct {
		name         string
		goal         models.Goal
		wantProgress float64
		wantDays     int
		wantMonthly  float64
	}{
		{
			name:         "on track",
			goal:         models.Goal{TargetAmount: amount("1000"), SavedAmount: decimal.NewFromInt(400), Deadline: &deadline},
			wantProgress: 40,
			wantDays:     92,
			wantMonthly:  198.52,
		},
		{
			name:         "less than a month left",
			goal:         models.Goal{TargetAmount: amount("1000"), SavedAmount: decimal.NewFromInt(700), Deadline: &soon},
			wantProgress: 70,
			wantDays:     10,
			wantMonthly:  300,
		},
		{
			name:         "overfunded",
			goal:         models.Goal{TargetAmount: amount("100"), SavedAmount: decimal.NewFromInt(250), Deadline: &deadline},
			wantProgress: 100,
			wantDays:     92,
		},
		{
			name:         "deadline passed",
			goal:         models.Goal{TargetAmount: amount("100"), SavedAmount: decimal.NewFromInt(10), Deadline: &past},
			wantProgress: 10,
		},
		{
			name: "open ended",
			goal: models.Goal{SavedAmount: decimal.NewFromInt(10)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := tt.goal
			enrichGoal(&goal, goalNow)

			assert.InDelta(t, tt.wantProgress, goal.Progress, 0.001)
			assert.Equal(t, tt.wantDays, goal.DaysRemaining)
			assert.InDelta(t, tt.wantMonthly, goal.RequiredMonthly.InexactFloat64(), 0.001)
		})
	}
}

func TestGoalCreate(t *testing.T) {
	svc, _, _ := newTestGoals()

	goal, err := svc.Create(context.Background(), uuid.New(), &models.GoalCreate{
		Description:  " Viagem ",
		TargetAmount: amount("5000"),
		SavedAmount:  decimal.NewFromInt(500),
		Recurrence:   models.GoalRecurrenceMonthly,
	})
	require.NoError(t, err)

	assert.Equal(t, "Viagem", goal.Description)
	assert.Equal(t, models.GoalStatusActive, goal.Status)
	assert.InDelta(t, 10.0, goal.Progress, 0.001)

	_, err = svc.Create(context.Background(), uuid.New(), &models.GoalCreate{Description: "x", Recurrence: "weekly"})
	assert.ErrorIs(t, err, ErrInvalidRecurrence)
}

func TestGoalAddContribution_CompletesGoal(t *testing.T) {
	svc, repo, txm := newTestGoals()
	owner := uuid.New()

	goal, err := svc.Create(context.Background(), owner, &models.GoalCreate{
		Description:  "Reserva",
		TargetAmount: amount("1000"),
		SavedAmount:  decimal.NewFromInt(900),
	})
	require.NoError(t, err)

	updated, err := svc.AddContribution(context.Background(), owner, goal.ID, &models.GoalContributionCreate{
		Amount: decimal.NewFromInt(150),
		Date:   goalNow,
	})
	require.NoError(t, err)

	assert.Equal(t, "1050", updated.SavedAmount.String())
	assert.Equal(t, models.GoalStatusCompleted, updated.Status)
	assert.InDelta(t, 100.0, updated.Progress, 0.001)
	assert.Equal(t, 1, txm.calls)
	assert.Len(t, repo.contributions, 1)

	_, err = svc.AddContribution(context.Background(), owner, goal.ID, &models.GoalContributionCreate{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrGoalClosed)
}

func TestGoalAddContribution_Errors(t *testing.T) {
	svc, repo, _ := newTestGoals()
	owner := uuid.New()
	goal, err := svc.Create(context.Background(), owner, &models.GoalCreate{Description: "Carro"})
	require.NoError(t, err)

	_, err = svc.AddContribution(context.Background(), owner, goal.ID, &models.GoalContributionCreate{Amount: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, ErrInvalidContribution)

	_, err = svc.AddContribution(context.Background(), uuid.New(), goal.ID, &models.GoalContributionCreate{Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetContributions(context.Background(), uuid.New(), goal.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	boom := errors.New("write failed")
	repo.failAddSaved = boom
	_, err = svc.AddContribution(context.Background(), owner, goal.ID, &models.GoalContributionCreate{Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, boom)
}

func TestGoalUpdateAndDelete(t *testing.T) {
	svc, _, _ := newTestGoals()
	owner := uuid.New()
	goal, err := svc.Create(context.Background(), owner, &models.GoalCreate{Description: "Curso"})
	require.NoError(t, err)

	description := "Curso de inglês"
	updated, err := svc.Update(context.Background(), owner, goal.ID, &models.GoalUpdate{Description: &description})
	require.NoError(t, err)
	assert.Equal(t, description, updated.Description)

	weekly := "weekly"
	_, err = svc.Update(context.Background(), owner, goal.ID, &models.GoalUpdate{Recurrence: &weekly})
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	assert.ErrorIs(t, svc.Delete(context.Background(), uuid.New(), goal.ID), ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), owner, goal.ID))

	active := models.GoalStatusActive
	goals, err := svc.GetByUserID(context.Background(), owner, &active)
	require.NoError(t, err)
	assert.Empty(t, goals)
}
