package analytics

import (
	"testing"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyHistory(t *testing.T) {
	now := time.Date(2025, time.May, 31, 15, 0, 0, 0, time.UTC)
	txs := []models.Transaction{
		income(time.Date(2025, time.May, 31, 9, 0, 0, 0, time.UTC), 100),
		expense(day(2025, time.May, 30), "Food", 20),
		expense(day(2025, time.May, 30), "Food", -30),
		expense(day(2025, time.May, 2), "Fun", 5),
		expense(day(2025, time.May, 1), "Fun", 999),
	}

	history := DailyHistory(txs, now, 30)

	require.Len(t, history, 3)
	assert.Equal(t, "2025-05-02", history[0].Date)
	assert.Equal(t, "2025-05-30", history[1].Date)
	assertDecimal(t, "50", history[1].Expense)
	assert.True(t, history[1].Income.IsZero())
	assert.Equal(t, "2025-05-31", history[2].Date)
	assertDecimal(t, "100", history[2].Income)

	assert.Len(t, DailyHistory(txs, now, 0), 4)
	assert.Empty(t, DailyHistory(nil, now, 30))
}

func TestComputeHealth(t *testing.T) {
	tests := []struct {
		name    string
		income  int64
		expense int64
		score   int
		status  models.HealthStatus
	}{
		{"saves most", 1000, 200, 80, models.HealthHealthy},
		{"boundary healthy", 1000, 300, 70, models.HealthHealthy},
		{"warning", 1000, 400, 60, models.HealthWarning},
		{"boundary warning", 1000, 600, 40, models.HealthWarning},
		{"rounded", 3, 1, 67, models.HealthWarning},
		{"rounds up to 70 but stays warning", 1000, 304, 70, models.HealthWarning},
		{"rounds up to 40 but stays critical", 1000, 601, 40, models.HealthCritical},
		{"critical", 1000, 700, 30, models.HealthCritical},
		{"overspent clamps to zero", 1000, 1500, 0, models.HealthCritical},
		{"no income", 0, 100, 0, models.HealthCritical},
		{"no expense", 1000, 0, 100, models.HealthHealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeHealth(decimal.NewFromInt(tt.income), decimal.NewFromInt(tt.expense))
			assert.Equal(t, tt.score, got.Score)
			assert.Equal(t, tt.status, got.Status)
		})
	}
}

func TestBudgetSpending(t *testing.T) {
	d := day(2025, time.January, 10)
	categories := AggregateByCategory([]models.Transaction{
		expense(d, "Food", 150),
		expense(d, "Rent", 900),
	}, nil)
	budgets := []models.Budget{
		{ID: uuid.New(), Category: "Food", Limit: decimal.NewFromInt(200)},
		{ID: uuid.New(), Category: "Fun", Limit: decimal.NewFromInt(100)},
		{ID: uuid.New(), Category: "Rent", Limit: decimal.NewFromInt(600)},
		{ID: uuid.New(), Category: "Gifts"},
	}

	got := BudgetSpending(budgets, categories)

	require.Len(t, got, 4)
	assertDecimal(t, "150", got[0].Spent)
	assertDecimal(t, "50", got[0].Remaining)
	assert.InDelta(t, 75.0, got[0].SpentPercent, 1e-9)

	assert.True(t, got[1].Spent.IsZero())
	assertDecimal(t, "100", got[1].Remaining)
	assert.Zero(t, got[1].SpentPercent)

	assertDecimal(t, "-300", got[2].Remaining)
	assert.InDelta(t, 150.0, got[2].SpentPercent, 1e-9)

	assert.Zero(t, got[3].SpentPercent)

	// исходный срез не меняется
	assert.True(t, budgets[0].Spent.IsZero())
}

func TestCurrentMonth(t *testing.T) {
	r := CurrentMonth(time.Date(2024, time.February, 10, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, day(2024, time.February, 1), r.From)
	assert.Equal(t, day(2024, time.February, 29), r.To)
}
