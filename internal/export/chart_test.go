package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/analytics"
	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleReport(t *testing.T) *models.AnalyticsReport {
	t.Helper()
	tx := func(month time.Month, typ models.TransactionType, category string, amount int64) models.Transaction {
		return models.Transaction{
			ID:       uuid.New(),
			Date:     time.Date(2025, month, 10, 0, 0, 0, 0, time.UTC),
			Amount:   decimal.NewFromInt(amount),
			Type:     typ,
			Category: category,
		}
	}
	txs := []models.Transaction{
		tx(time.January, models.TransactionTypeIncome, "Salário", 5000),
		tx(time.January, models.TransactionTypeExpense, "Alimentação", 800),
		tx(time.February, models.TransactionTypeExpense, "Transporte", 200),
		tx(time.March, models.TransactionTypeIncome, "Salário", 5000),
		tx(time.March, models.TransactionTypeExpense, "Alimentação", 950),
	}

	now := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	engine := analytics.NewEngine(analytics.WithClock(func() time.Time { return now }))
	from := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	report, err := engine.Compute(txs, models.PeriodDescriptor{From: &from, To: &now})
	require.NoError(t, err)
	return report
}

func TestRenderTrendChart(t *testing.T) {
	report := sampleReport(t)

	png, err := RenderTrendChart(report.Trends)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRenderMonthlyChart(t *testing.T) {
	report := sampleReport(t)

	png, err := RenderMonthlyChart(report.Monthly)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRenderMonthlyChart_FlatZeroData(t *testing.T) {
	rollups := []models.MonthlyRollup{{Month: "2025-01"}, {Month: "2025-02"}}

	png, err := RenderMonthlyChart(rollups)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRender_NotEnoughData(t *testing.T) {
	_, err := RenderTrendChart(nil)
	assert.ErrorIs(t, err, ErrNotEnoughData)

	_, err = RenderTrendChart([]models.CategoryTrendSeries{{Category: "x", Points: []models.TrendPoint{{Month: "2025-01"}}}})
	assert.ErrorIs(t, err, ErrNotEnoughData)

	_, err = RenderMonthlyChart([]models.MonthlyRollup{{Month: "2025-01"}})
	assert.ErrorIs(t, err, ErrNotEnoughData)
}

func TestTokenColor(t *testing.T) {
	assert.Equal(t, tokenColor(analytics.ChartColors[1], 0), tokenColor("unknown", 1))
}
