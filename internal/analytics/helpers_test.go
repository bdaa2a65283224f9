package analytics

import (
	"testing"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func expense(date time.Time, category string, amount int64) models.Transaction {
	return models.Transaction{
		ID:       uuid.New(),
		Date:     date,
		Amount:   decimal.NewFromInt(amount),
		Type:     models.TransactionTypeExpense,
		Category: category,
	}
}

func income(date time.Time, amount int64) models.Transaction {
	return models.Transaction{
		ID:       uuid.New(),
		Date:     date,
		Amount:   decimal.NewFromInt(amount),
		Type:     models.TransactionTypeIncome,
		Category: "Salário",
	}
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}
