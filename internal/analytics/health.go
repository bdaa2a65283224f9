package analytics

import (
	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

var (
	healthyScore = decimal.NewFromInt(70)
	warningScore = decimal.NewFromInt(40)
)

// ComputeHealth доля сбереженного дохода в процентах, ограничена 0..100.
// Статус по неокругленной доле: 69.6 это еще warning, хотя Score = 70
func ComputeHealth(income, expense decimal.Decimal) models.FinancialHealth {
	ratio := decimal.Zero
	if income.IsPositive() {
		ratio = income.Sub(expense).Div(income).Mul(hundred)
		switch {
		case ratio.IsNegative():
			ratio = decimal.Zero
		case ratio.GreaterThan(hundred):
			ratio = hundred
		}
	}

	status := models.HealthCritical
	switch {
	case ratio.GreaterThanOrEqual(healthyScore):
		status = models.HealthHealthy
	case ratio.GreaterThanOrEqual(warningScore):
		status = models.HealthWarning
	}
	return models.FinancialHealth{Score: int(ratio.Round(0).IntPart()), Status: status}
}
