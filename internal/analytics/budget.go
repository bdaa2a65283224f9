package analytics

import (
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

// BudgetSpending заполняет Spent, Remaining и SpentPercent по уже агрегированным расходам.
// Бюджет привязан к имени категории, совпадение точное
func BudgetSpending(budgets []models.Budget, categories []models.CategorySpending) []models.Budget {
	result := make([]models.Budget, len(budgets))
	for i, budget := range budgets {
		spent := decimal.Zero
		if spending, ok := findCategory(categories, budget.Category); ok {
			spent = spending.Total
		}

		budget.Spent = spent
		budget.Remaining = budget.Limit.Sub(spent)
		budget.SpentPercent = 0
		if budget.Limit.IsPositive() {
			budget.SpentPercent = spent.Div(budget.Limit).Mul(hundred).InexactFloat64()
		}
		result[i] = budget
	}
	return result
}

// CurrentMonth диапазон текущего календарного месяца, в нем считаются бюджеты
func CurrentMonth(now time.Time) models.DateRange {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return models.DateRange{From: start, To: start.AddDate(0, 1, -1)}
}
