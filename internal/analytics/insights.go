package analytics

import (
	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

// SynthesizeInsights сводка по периоду. nil означает "инсайтов нет":
// за период нет расходов или нет транзакций вообще
func SynthesizeInsights(categories []models.CategorySpending, rollups []models.MonthlyRollup, txs []models.Transaction) *models.AnalyticsInsights {
	if len(categories) == 0 || len(txs) == 0 {
		return nil
	}

	insights := &models.AnalyticsInsights{
		TopCategory:    categories[0],
		LargestExpense: largestExpense(txs),
		GrowthLeader:   models.NoGrowthLeader,
	}

	if n := len(rollups); n > 0 {
		var income, expense decimal.Decimal
		for _, rollup := range rollups {
			income = income.Add(rollup.Income)
			expense = expense.Add(rollup.Expense)
		}
		months := decimal.NewFromInt(int64(n))
		insights.AverageMonthlyIncome = income.Div(months)
		insights.AverageMonthlyExpense = expense.Div(months)
		insights.AverageMonthlySavings = insights.AverageMonthlyIncome.Sub(insights.AverageMonthlyExpense)
	}

	if leader, growth, ok := growthLeader(rollups); ok {
		insights.GrowthLeader = leader
		insights.GrowthPercent = growth
	}
	return insights
}

// первая транзакция с максимальным модулем суммы
func largestExpense(txs []models.Transaction) models.Transaction {
	var largest models.Transaction
	found := false
	for _, tx := range txs {
		if tx.Type != models.TransactionTypeExpense {
			continue
		}
		if !found || tx.Magnitude().GreaterThan(largest.Magnitude()) {
			largest = tx
			found = true
		}
	}
	return largest
}

// growthLeader сравнивает последний месяц со средним по всем предыдущим.
// Побеждает строго наибольший положительный рост, при равенстве первая в порядке последнего месяца
func growthLeader(rollups []models.MonthlyRollup) (string, decimal.Decimal, bool) {
	if len(rollups) < 2 {
		return "", decimal.Zero, false
	}

	last := rollups[len(rollups)-1]
	prior := rollups[:len(rollups)-1]
	priorMonths := decimal.NewFromInt(int64(len(prior)))

	var (
		leader string
		best   decimal.Decimal
		found  bool
	)
	for _, category := range last.Categories {
		var priorTotal decimal.Decimal
		for _, rollup := range prior {
			if spent, ok := findCategory(rollup.Categories, category.Category); ok {
				priorTotal = priorTotal.Add(spent.Total)
			}
		}
		priorMean := priorTotal.Div(priorMonths)

		// категория без истории не считается растущей
		growth := decimal.Zero
		if priorMean.IsPositive() {
			growth = category.Total.Sub(priorMean).Div(priorMean).Mul(hundred)
		}

		if growth.IsPositive() && (!found || growth.GreaterThan(best)) {
			leader = category.Category
			best = growth
			found = true
		}
	}
	return leader, best, found
}
