package analytics

import (
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
)

// BuildMonthlyRollups строит по одному итогу на каждый месяц диапазона, включая пустые месяцы.
// txs должны быть уже отфильтрованы по диапазону
func BuildMonthlyRollups(txs []models.Transaction, r models.DateRange, palette ColorPalette, labeler *MonthLabeler) []models.MonthlyRollup {
	if labeler == nil {
		labeler = DefaultMonthLabeler()
	}

	span := r.MonthSpan()
	rollups := make([]models.MonthlyRollup, 0, span)
	if span == 0 {
		return rollups
	}

	// раскладываем транзакции по ключу месяца за один проход
	byMonth := make(map[string][]models.Transaction, span)
	for _, tx := range txs {
		key := tx.MonthKey()
		byMonth[key] = append(byMonth[key], tx)
	}

	first := time.Date(r.From.Year(), r.From.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < span; i++ {
		month := first.AddDate(0, i, 0)
		key := month.Format("2006-01")
		monthTxs := byMonth[key]

		income, expense := Totals(monthTxs)
		rollups = append(rollups, models.MonthlyRollup{
			Month:      key,
			Label:      labeler.Label(month),
			Income:     income,
			Expense:    expense,
			Balance:    income.Sub(expense),
			Categories: AggregateByCategory(monthTxs, palette),
		})
	}
	return rollups
}
