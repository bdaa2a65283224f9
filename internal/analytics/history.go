package analytics

import (
	"sort"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
)

// DailyHistory движение денег по дням за последние days дней, сегодня включительно.
// В выдаче только дни с операциями, по возрастанию даты. days <= 0 значит без ограничения
func DailyHistory(txs []models.Transaction, now time.Time, days int) []models.DailyFlow {
	if days > 0 {
		txs = FilterByRange(txs, models.DateRange{From: now.AddDate(0, 0, -(days - 1)), To: now})
	}

	index := make(map[string]int)
	history := make([]models.DailyFlow, 0)
	for _, tx := range txs {
		key := tx.Date.Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(history)
			index[key] = i
			history = append(history, models.DailyFlow{Date: key})
		}

		switch tx.Type {
		case models.TransactionTypeIncome:
			history[i].Income = history[i].Income.Add(tx.Magnitude())
		case models.TransactionTypeExpense:
			history[i].Expense = history[i].Expense.Add(tx.Magnitude())
		}
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].Date < history[j].Date
	})
	return history
}
