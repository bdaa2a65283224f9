package analytics

import "github.com/alligatorO15/fin-dashboard/internal/models"

// FilterByRange оставляет транзакции внутри диапазона, порядок сохраняется
func FilterByRange(txs []models.Transaction, r models.DateRange) []models.Transaction {
	result := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if r.Contains(tx.Date) {
			result = append(result, tx)
		}
	}
	return result
}
