package analytics

import (
	"sort"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type categoryBucket struct {
	category     string
	total        decimal.Decimal
	transactions []models.Transaction
}

// AggregateByCategory группирует расходы по точному имени категории.
// "Food" и "food" это разные категории: нормализация строк задача источника данных.
// Пустой вход или нулевая сумма дают пустой список, деления на ноль нет
func AggregateByCategory(txs []models.Transaction, palette ColorPalette) []models.CategorySpending {
	if palette == nil {
		palette = NewHashPalette()
	}

	// упорядоченное отображение: ключ -> индекс в buckets
	index := make(map[string]int)
	var buckets []*categoryBucket
	var grandTotal decimal.Decimal

	for _, tx := range txs {
		if tx.Type != models.TransactionTypeExpense {
			continue
		}
		amount := tx.Magnitude()

		i, ok := index[tx.Category]
		if !ok {
			i = len(buckets)
			index[tx.Category] = i
			buckets = append(buckets, &categoryBucket{category: tx.Category})
		}
		b := buckets[i]
		b.total = b.total.Add(amount)
		b.transactions = append(b.transactions, tx)
		grandTotal = grandTotal.Add(amount)
	}

	result := make([]models.CategorySpending, 0, len(buckets))
	if !grandTotal.IsPositive() {
		return result
	}

	// проценты считаем только когда известны все суммы
	for _, b := range buckets {
		result = append(result, models.CategorySpending{
			Category:     b.category,
			Total:        b.total,
			Count:        len(b.transactions),
			Percentage:   b.total.Mul(hundred).Div(grandTotal),
			Color:        palette.ColorFor(b.category),
			Transactions: b.transactions,
		})
	}

	sortCategorySpending(result)
	return result
}

// сортируем по сумме в порядке убывания, при равенстве по имени
func sortCategorySpending(items []models.CategorySpending) {
	sort.SliceStable(items, func(i, j int) bool {
		if cmp := items[i].Total.Cmp(items[j].Total); cmp != 0 {
			return cmp > 0
		}
		return items[i].Category < items[j].Category
	})
}

// findCategory ищет категорию в уже агрегированном списке
func findCategory(items []models.CategorySpending, category string) (models.CategorySpending, bool) {
	for _, item := range items {
		if item.Category == category {
			return item, true
		}
	}
	return models.CategorySpending{}, false
}
