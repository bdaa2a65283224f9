package analytics

import (
	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

const DefaultTrendTopN = 5

// ExtractTrends берет первые topN категорий периода и строит по ним ряды, выровненные по месяцам.
// categories должны быть уже отсортированы агрегатором
func ExtractTrends(categories []models.CategorySpending, rollups []models.MonthlyRollup, topN int) []models.CategoryTrendSeries {
	if topN <= 0 {
		topN = DefaultTrendTopN
	}
	if len(categories) < topN {
		topN = len(categories)
	}

	series := make([]models.CategoryTrendSeries, 0, topN)
	for _, category := range categories[:topN] {
		points := make([]models.TrendPoint, 0, len(rollups))
		for _, rollup := range rollups {
			amount := decimal.Zero
			if spent, ok := findCategory(rollup.Categories, category.Category); ok {
				amount = spent.Total
			}
			points = append(points, models.TrendPoint{
				Month:  rollup.Month,
				Label:  rollup.Label,
				Amount: amount,
			})
		}
		series = append(series, models.CategoryTrendSeries{
			Category: category.Category,
			Color:    category.Color,
			Points:   points,
		})
	}
	return series
}
