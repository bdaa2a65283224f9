package analytics

import (
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

// Engine собирает весь конвейер аналитики. Состояния между вызовами не держит,
// кроме палитры, если передан RegistryPalette
type Engine struct {
	palette ColorPalette
	labeler *MonthLabeler
	topN    int
	now     func() time.Time
}

type Option func(*Engine)

func WithPalette(p ColorPalette) Option {
	return func(e *Engine) {
		if p != nil {
			e.palette = p
		}
	}
}

func WithLabeler(l *MonthLabeler) Option {
	return func(e *Engine) {
		if l != nil {
			e.labeler = l
		}
	}
}

func WithTopN(n int) Option {
	return func(e *Engine) {
		e.topN = n
	}
}

// WithClock подменяет текущее время, нужно для тестов и повторяемых отчетов
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		palette: NewHashPalette(),
		labeler: DefaultMonthLabeler(),
		topN:    DefaultTrendTopN,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute пересчитывает отчет целиком из полного списка транзакций.
// Ошибка только при некорректном описании периода
func (e *Engine) Compute(txs []models.Transaction, desc models.PeriodDescriptor) (*models.AnalyticsReport, error) {
	r, err := ResolvePeriod(desc, e.now())
	if err != nil {
		return nil, err
	}

	filtered := FilterByRange(txs, r)
	categories := AggregateByCategory(filtered, e.palette)
	rollups := BuildMonthlyRollups(filtered, r, e.palette, e.labeler)

	income, expense := Totals(filtered)

	return &models.AnalyticsReport{
		Period:           desc,
		Range:            r,
		TransactionCount: len(filtered),
		TotalIncome:      income,
		TotalExpense:     expense,
		Balance:          income.Sub(expense),
		Categories:       categories,
		Monthly:          rollups,
		Trends:           ExtractTrends(categories, rollups, e.topN),
		Insights:         SynthesizeInsights(categories, rollups, filtered),
	}, nil
}

// Totals суммы доходов и расходов по модулю
func Totals(txs []models.Transaction) (income, expense decimal.Decimal) {
	for _, tx := range txs {
		switch tx.Type {
		case models.TransactionTypeIncome:
			income = income.Add(tx.Magnitude())
		case models.TransactionTypeExpense:
			expense = expense.Add(tx.Magnitude())
		}
	}
	return income, expense
}
