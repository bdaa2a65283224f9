package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodPreset именованный период для отчетов
type PeriodPreset string

const (
	PeriodLast3Months PeriodPreset = "last-3-months"
	PeriodLast6Months PeriodPreset = "last-6-months"
	PeriodLastYear    PeriodPreset = "last-year"
	PeriodAllTime     PeriodPreset = "all-time" // с эпохи до текущего момента
)

// NoGrowthLeader значение когда ни одна категория не растет
const NoGrowthLeader = "none"

// PeriodDescriptor либо пресет, либо явная пара дат
// если заданы обе даты, пресет игнорируется
type PeriodDescriptor struct {
	Preset PeriodPreset `json:"preset,omitempty"`
	From   *time.Time   `json:"from,omitempty"`
	To     *time.Time   `json:"to,omitempty"`
}

// DateRange обе границы включительно, To покрывает весь день
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains сравнивает календарные дни, время суток не учитывается
func (r DateRange) Contains(t time.Time) bool {
	day := civilDay(t)
	return !day.Before(civilDay(r.From)) && !day.After(civilDay(r.To))
}

// MonthSpan кол-во календарных месяцев от месяца From до месяца To включительно.
// Для перевернутого диапазона 0
func (r DateRange) MonthSpan() int {
	if civilDay(r.From).After(civilDay(r.To)) {
		return 0
	}
	return (r.To.Year()-r.From.Year())*12 + int(r.To.Month()) - int(r.From.Month()) + 1
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CategorySpending расходы по одной категории за период
type CategorySpending struct {
	Category     string          `json:"category"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
	Percentage   decimal.Decimal `json:"percentage"` // доля от общего объема в % = (Total / GrandTotal) × 100
	Color        string          `json:"color"`      // токен цвета, не инструкция рендеринга
	Transactions []Transaction   `json:"transactions"`
}

// MonthlyRollup итоги за календарный месяц
type MonthlyRollup struct {
	Month      string             `json:"month"` // "2025-01"
	Label      string             `json:"label"` // "Janeiro 2025"
	Income     decimal.Decimal    `json:"income"`
	Expense    decimal.Decimal    `json:"expense"`
	Balance    decimal.Decimal    `json:"balance"` // Income - Expense
	Categories []CategorySpending `json:"categories"`
}

// CategoryTrendSeries динамика категории, точки выровнены по месяцам отчета
type CategoryTrendSeries struct {
	Category string       `json:"category"`
	Color    string       `json:"color"`
	Points   []TrendPoint `json:"points"`
}

// представляет точку на графике тренда
type TrendPoint struct {
	Month  string          `json:"month"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"` // сумма за этот месяц, 0 если трат не было
}

type AnalyticsInsights struct {
	TopCategory           CategorySpending `json:"top_category"`
	LargestExpense        Transaction      `json:"largest_expense"`
	AverageMonthlyExpense decimal.Decimal  `json:"average_monthly_expense"`
	AverageMonthlyIncome  decimal.Decimal  `json:"average_monthly_income"`
	AverageMonthlySavings decimal.Decimal  `json:"average_monthly_savings"` // может быть отрицательной
	GrowthLeader          string           `json:"growth_leader"`           // NoGrowthLeader если роста нет
	GrowthPercent         decimal.Decimal  `json:"growth_percent"`
}

// AnalyticsReport полный результат одного прогона аналитики
type AnalyticsReport struct {
	Period           PeriodDescriptor      `json:"period"`
	Range            DateRange             `json:"range"`
	TransactionCount int                   `json:"transaction_count"`
	TotalIncome      decimal.Decimal       `json:"total_income"`
	TotalExpense     decimal.Decimal       `json:"total_expense"`
	Balance          decimal.Decimal       `json:"balance"`
	Categories       []CategorySpending    `json:"categories"`
	Monthly          []MonthlyRollup       `json:"monthly"`
	Trends           []CategoryTrendSeries `json:"trends"`
	Insights         *AnalyticsInsights    `json:"insights"` // null если за период нет данных
}

// DailyFlow движение денег за один день
type DailyFlow struct {
	Date    string          `json:"date"` // "2025-01-31"
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"
)

// FinancialHealth оценка соотношения доходов и расходов за месяц
type FinancialHealth struct {
	Score  int          `json:"score"` // 0..100
	Status HealthStatus `json:"status"`
}

// CategoryInfo категория из транзакций пользователя
type CategoryInfo struct {
	Name  string          `json:"name"`
	Type  TransactionType `json:"type"`
	Color string          `json:"color"`
	Count int             `json:"count"`
}

// Dashboard главный экран
type Dashboard struct {
	TotalBalance   decimal.Decimal        `json:"total_balance"`
	MonthlyIncome  decimal.Decimal        `json:"monthly_income"`
	MonthlyExpense decimal.Decimal        `json:"monthly_expense"`
	History        []DailyFlow            `json:"history"`
	Health         FinancialHealth        `json:"health"`
	Accounts       []Account              `json:"accounts"`
	Budgets        []Budget               `json:"budgets"`
	Goals          []Goal                 `json:"goals"`
	Recurring      []RecurringTransaction `json:"recurring"`
	Recent         []Transaction          `json:"recent"`
}
