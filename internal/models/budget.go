package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget месячный лимит трат по категории
type Budget struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	UserID       uuid.UUID       `json:"user_id" db:"user_id"`
	Category     string          `json:"category" db:"category"`
	Limit        decimal.Decimal `json:"limit" db:"limit_amount"`
	AlertPercent int             `json:"alert_percent" db:"alert_percent"` // уведомляем если достигло
	IsActive     bool            `json:"is_active" db:"is_active"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`

	// Вычисляются на лету за текущий календарный месяц
	Spent        decimal.Decimal `json:"spent" db:"-"`
	Remaining    decimal.Decimal `json:"remaining" db:"-"`
	SpentPercent float64         `json:"spent_percent" db:"-"`
}

type BudgetCreate struct {
	Category     string          `json:"category" binding:"required"`
	Limit        decimal.Decimal `json:"limit" binding:"required"`
	AlertPercent int             `json:"alert_percent"`
}

type BudgetUpdate struct {
	Category     *string          `json:"category"`
	Limit        *decimal.Decimal `json:"limit"`
	AlertPercent *int             `json:"alert_percent"`
	IsActive     *bool            `json:"is_active"`
}

type BudgetSummary struct {
	TotalBudgeted   decimal.Decimal `json:"total_budgeted"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	TotalRemaining  decimal.Decimal `json:"total_remaining"`
	OverBudgetCount int             `json:"over_budget_count"`
	Budgets         []Budget        `json:"budgets"`
}

type BudgetAlert struct {
	BudgetID  uuid.UUID       `json:"budget_id"`
	Category  string          `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
	Spent     decimal.Decimal `json:"spent"`
	Percent   float64         `json:"percent"`
	AlertType string          `json:"alert_type"` // warning | exceeded
}
