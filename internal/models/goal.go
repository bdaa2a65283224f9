package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusCancelled GoalStatus = "cancelled"
)

const GoalRecurrenceMonthly = "monthly"

// Goal финансовая цель, TargetAmount пустой для бессрочных накоплений
type Goal struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	UserID        uuid.UUID        `json:"user_id" db:"user_id"`
	Description   string           `json:"description" db:"description"`
	TargetAmount  *decimal.Decimal `json:"target_amount" db:"target_amount"`
	SavedAmount   decimal.Decimal  `json:"saved_amount" db:"saved_amount"`
	Deadline      *time.Time       `json:"deadline" db:"deadline"`
	Recurrence    string           `json:"recurrence,omitempty" db:"recurrence"` // "monthly" или пусто
	MonthlyAmount *decimal.Decimal `json:"monthly_amount" db:"monthly_amount"`
	Category      string           `json:"category,omitempty" db:"category"`
	Status        GoalStatus       `json:"status" db:"status"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
	CompletedAt   *time.Time       `json:"completed_at" db:"completed_at"`

	// Вычисляются на лету
	Progress        float64         `json:"progress" db:"-"`
	DaysRemaining   int             `json:"days_remaining" db:"-"`
	RequiredMonthly decimal.Decimal `json:"required_monthly" db:"-"`
}

type GoalCreate struct {
	Description   string           `json:"description" binding:"required"`
	TargetAmount  *decimal.Decimal `json:"target_amount"`
	SavedAmount   decimal.Decimal  `json:"saved_amount"`
	Deadline      *time.Time       `json:"deadline"`
	Recurrence    string           `json:"recurrence"`
	MonthlyAmount *decimal.Decimal `json:"monthly_amount"`
	Category      string           `json:"category"`
}

type GoalUpdate struct {
	Description   *string          `json:"description"`
	TargetAmount  *decimal.Decimal `json:"target_amount"`
	Deadline      *time.Time       `json:"deadline"`
	Recurrence    *string          `json:"recurrence"`
	MonthlyAmount *decimal.Decimal `json:"monthly_amount"`
	Category      *string          `json:"category"`
	Status        *GoalStatus      `json:"status"`
}

type GoalContribution struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	GoalID    uuid.UUID       `json:"goal_id" db:"goal_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Date      time.Time       `json:"date" db:"date"`
	Notes     string          `json:"notes" db:"notes"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type GoalContributionCreate struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Date   time.Time       `json:"date"`
	Notes  string          `json:"notes"`
}
