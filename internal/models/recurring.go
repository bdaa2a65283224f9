package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RecurringFrequency string

const (
	FrequencyDaily    RecurringFrequency = "daily"
	FrequencyWeekly   RecurringFrequency = "weekly"
	FrequencyBiweekly RecurringFrequency = "biweekly"
	FrequencyMonthly  RecurringFrequency = "monthly"
	FrequencyYearly   RecurringFrequency = "yearly"
)

func (f RecurringFrequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringTransaction шаблон, по которому в NextDate создается обычная транзакция
type RecurringTransaction struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	UserID      uuid.UUID          `json:"user_id" db:"user_id"`
	Description string             `json:"description" db:"description"`
	Amount      decimal.Decimal    `json:"amount" db:"amount"`
	Type        TransactionType    `json:"type" db:"type"`
	Category    string             `json:"category" db:"category"`
	Account     string             `json:"account,omitempty" db:"account"`
	Frequency   RecurringFrequency `json:"frequency" db:"frequency"`
	NextDate    time.Time          `json:"next_date" db:"next_date"`
	IsActive    bool               `json:"is_active" db:"is_active"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" db:"updated_at"`
}

type RecurringCreate struct {
	Description string             `json:"description" binding:"required"`
	Amount      decimal.Decimal    `json:"amount" binding:"required"`
	Type        TransactionType    `json:"type" binding:"required"`
	Category    string             `json:"category" binding:"required"`
	Account     string             `json:"account"`
	Frequency   RecurringFrequency `json:"frequency" binding:"required"`
	NextDate    time.Time          `json:"next_date" binding:"required"`
}

type RecurringUpdate struct {
	Description *string             `json:"description"`
	Amount      *decimal.Decimal    `json:"amount"`
	Category    *string             `json:"category"`
	Frequency   *RecurringFrequency `json:"frequency"`
	NextDate    *time.Time          `json:"next_date"`
	IsActive    *bool               `json:"is_active"`
}
