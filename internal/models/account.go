package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeInvestment AccountType = "investment"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCreditCard, AccountTypeInvestment:
		return true
	}
	return false
}

// Account счет или карта пользователя.
// Для кредитной карты Balance это текущая задолженность
type Account struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	UserID      uuid.UUID        `json:"user_id" db:"user_id"`
	Name        string           `json:"name" db:"name"`
	Type        AccountType      `json:"type" db:"type"`
	Balance     decimal.Decimal  `json:"balance" db:"balance"`
	CreditLimit *decimal.Decimal `json:"credit_limit,omitempty" db:"credit_limit"`
	DueDay      *int             `json:"due_day,omitempty" db:"due_day"` // день месяца 1..31
	Institution string           `json:"institution,omitempty" db:"institution"`
	IsActive    bool             `json:"is_active" db:"is_active"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`

	// Вычисляются на лету
	CreditUsage  float64 `json:"credit_usage,omitempty" db:"-"`   // % использованного лимита
	DaysUntilDue *int    `json:"days_until_due,omitempty" db:"-"` // до ближайшей даты платежа
}

type AccountCreate struct {
	Name        string           `json:"name" binding:"required"`
	Type        AccountType      `json:"type" binding:"required"`
	Balance     decimal.Decimal  `json:"balance"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	DueDay      *int             `json:"due_day"`
	Institution string           `json:"institution"`
}

type AccountUpdate struct {
	Name        *string          `json:"name"`
	Balance     *decimal.Decimal `json:"balance"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	DueDay      *int             `json:"due_day"`
	Institution *string          `json:"institution"`
	IsActive    *bool            `json:"is_active"`
}

type AccountSummary struct {
	TotalBalance     decimal.Decimal     `json:"total_balance"` // без кредитных карт
	TotalCreditLimit decimal.Decimal     `json:"total_credit_limit"`
	TotalCreditUsed  decimal.Decimal     `json:"total_credit_used"`
	AccountsByType   map[AccountType]int `json:"accounts_by_type"`
	Accounts         []Account           `json:"accounts"`
}
