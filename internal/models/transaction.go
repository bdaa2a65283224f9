package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Category и Account это свободные строки, не ссылки на справочники
type Transaction struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	Date        time.Time       `json:"date" db:"date"`
	Description string          `json:"description" db:"description"`
	Amount      decimal.Decimal `json:"amount" db:"amount"` // для расходов может прийти со знаком минус, аналитика берет модуль
	Type        TransactionType `json:"type" db:"type"`
	Category    string          `json:"category" db:"category"`
	Account     string          `json:"account" db:"account"` // счет или карта: "Nubank", "Cartão Visa"
	IsRecurring bool            `json:"is_recurring" db:"is_recurring"`
	//время аудит
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Magnitude возвращает сумму без знака
func (t Transaction) Magnitude() decimal.Decimal {
	return t.Amount.Abs()
}

// MonthKey ключ месяца в формате YYYY-MM
func (t Transaction) MonthKey() string {
	return t.Date.Format("2006-01")
}

type TransactionCreate struct {
	Date        time.Time       `json:"date" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Type        TransactionType `json:"type" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Account     string          `json:"account"`
	IsRecurring bool            `json:"is_recurring"`
}

type TransactionUpdate struct {
	Date        *time.Time       `json:"date"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Type        *TransactionType `json:"type"`
	Category    *string          `json:"category"`
	Account     *string          `json:"account"`
	IsRecurring *bool            `json:"is_recurring"`
}

type TransactionFilter struct {
	Categories []string         `form:"categories"` // любая из перечисленных
	Type       *TransactionType `form:"type"`
	DateFrom   *time.Time       `form:"date_from"`  //транзакции с этой даты
	DateTo     *time.Time       `form:"date_to"`    // по эту дату
	AmountMin  *decimal.Decimal `form:"amount_min"` //мин сумма
	AmountMax  *decimal.Decimal `form:"amount_max"` //макс сумма
	Search     string           `form:"search"`     //по description или category
	Page       int              `form:"page"`       //пагинация номер стр
	Limit      int              `form:"limit"`      //пагинация кол-во на стр
	SortBy     string           `form:"sort_by"`    //?sort_by=date
	SortOrder  string           `form:"sort_order"` //?sort_order=desc
}

// структура пагинированного ответа
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Total        int64         `json:"total"` //всего транзакций
	Page         int           `json:"page"`
	Limit        int           `json:"limit"`
	TotalPages   int           `json:"total_pages"` //всего страниц
}
