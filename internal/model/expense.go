package model

import (
	"regexp"
	"time"
)

// ExpenseType は経費種別を表す。
type ExpenseType string

const (
	// ExpenseRent は家賃を示す。
	ExpenseRent ExpenseType = "RENT"
	// ExpenseOther はその他経費を示す。デフォルト値。
	ExpenseOther ExpenseType = "OTHER"
)

// IsValid はExpenseTypeが定義済みの値であるかを返す。
func (t ExpenseType) IsValid() bool {
	switch t {
	case ExpenseRent, ExpenseOther:
		return true
	}
	return false
}

// monthPattern は経費月の形式（'YYYY-MM'）。
var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// IsValidExpenseMonth は経費月が'YYYY-MM'形式であるかを返す。
func IsValidExpenseMonth(month string) bool {
	return monthPattern.MatchString(month)
}

// Expense は月次経費を表す。
type Expense struct {
	ID          string
	Type        ExpenseType
	Description string
	Amount      float64
	Month       string // 'YYYY-MM'
	CreatedAt   time.Time
}
