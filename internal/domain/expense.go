package domain

import (
	"strings"
	"time"
)

// Expense is a single dated, categorized expense owned by a user.
// ID is zero until the record has been persisted.
type Expense struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Amount      Money     `json:"-"`
	Description string    `json:"description"`
}

// Validate checks the entity invariants: positive amount, non-empty
// description and category, non-zero date.
func (e *Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		return ErrEmptyDescription
	}
	if len(desc) > MaxDescriptionLength {
		return ErrInvalidInput
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// ExpenseFilter narrows queries to one user and an inclusive date range.
type ExpenseFilter struct {
	UserID int64
	From   time.Time
	To     time.Time
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginatedExpenses is one page of expenses plus the total match count.
type PaginatedExpenses struct {
	Data       []*Expense `json:"data"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalItems int64      `json:"totalItems"`
}

// ExpenseRepository is the persistence contract for expenses. Aggregate
// queries return minor units so no floating point touches money in transit.
type ExpenseRepository interface {
	FindMatching(filter ExpenseFilter, offset, limit int) ([]*Expense, error)
	CountMatching(filter ExpenseFilter) (int64, error)
	SumAmount(filter ExpenseFilter) (int64, error)
	SumAmountByCategory(filter ExpenseFilter) (map[string]int64, error)
	AverageAmountByCategory(filter ExpenseFilter) (map[string]int64, error)
	Save(expense *Expense) (*Expense, error)
	Delete(userID, id int64) error
	FindByID(userID, id int64) (*Expense, error)
	DistinctCategories() ([]string, error)
	DistinctYears(userID int64) ([]int, error)
}

// TxRunner runs fn against a repository bound to a single transaction.
// A non-nil error from fn rolls the transaction back.
type TxRunner interface {
	WithinTx(fn func(repo ExpenseRepository) error) error
}
