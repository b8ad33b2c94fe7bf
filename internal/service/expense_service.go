package service

import (
	"strings"
	"time"

	"github.com/speso/speso-backend/internal/domain"
	"github.com/speso/speso-backend/internal/util"
)

// ExpenseService handles expense CRUD business logic
type ExpenseService struct {
	expenseRepo domain.ExpenseRepository
	categories  domain.CategorySet
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo domain.ExpenseRepository, categories domain.CategorySet) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo, categories: categories}
}

// List returns one page of a user's expenses for the given month.
func (s *ExpenseService) List(userID int64, year, month, page, pageSize int) (*domain.PaginatedExpenses, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	from, to := util.MonthRange(year, month)
	filter := domain.ExpenseFilter{UserID: userID, From: from, To: to}

	items, err := s.expenseRepo.FindMatching(filter, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.expenseRepo.CountMatching(filter)
	if err != nil {
		return nil, err
	}

	return &domain.PaginatedExpenses{
		Data:       items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
	}, nil
}

// Get retrieves a single expense owned by the user.
func (s *ExpenseService) Get(userID, id int64) (*domain.Expense, error) {
	return s.expenseRepo.FindByID(userID, id)
}

// Create validates and persists a new expense for the user.
func (s *ExpenseService) Create(userID int64, date time.Time, category string, amount domain.Money, description string) (*domain.Expense, error) {
	expense := &domain.Expense{
		UserID:      userID,
		Date:        date,
		Category:    strings.TrimSpace(category),
		Amount:      amount,
		Description: strings.TrimSpace(description),
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}
	if !s.categories.Contains(expense.Category) {
		return nil, domain.ErrUnknownCategory
	}
	return s.expenseRepo.Save(expense)
}

// Update replaces all mutable fields of an existing expense, preserving its
// identity and owner.
func (s *ExpenseService) Update(userID, id int64, date time.Time, category string, amount domain.Money, description string) (*domain.Expense, error) {
	existing, err := s.expenseRepo.FindByID(userID, id)
	if err != nil {
		return nil, err
	}

	existing.Date = date
	existing.Category = strings.TrimSpace(category)
	existing.Amount = amount
	existing.Description = strings.TrimSpace(description)

	if err := existing.Validate(); err != nil {
		return nil, err
	}
	if !s.categories.Contains(existing.Category) {
		return nil, domain.ErrUnknownCategory
	}
	return s.expenseRepo.Save(existing)
}

// Delete removes an expense owned by the user.
func (s *ExpenseService) Delete(userID, id int64) error {
	// Verify ownership before deleting
	if _, err := s.expenseRepo.FindByID(userID, id); err != nil {
		return err
	}
	return s.expenseRepo.Delete(userID, id)
}

// Categories returns the distinct categories present in the store.
func (s *ExpenseService) Categories() ([]string, error) {
	return s.expenseRepo.DistinctCategories()
}

// Years returns the years in which the user recorded expenses.
func (s *ExpenseService) Years(userID int64) ([]int, error) {
	return s.expenseRepo.DistinctYears(userID)
}
