package testutil

import (
	"sort"

	"github.com/speso/speso-backend/internal/domain"
)

// MockExpenseRepository is an in-memory implementation of
// domain.ExpenseRepository for tests.
type MockExpenseRepository struct {
	Expenses map[int64]*domain.Expense
	nextID   int64

	// Optional overrides for failure injection
	SaveErr        func(expense *domain.Expense) error
	SumAmountFn    func(filter domain.ExpenseFilter) (int64, error)
	SumByCatFn     func(filter domain.ExpenseFilter) (map[string]int64, error)
	AverageByCatFn func(filter domain.ExpenseFilter) (map[string]int64, error)
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{Expenses: make(map[int64]*domain.Expense)}
}

// AddExpense seeds the mock with an expense, assigning an ID when missing.
func (m *MockExpenseRepository) AddExpense(expense *domain.Expense) *domain.Expense {
	if expense.ID == 0 {
		m.nextID++
		expense.ID = m.nextID
	} else if expense.ID > m.nextID {
		m.nextID = expense.ID
	}
	m.Expenses[expense.ID] = expense
	return expense
}

func (m *MockExpenseRepository) matching(filter domain.ExpenseFilter) []*domain.Expense {
	var out []*domain.Expense
	for _, e := range m.Expenses {
		if e.UserID != filter.UserID {
			continue
		}
		if e.Date.Before(filter.From) || e.Date.After(filter.To) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindMatching returns the filtered expenses, newest first.
func (m *MockExpenseRepository) FindMatching(filter domain.ExpenseFilter, offset, limit int) ([]*domain.Expense, error) {
	matches := m.matching(filter)
	if offset >= len(matches) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

// CountMatching returns the number of filtered expenses.
func (m *MockExpenseRepository) CountMatching(filter domain.ExpenseFilter) (int64, error) {
	return int64(len(m.matching(filter))), nil
}

// SumAmount returns the minor-unit sum of the filtered expenses.
func (m *MockExpenseRepository) SumAmount(filter domain.ExpenseFilter) (int64, error) {
	if m.SumAmountFn != nil {
		return m.SumAmountFn(filter)
	}
	var sum int64
	for _, e := range m.matching(filter) {
		sum += e.Amount.Cents()
	}
	return sum, nil
}

// SumAmountByCategory returns per-category minor-unit sums.
func (m *MockExpenseRepository) SumAmountByCategory(filter domain.ExpenseFilter) (map[string]int64, error) {
	if m.SumByCatFn != nil {
		return m.SumByCatFn(filter)
	}
	sums := make(map[string]int64)
	for _, e := range m.matching(filter) {
		sums[e.Category] += e.Amount.Cents()
	}
	return sums, nil
}

// AverageAmountByCategory returns per-category minor-unit means, rounded to
// the nearest cent.
func (m *MockExpenseRepository) AverageAmountByCategory(filter domain.ExpenseFilter) (map[string]int64, error) {
	if m.AverageByCatFn != nil {
		return m.AverageByCatFn(filter)
	}
	sums := make(map[string]int64)
	counts := make(map[string]int64)
	for _, e := range m.matching(filter) {
		sums[e.Category] += e.Amount.Cents()
		counts[e.Category]++
	}
	averages := make(map[string]int64, len(sums))
	for category, sum := range sums {
		n := counts[category]
		averages[category] = (sum + n/2) / n
	}
	return averages, nil
}

// Save inserts or updates an expense. SaveErr, when set, can veto the write
// to simulate persistence failures.
func (m *MockExpenseRepository) Save(expense *domain.Expense) (*domain.Expense, error) {
	if m.SaveErr != nil {
		if err := m.SaveErr(expense); err != nil {
			return nil, err
		}
	}
	saved := *expense
	if saved.ID == 0 {
		m.nextID++
		saved.ID = m.nextID
	}
	m.Expenses[saved.ID] = &saved
	return &saved, nil
}

// Delete removes an expense owned by the user.
func (m *MockExpenseRepository) Delete(userID, id int64) error {
	e, ok := m.Expenses[id]
	if !ok || e.UserID != userID {
		return domain.ErrExpenseNotFound
	}
	delete(m.Expenses, id)
	return nil
}

// FindByID retrieves an expense owned by the user.
func (m *MockExpenseRepository) FindByID(userID, id int64) (*domain.Expense, error) {
	e, ok := m.Expenses[id]
	if !ok || e.UserID != userID {
		return nil, domain.ErrExpenseNotFound
	}
	copied := *e
	return &copied, nil
}

// DistinctCategories returns the categories present in the store, sorted.
func (m *MockExpenseRepository) DistinctCategories() ([]string, error) {
	set := make(map[string]struct{})
	for _, e := range m.Expenses {
		set[e.Category] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// DistinctYears returns the years with expenses for the user, descending.
func (m *MockExpenseRepository) DistinctYears(userID int64) ([]int, error) {
	set := make(map[int]struct{})
	for _, e := range m.Expenses {
		if e.UserID == userID {
			set[e.Date.Year()] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for y := range set {
		out = append(out, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}

// MockTxRunner runs the batch against a snapshot of the wrapped repository
// and only publishes the writes when fn succeeds, mimicking rollback.
type MockTxRunner struct {
	Repo   *MockExpenseRepository
	Began  int
	Rolled int
}

// NewMockTxRunner creates a new MockTxRunner
func NewMockTxRunner(repo *MockExpenseRepository) *MockTxRunner {
	return &MockTxRunner{Repo: repo}
}

// WithinTx implements domain.TxRunner.
func (m *MockTxRunner) WithinTx(fn func(repo domain.ExpenseRepository) error) error {
	m.Began++

	scratch := NewMockExpenseRepository()
	scratch.nextID = m.Repo.nextID
	scratch.SaveErr = m.Repo.SaveErr
	for id, e := range m.Repo.Expenses {
		copied := *e
		scratch.Expenses[id] = &copied
	}

	if err := fn(scratch); err != nil {
		m.Rolled++
		return err
	}

	m.Repo.Expenses = scratch.Expenses
	m.Repo.nextID = scratch.nextID
	return nil
}
