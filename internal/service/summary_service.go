package service

import (
	"fmt"
	"sort"

	"github.com/speso/speso-backend/internal/domain"
	"github.com/speso/speso-backend/internal/util"
)

// SummaryService computes per-month expense aggregates for one user. It is
// read-only and stateless; callers are expected to pass a validated month
// (1-12). An empty month yields a zero total and no categories, not an error.
type SummaryService struct {
	expenseRepo domain.ExpenseRepository
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(expenseRepo domain.ExpenseRepository) *SummaryService {
	return &SummaryService{expenseRepo: expenseRepo}
}

func monthFilter(userID int64, year, month int) domain.ExpenseFilter {
	from, to := util.MonthRange(year, month)
	return domain.ExpenseFilter{UserID: userID, From: from, To: to}
}

// ComputeTotal returns the sum of all expenses in the given month.
func (s *SummaryService) ComputeTotal(userID int64, year, month int) (domain.Money, error) {
	cents, err := s.expenseRepo.SumAmount(monthFilter(userID, year, month))
	if err != nil {
		return domain.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return domain.Cents(cents), nil
}

// ComputeCategoryTotals returns per-category sums for the given month, each
// annotated with its percentage of the month total. The total is derived
// from the per-category sums themselves, so the result is internally
// consistent even if concurrent writes land between store queries.
func (s *SummaryService) ComputeCategoryTotals(userID int64, year, month int) (*domain.MonthlySummary, error) {
	byCategory, err := s.expenseRepo.SumAmountByCategory(monthFilter(userID, year, month))
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", err)
	}

	summary := &domain.MonthlySummary{Year: year, Month: month}

	var totalCents int64
	for _, cents := range byCategory {
		totalCents += cents
	}
	summary.Total = domain.Cents(totalCents)

	for _, category := range sortedKeys(byCategory) {
		cents := byCategory[category]
		percentage := 0.0
		if totalCents > 0 {
			percentage = float64(cents) / float64(totalCents) * 100
		}
		summary.Categories = append(summary.Categories, domain.CategoryTotal{
			Category:   category,
			Value:      domain.Cents(cents),
			Percentage: percentage,
		})
	}

	return summary, nil
}

// ComputeCategoryAverages returns the mean expense per category for the
// given month; each entry carries its percentage of the highest category
// average in the same result.
func (s *SummaryService) ComputeCategoryAverages(userID int64, year, month int) (*domain.CategoryAverages, error) {
	byCategory, err := s.expenseRepo.AverageAmountByCategory(monthFilter(userID, year, month))
	if err != nil {
		return nil, fmt.Errorf("average expenses by category: %w", err)
	}

	averages := &domain.CategoryAverages{Year: year, Month: month}

	var maxCents int64
	for _, cents := range byCategory {
		if cents > maxCents {
			maxCents = cents
		}
	}

	for _, category := range sortedKeys(byCategory) {
		cents := byCategory[category]
		percentage := 0.0
		if maxCents > 0 {
			percentage = float64(cents) / float64(maxCents) * 100
		}
		averages.Categories = append(averages.Categories, domain.CategoryAverage{
			Category:     category,
			Value:        domain.Cents(cents),
			PercentOfMax: percentage,
		})
	}

	return averages, nil
}

// sortedKeys orders category names ascending so results iterate
// deterministically.
func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
