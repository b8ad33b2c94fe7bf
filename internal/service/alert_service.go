package service

import (
	"fmt"

	"github.com/speso/speso-backend/internal/domain"
)

// AlertService produces overspending alerts by comparing a month's
// per-category totals against the configured budget ceilings. The budget
// table is validated at startup; the service never runs without one.
type AlertService struct {
	summaryService *SummaryService
	budgets        domain.CategoryBudgets
	currencySymbol string
}

// NewAlertService creates a new AlertService
func NewAlertService(summaryService *SummaryService, budgets domain.CategoryBudgets, currencySymbol string) *AlertService {
	return &AlertService{
		summaryService: summaryService,
		budgets:        budgets,
		currencySymbol: currencySymbol,
	}
}

// Generate returns one alert per category whose month total strictly
// exceeds its configured ceiling. Categories without a configured budget
// never alert. Alerts follow the summary's category order.
func (s *AlertService) Generate(userID int64, year, month int) ([]string, error) {
	summary, err := s.summaryService.ComputeCategoryTotals(userID, year, month)
	if err != nil {
		return nil, err
	}

	var alerts []string
	for _, ct := range summary.Categories {
		ceiling, ok := s.budgets.Lookup(ct.Category)
		if !ok {
			continue
		}
		if ct.Value.GreaterThan(ceiling) {
			over := ct.Value.Sub(ceiling)
			alerts = append(alerts, fmt.Sprintf("%s budget exceeded by %s %s", ct.Category, over, s.currencySymbol))
		}
	}

	return alerts, nil
}
