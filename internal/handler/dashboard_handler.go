package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/speso/speso-backend/internal/middleware"
	"github.com/speso/speso-backend/internal/service"
)

// DashboardHandler handles the monthly overview endpoint
type DashboardHandler struct {
	summaryService *service.SummaryService
	alertService   *service.AlertService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(summaryService *service.SummaryService, alertService *service.AlertService) *DashboardHandler {
	return &DashboardHandler{
		summaryService: summaryService,
		alertService:   alertService,
	}
}

// CategoryTotalResponse is one category's spend and share of the month total
type CategoryTotalResponse struct {
	Category   string  `json:"category"`
	Value      string  `json:"value"`
	Percentage float64 `json:"percentage"`
}

// CategoryAverageResponse is one category's mean spend and share of the
// highest category average
type CategoryAverageResponse struct {
	Category     string  `json:"category"`
	Value        string  `json:"value"`
	PercentOfMax float64 `json:"percentOfMax"`
}

// DashboardResponse is the monthly financial overview
type DashboardResponse struct {
	Year             int                       `json:"year"`
	Month            int                       `json:"month"`
	Total            string                    `json:"total"`
	CategoryTotals   []CategoryTotalResponse   `json:"categoryTotals"`
	CategoryAverages []CategoryAverageResponse `json:"categoryAverages"`
	Alerts           []string                  `json:"alerts"`
}

// GetSummary returns the month total, per-category totals and averages, and
// overspending alerts for the requested period.
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)

	year, month, ok := yearMonthParams(c)
	if !ok {
		return NewValidationError(c, "Invalid period", []ValidationError{
			{Field: "year", Message: "year and month query parameters are required"},
		})
	}

	summary, err := h.summaryService.ComputeCategoryTotals(userID, year, month)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to compute category totals")
		return NewInternalError(c, "Failed to compute summary")
	}

	averages, err := h.summaryService.ComputeCategoryAverages(userID, year, month)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to compute category averages")
		return NewInternalError(c, "Failed to compute summary")
	}

	alerts, err := h.alertService.Generate(userID, year, month)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to generate alerts")
		return NewInternalError(c, "Failed to compute summary")
	}
	if alerts == nil {
		alerts = []string{}
	}

	resp := DashboardResponse{
		Year:             year,
		Month:            month,
		Total:            summary.Total.String(),
		CategoryTotals:   make([]CategoryTotalResponse, 0, len(summary.Categories)),
		CategoryAverages: make([]CategoryAverageResponse, 0, len(averages.Categories)),
		Alerts:           alerts,
	}
	for _, ct := range summary.Categories {
		resp.CategoryTotals = append(resp.CategoryTotals, CategoryTotalResponse{
			Category:   ct.Category,
			Value:      ct.Value.String(),
			Percentage: ct.Percentage,
		})
	}
	for _, ca := range averages.Categories {
		resp.CategoryAverages = append(resp.CategoryAverages, CategoryAverageResponse{
			Category:     ca.Category,
			Value:        ca.Value.String(),
			PercentOfMax: ca.PercentOfMax,
		})
	}

	return c.JSON(http.StatusOK, resp)
}
