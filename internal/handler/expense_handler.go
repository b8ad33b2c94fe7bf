package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/speso/speso-backend/internal/domain"
	"github.com/speso/speso-backend/internal/middleware"
	"github.com/speso/speso-backend/internal/service"
)

const dateLayout = "2006-01-02"

// ExpenseHandler handles expense-related HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
	importService  *service.ImportService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService, importService *service.ImportService) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		importService:  importService,
	}
}

// ExpenseRequest represents the create/update expense request body
type ExpenseRequest struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ExpenseListResponse is one page of expenses
type ExpenseListResponse struct {
	Data       []ExpenseResponse `json:"data"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalItems int64             `json:"totalItems"`
}

// ImportResponse reports the accepted-row count of a CSV import. Skip
// reasons are operational detail and stay in the logs.
type ImportResponse struct {
	Imported int `json:"imported"`
}

func expenseToResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Date:        e.Date.Format(dateLayout),
		Amount:      e.Amount.String(),
		Description: e.Description,
		Category:    e.Category,
	}
}

// parseExpenseRequest validates the request body into domain values.
func parseExpenseRequest(req *ExpenseRequest) (time.Time, domain.Money, []ValidationError) {
	var errs []ValidationError

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		errs = append(errs, ValidationError{Field: "date", Message: "must be a date in YYYY-MM-DD format"})
	}

	amount, err := domain.ParseMoney(req.Amount)
	if err != nil || !amount.IsPositive() {
		errs = append(errs, ValidationError{Field: "amount", Message: "must be a positive decimal"})
	}

	return date, amount, errs
}

// GetExpenses returns one page of the user's expenses for a month.
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	userID := middleware.GetUserID(c)

	year, month, ok := yearMonthParams(c)
	if !ok {
		return NewValidationError(c, "Invalid period", []ValidationError{
			{Field: "year", Message: "year and month query parameters are required"},
		})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))

	result, err := h.expenseService.List(userID, year, month, page, pageSize)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to list expenses")
		return NewInternalError(c, "Failed to list expenses")
	}

	resp := ExpenseListResponse{
		Data:       make([]ExpenseResponse, 0, len(result.Data)),
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
	}
	for _, e := range result.Data {
		resp.Data = append(resp.Data, expenseToResponse(e))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetExpense returns a single expense owned by the user.
func (h *ExpenseHandler) GetExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	expense, err := h.expenseService.Get(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		log.Error().Err(err).Int64("user_id", userID).Int64("expense_id", id).Msg("Failed to get expense")
		return NewInternalError(c, "Failed to get expense")
	}
	return c.JSON(http.StatusOK, expenseToResponse(expense))
}

// CreateExpense creates a new expense for the user.
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	date, amount, errs := parseExpenseRequest(&req)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid expense", errs)
	}

	expense, err := h.expenseService.Create(userID, date, req.Category, amount, req.Description)
	if err != nil {
		return h.mapExpenseError(c, userID, err, "Failed to create expense")
	}
	return c.JSON(http.StatusCreated, expenseToResponse(expense))
}

// UpdateExpense replaces all fields of an existing expense.
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	date, amount, errs := parseExpenseRequest(&req)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid expense", errs)
	}

	expense, err := h.expenseService.Update(userID, id, date, req.Category, amount, req.Description)
	if err != nil {
		return h.mapExpenseError(c, userID, err, "Failed to update expense")
	}
	return c.JSON(http.StatusOK, expenseToResponse(expense))
}

// DeleteExpense removes an expense owned by the user.
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	if err := h.expenseService.Delete(userID, id); err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		log.Error().Err(err).Int64("user_id", userID).Int64("expense_id", id).Msg("Failed to delete expense")
		return NewInternalError(c, "Failed to delete expense")
	}
	return c.NoContent(http.StatusNoContent)
}

// ImportCSV ingests a CSV feed of expenses uploaded as multipart form data.
func (h *ExpenseHandler) ImportCSV(c echo.Context) error {
	userID := middleware.GetUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "Missing file upload", []ValidationError{
			{Field: "file", Message: "a CSV file is required"},
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to read uploaded file")
	}

	outcome, err := h.importService.Import(userID, file)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("CSV import failed")
		return NewInternalError(c, "Import failed, no rows were saved")
	}

	return c.JSON(http.StatusOK, ImportResponse{Imported: outcome.Imported})
}

// GetCategories returns the distinct categories present in the store.
func (h *ExpenseHandler) GetCategories(c echo.Context) error {
	categories, err := h.expenseService.Categories()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories")
		return NewInternalError(c, "Failed to list categories")
	}
	if categories == nil {
		categories = []string{}
	}
	return c.JSON(http.StatusOK, categories)
}

// GetYears returns the years in which the user recorded expenses.
func (h *ExpenseHandler) GetYears(c echo.Context) error {
	userID := middleware.GetUserID(c)

	years, err := h.expenseService.Years(userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to list years")
		return NewInternalError(c, "Failed to list years")
	}
	if years == nil {
		years = []int{}
	}
	return c.JSON(http.StatusOK, years)
}

func (h *ExpenseHandler) mapExpenseError(c echo.Context, userID int64, err error, internalDetail string) error {
	switch {
	case errors.Is(err, domain.ErrExpenseNotFound):
		return NewNotFoundError(c, "Expense not found")
	case errors.Is(err, domain.ErrUnknownCategory):
		return NewValidationError(c, "Invalid expense", []ValidationError{
			{Field: "category", Message: "is not a configured category"},
		})
	case errors.Is(err, domain.ErrEmptyDescription),
		errors.Is(err, domain.ErrEmptyCategory),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, "Invalid expense", []ValidationError{
			{Field: "expense", Message: err.Error()},
		})
	default:
		log.Error().Err(err).Int64("user_id", userID).Msg(internalDetail)
		return NewInternalError(c, internalDetail)
	}
}

// yearMonthParams parses and validates the year/month query parameters.
// The services trust their inputs, so range checks live here.
func yearMonthParams(c echo.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil || year < 1970 || year > 2100 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}
