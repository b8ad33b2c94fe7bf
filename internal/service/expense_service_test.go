package service

import (
	"errors"
	"testing"
	"time"

	"github.com/speso/speso-backend/internal/domain"
	"github.com/speso/speso-backend/internal/testutil"
)

func newExpenseFixture() (*testutil.MockExpenseRepository, *ExpenseService) {
	repo := testutil.NewMockExpenseRepository()
	categories := domain.NewCategorySet([]string{"Groceries", "Transport"})
	return repo, NewExpenseService(repo, categories)
}

func TestCreateExpense(t *testing.T) {
	repo, service := newExpenseFixture()

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	expense, err := service.Create(1, date, " Groceries ", domain.Cents(4250), " Lunch ")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if expense.ID == 0 {
		t.Error("persisted expense must have an identity")
	}
	if expense.Description != "Lunch" || expense.Category != "Groceries" {
		t.Errorf("fields not trimmed: %+v", expense)
	}
	if len(repo.Expenses) != 1 {
		t.Errorf("expected 1 stored expense, got %d", len(repo.Expenses))
	}
}

func TestCreateExpense_UnknownCategory(t *testing.T) {
	_, service := newExpenseFixture()

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	_, err := service.Create(1, date, "Rent", domain.Cents(100), "Lunch")
	if !errors.Is(err, domain.ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestCreateExpense_InvalidFields(t *testing.T) {
	_, service := newExpenseFixture()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	if _, err := service.Create(1, date, "Groceries", domain.Cents(0), "Lunch"); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("zero amount: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := service.Create(1, date, "Groceries", domain.Cents(100), "  "); !errors.Is(err, domain.ErrEmptyDescription) {
		t.Errorf("blank description: expected ErrEmptyDescription, got %v", err)
	}
}

func TestUpdateExpense_PreservesIdentityAndOwner(t *testing.T) {
	repo, service := newExpenseFixture()

	original := repo.AddExpense(&domain.Expense{
		UserID:      1,
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Category:    "Groceries",
		Amount:      domain.Cents(1000),
		Description: "Lunch",
	})

	newDate := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	updated, err := service.Update(1, original.ID, newDate, "Transport", domain.Cents(2000), "Taxi")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if updated.ID != original.ID {
		t.Errorf("identity changed: %d -> %d", original.ID, updated.ID)
	}
	if updated.UserID != 1 {
		t.Errorf("owner changed: %d", updated.UserID)
	}
	if updated.Category != "Transport" || updated.Amount.Cents() != 2000 || updated.Description != "Taxi" {
		t.Errorf("fields not updated: %+v", updated)
	}
	if !updated.Date.Equal(newDate) {
		t.Errorf("date not updated: %v", updated.Date)
	}
}

func TestUpdateExpense_NotOwned(t *testing.T) {
	repo, service := newExpenseFixture()

	other := repo.AddExpense(&domain.Expense{
		UserID:      2,
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Category:    "Groceries",
		Amount:      domain.Cents(1000),
		Description: "Lunch",
	})

	_, err := service.Update(1, other.ID, other.Date, "Groceries", domain.Cents(500), "sneaky")
	if !errors.Is(err, domain.ErrExpenseNotFound) {
		t.Errorf("expected ErrExpenseNotFound, got %v", err)
	}
}

func TestDeleteExpense_ScopedToOwner(t *testing.T) {
	repo, service := newExpenseFixture()

	mine := repo.AddExpense(&domain.Expense{
		UserID: 1, Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Category: "Groceries", Amount: domain.Cents(1000), Description: "Lunch",
	})
	theirs := repo.AddExpense(&domain.Expense{
		UserID: 2, Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Category: "Groceries", Amount: domain.Cents(1000), Description: "Lunch",
	})

	if err := service.Delete(1, theirs.ID); !errors.Is(err, domain.ErrExpenseNotFound) {
		t.Errorf("deleting another user's expense: expected ErrExpenseNotFound, got %v", err)
	}
	if err := service.Delete(1, mine.ID); err != nil {
		t.Errorf("deleting own expense: expected no error, got %v", err)
	}
	if len(repo.Expenses) != 1 {
		t.Errorf("expected 1 remaining expense, got %d", len(repo.Expenses))
	}
}

func TestListExpenses_Pagination(t *testing.T) {
	repo, service := newExpenseFixture()

	for day := 1; day <= 5; day++ {
		repo.AddExpense(&domain.Expense{
			UserID:      1,
			Date:        time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
			Category:    "Groceries",
			Amount:      domain.Cents(int64(day * 100)),
			Description: "day",
		})
	}

	page, err := service.List(1, 2024, 1, 1, 2)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if page.TotalItems != 5 {
		t.Errorf("expected 5 total items, got %d", page.TotalItems)
	}
	if len(page.Data) != 2 {
		t.Fatalf("expected 2 items on the page, got %d", len(page.Data))
	}
	// Newest first
	if page.Data[0].Date.Day() != 5 || page.Data[1].Date.Day() != 4 {
		t.Errorf("expected newest-first order, got days %d, %d",
			page.Data[0].Date.Day(), page.Data[1].Date.Day())
	}

	last, err := service.List(1, 2024, 1, 3, 2)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(last.Data) != 1 {
		t.Errorf("expected 1 item on the last page, got %d", len(last.Data))
	}
}

func TestListExpenses_DefaultsPageSize(t *testing.T) {
	_, service := newExpenseFixture()

	page, err := service.List(1, 2024, 1, 0, 0)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if page.Page != 1 || page.PageSize != domain.DefaultPageSize {
		t.Errorf("expected defaults (1, %d), got (%d, %d)", domain.DefaultPageSize, page.Page, page.PageSize)
	}
}
