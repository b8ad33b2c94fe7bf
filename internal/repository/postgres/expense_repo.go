package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/speso/speso-backend/internal/domain"
)

// DBTX is the slice of pgx satisfied by both *pgxpool.Pool and pgx.Tx, so
// the same queries run on the pool or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	db DBTX
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: pool}
}

func filterDates(filter domain.ExpenseFilter) (pgtype.Date, pgtype.Date) {
	var from, to pgtype.Date
	from.Time = filter.From
	from.Valid = true
	to.Time = filter.To
	to.Valid = true
	return from, to
}

// FindMatching returns the user's expenses within the date range, newest
// first.
func (r *ExpenseRepository) FindMatching(filter domain.ExpenseFilter, offset, limit int) ([]*domain.Expense, error) {
	ctx := context.Background()
	from, to := filterDates(filter)

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, date, category, amount_cents, description
		FROM expenses
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC, id DESC
		LIMIT $4 OFFSET $5`,
		filter.UserID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

// CountMatching returns the number of expenses within the date range.
func (r *ExpenseRepository) CountMatching(filter domain.ExpenseFilter) (int64, error) {
	ctx := context.Background()
	from, to := filterDates(filter)

	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM expenses
		WHERE user_id = $1 AND date >= $2 AND date <= $3`,
		filter.UserID, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return count, nil
}

// SumAmount returns the minor-unit sum of the matching expenses.
func (r *ExpenseRepository) SumAmount(filter domain.ExpenseFilter) (int64, error) {
	ctx := context.Background()
	from, to := filterDates(filter)

	var sum int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		WHERE user_id = $1 AND date >= $2 AND date <= $3`,
		filter.UserID, from, to).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return sum, nil
}

// SumAmountByCategory returns per-category minor-unit sums.
func (r *ExpenseRepository) SumAmountByCategory(filter domain.ExpenseFilter) (map[string]int64, error) {
	return r.groupedCents(filter, `
		SELECT category, SUM(amount_cents) FROM expenses
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		GROUP BY category`)
}

// AverageAmountByCategory returns per-category minor-unit means, rounded to
// the nearest cent.
func (r *ExpenseRepository) AverageAmountByCategory(filter domain.ExpenseFilter) (map[string]int64, error) {
	return r.groupedCents(filter, `
		SELECT category, CAST(ROUND(AVG(amount_cents)) AS BIGINT) FROM expenses
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		GROUP BY category`)
}

func (r *ExpenseRepository) groupedCents(filter domain.ExpenseFilter, query string) (map[string]int64, error) {
	ctx := context.Background()
	from, to := filterDates(filter)

	rows, err := r.db.Query(ctx, query, filter.UserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("aggregate expenses by category: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var category string
		var cents int64
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("scan category aggregate: %w", err)
		}
		result[category] = cents
	}
	return result, rows.Err()
}

// Save inserts the expense when it has no identity yet, otherwise updates
// all mutable fields of the owned row.
func (r *ExpenseRepository) Save(expense *domain.Expense) (*domain.Expense, error) {
	ctx := context.Background()

	var date pgtype.Date
	date.Time = expense.Date
	date.Valid = true

	saved := *expense
	if expense.ID == 0 {
		err := r.db.QueryRow(ctx, `
			INSERT INTO expenses (user_id, date, category, amount_cents, description)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			expense.UserID, date, expense.Category, expense.Amount.Cents(), expense.Description,
		).Scan(&saved.ID)
		if err != nil {
			return nil, fmt.Errorf("insert expense: %w", err)
		}
		return &saved, nil
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE expenses
		SET date = $1, category = $2, amount_cents = $3, description = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6`,
		date, expense.Category, expense.Amount.Cents(), expense.Description, expense.ID, expense.UserID)
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrExpenseNotFound
	}
	return &saved, nil
}

// Delete removes the expense owned by the user.
func (r *ExpenseRepository) Delete(userID, id int64) error {
	ctx := context.Background()

	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// FindByID retrieves the expense owned by the user.
func (r *ExpenseRepository) FindByID(userID, id int64) (*domain.Expense, error) {
	ctx := context.Background()

	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, date, category, amount_cents, description
		FROM expenses
		WHERE id = $1 AND user_id = $2`,
		id, userID)

	expense, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}
	return expense, nil
}

// DistinctCategories returns every category present in the store, sorted.
func (r *ExpenseRepository) DistinctCategories() ([]string, error) {
	ctx := context.Background()

	rows, err := r.db.Query(ctx, `SELECT DISTINCT category FROM expenses ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// DistinctYears returns the years in which the user recorded expenses,
// newest first.
func (r *ExpenseRepository) DistinctYears(userID int64) ([]int, error) {
	ctx := context.Background()

	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT EXTRACT(YEAR FROM date)::INT AS year
		FROM expenses
		WHERE user_id = $1
		ORDER BY year DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("distinct years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, year)
	}
	return years, rows.Err()
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		expense domain.Expense
		date    pgtype.Date
		cents   int64
	)
	if err := row.Scan(&expense.ID, &expense.UserID, &date, &expense.Category, &cents, &expense.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan expense: %w", err)
	}
	expense.Date = date.Time
	expense.Amount = domain.Cents(cents)
	return &expense, nil
}

// TxRunner implements domain.TxRunner over a pgx pool.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner creates a new TxRunner
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// WithinTx runs fn against a repository bound to one transaction,
// committing on success and rolling back when fn returns an error.
func (t *TxRunner) WithinTx(fn func(repo domain.ExpenseRepository) error) error {
	ctx := context.Background()

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&ExpenseRepository{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
