package service

import (
	"bufio"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/speso/speso-backend/internal/domain"
)

// SkipReason classifies why a CSV row was not imported.
type SkipReason string

const (
	SkipMalformed        SkipReason = "malformed"
	SkipEmptyDescription SkipReason = "empty-description"
	SkipUnknownCategory  SkipReason = "unknown-category"
	SkipDuplicate        SkipReason = "duplicate"
	SkipInvalidData      SkipReason = "invalid-data"
)

// csvDateLayout is the calendar date format expected in import feeds.
const csvDateLayout = "2006-01-02"

// ImportOutcome summarizes one import run. Imported is the only figure
// surfaced to the end user; skip reasons go to the operational log.
type ImportOutcome struct {
	RunID    uuid.UUID
	Imported int
	Skipped  map[SkipReason]int
}

// SkippedTotal returns the number of rows skipped for any reason.
func (o *ImportOutcome) SkippedTotal() int {
	total := 0
	for _, n := range o.Skipped {
		total += n
	}
	return total
}

// ImportReporter receives per-row outcomes during an import run. It
// decouples the pipeline from any particular log transport.
type ImportReporter interface {
	RowSkipped(runID uuid.UUID, line int, raw string, reason SkipReason)
	RunFinished(runID uuid.UUID, userID int64, outcome *ImportOutcome)
}

// ImportService ingests expense rows from a CSV feed: four fields per row
// (date, amount, description, category), no header. Rows are processed
// strictly in order; each row lands in exactly one terminal outcome and a
// bad row never aborts the batch. Duplicate detection is scoped to a single
// call, so concurrent imports do not share state.
type ImportService struct {
	expenseRepo domain.ExpenseRepository
	categories  domain.CategorySet
	reporter    ImportReporter
	txRunner    domain.TxRunner
}

// NewImportService creates a new ImportService
func NewImportService(expenseRepo domain.ExpenseRepository, categories domain.CategorySet, reporter ImportReporter) *ImportService {
	return &ImportService{
		expenseRepo: expenseRepo,
		categories:  categories,
		reporter:    reporter,
	}
}

// WithTxRunner makes Import all-or-nothing: the whole batch runs in one
// transaction and rolls back on a persistence failure. Validation skips are
// expected outcomes and never trigger a rollback.
func (s *ImportService) WithTxRunner(txRunner domain.TxRunner) *ImportService {
	s.txRunner = txRunner
	return s
}

// Import reads rows from rc until end of stream and persists the accepted
// ones for the given user. The stream is closed on every exit path. A
// returned error means the batch failed (read or persistence error), not
// that rows were skipped.
func (s *ImportService) Import(userID int64, rc io.ReadCloser) (*ImportOutcome, error) {
	defer rc.Close()

	outcome := &ImportOutcome{
		RunID:   uuid.New(),
		Skipped: make(map[SkipReason]int),
	}

	run := func(repo domain.ExpenseRepository) error {
		return s.consume(userID, rc, repo, outcome)
	}

	var err error
	if s.txRunner != nil {
		err = s.txRunner.WithinTx(run)
	} else {
		err = run(s.expenseRepo)
	}
	if err != nil {
		return nil, err
	}

	s.reporter.RunFinished(outcome.RunID, userID, outcome)
	return outcome, nil
}

func (s *ImportService) consume(userID int64, r io.Reader, repo domain.ExpenseRepository, outcome *ImportOutcome) error {
	scanner := bufio.NewScanner(r)
	seen := make(map[string]struct{})
	line := 0

	for scanner.Scan() {
		line++
		raw := scanner.Text()

		row, reason := s.classify(raw, seen)
		if reason != "" {
			outcome.Skipped[reason]++
			s.reporter.RowSkipped(outcome.RunID, line, raw, reason)
			continue
		}

		expense := &domain.Expense{
			UserID:      userID,
			Date:        row.date,
			Category:    row.category,
			Amount:      row.amount,
			Description: row.description,
		}
		if _, err := repo.Save(expense); err != nil {
			return fmt.Errorf("import row %d: %w", line, err)
		}
		outcome.Imported++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read import stream: %w", err)
	}
	return nil
}

// parsedRow carries the fields of an accepted row.
type parsedRow struct {
	date        time.Time
	amount      domain.Money
	description string
	category    string
}

// classify runs one row through the validation state machine and returns
// either the parsed row or the single skip reason that terminated it.
func (s *ImportService) classify(raw string, seen map[string]struct{}) (parsedRow, SkipReason) {
	fields, err := csv.NewReader(strings.NewReader(strings.TrimSpace(raw))).Read()
	if err != nil || len(fields) != 4 {
		return parsedRow{}, SkipMalformed
	}

	dateStr, amountStr := fields[0], fields[1]
	description := strings.TrimSpace(fields[2])
	category := strings.TrimSpace(fields[3])
	categoryLower := strings.ToLower(category)

	if description == "" {
		return parsedRow{}, SkipEmptyDescription
	}

	if !s.categories.Contains(categoryLower) {
		return parsedRow{}, SkipUnknownCategory
	}

	// The fingerprint uses the raw date and amount strings: two rows are
	// duplicates when their content matches, whether or not it parses.
	key := rowFingerprint(dateStr, description, amountStr, categoryLower)
	if _, dup := seen[key]; dup {
		return parsedRow{}, SkipDuplicate
	}
	seen[key] = struct{}{}

	date, err := time.Parse(csvDateLayout, strings.TrimSpace(dateStr))
	if err != nil {
		return parsedRow{}, SkipInvalidData
	}
	amount, err := domain.ParseMoney(strings.TrimSpace(amountStr))
	if err != nil || !amount.IsPositive() {
		return parsedRow{}, SkipInvalidData
	}

	return parsedRow{
		date:        date,
		amount:      amount,
		description: description,
		category:    category,
	}, ""
}

// rowFingerprint produces the intra-run de-duplication key: an
// order-sensitive hash over the raw date string, trimmed description, raw
// amount string and lower-cased category.
func rowFingerprint(dateStr, description, amountStr, categoryLower string) string {
	h := sha256.New()
	for _, part := range []string{dateStr, description, amountStr, categoryLower} {
		h.Write([]byte(part))
		h.Write([]byte{0x1f})
	}
	return hex.EncodeToString(h.Sum(nil))
}
