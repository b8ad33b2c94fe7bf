package service

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/speso/speso-backend/internal/domain"
	"github.com/speso/speso-backend/internal/testutil"
)

var testCategories = domain.NewCategorySet([]string{"Groceries", "Transport"})

// recordingReporter captures row outcomes for assertions.
type recordingReporter struct {
	skips    []skipEvent
	finished bool
}

type skipEvent struct {
	line   int
	reason SkipReason
}

func (r *recordingReporter) RowSkipped(_ uuid.UUID, line int, _ string, reason SkipReason) {
	r.skips = append(r.skips, skipEvent{line: line, reason: reason})
}

func (r *recordingReporter) RunFinished(_ uuid.UUID, _ int64, _ *ImportOutcome) {
	r.finished = true
}

// trackedReadCloser reports whether Close was called.
type trackedReadCloser struct {
	io.Reader
	closed bool
}

func (t *trackedReadCloser) Close() error {
	t.closed = true
	return nil
}

func newImportFixture() (*testutil.MockExpenseRepository, *recordingReporter, *ImportService) {
	repo := testutil.NewMockExpenseRepository()
	reporter := &recordingReporter{}
	return repo, reporter, NewImportService(repo, testCategories, reporter)
}

func TestImport_AcceptsValidRow(t *testing.T) {
	repo, _, service := newImportFixture()

	outcome, err := service.Import(7, io.NopCloser(strings.NewReader(
		"2024-01-15,42.50,Lunch,groceries\n")))
	require.NoError(t, err)
	require.Equal(t, 1, outcome.Imported)
	require.Equal(t, 0, outcome.SkippedTotal())

	require.Len(t, repo.Expenses, 1)
	for _, e := range repo.Expenses {
		require.Equal(t, int64(7), e.UserID)
		require.Equal(t, "2024-01-15", e.Date.Format("2006-01-02"))
		require.Equal(t, int64(4250), e.Amount.Cents())
		require.Equal(t, "Lunch", e.Description)
		// Matching is case-insensitive but the original spelling is stored
		require.Equal(t, "groceries", e.Category)
	}
}

func TestImport_QuotedFields(t *testing.T) {
	repo, _, service := newImportFixture()

	outcome, err := service.Import(1, io.NopCloser(strings.NewReader(
		`2024-01-15,12.00,"Lunch, with friends",Groceries`+"\n")))
	require.NoError(t, err)
	require.Equal(t, 1, outcome.Imported)

	for _, e := range repo.Expenses {
		require.Equal(t, "Lunch, with friends", e.Description)
	}
}

func TestImport_SkipReasons(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want SkipReason
	}{
		{"three fields", "2024-01-15,42.50,Lunch", SkipMalformed},
		{"five fields", "2024-01-15,42.50,Lunch,Groceries,extra", SkipMalformed},
		{"blank line", "", SkipMalformed},
		{"empty description", "2024-01-15,42.50,   ,Groceries", SkipEmptyDescription},
		{"unknown category", "2024-01-15,42.50,Lunch,Rent", SkipUnknownCategory},
		{"bad date", "15/01/2024,42.50,Lunch,Groceries", SkipInvalidData},
		{"bad amount", "2024-01-15,abc,Lunch,Groceries", SkipInvalidData},
		{"negative amount", "2024-01-15,-5.00,Lunch,Groceries", SkipInvalidData},
		{"zero amount", "2024-01-15,0.00,Lunch,Groceries", SkipInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, reporter, service := newImportFixture()

			outcome, err := service.Import(1, io.NopCloser(strings.NewReader(tt.row+"\n")))
			require.NoError(t, err)
			require.Equal(t, 0, outcome.Imported)
			require.Equal(t, 1, outcome.Skipped[tt.want])
			require.Len(t, repo.Expenses, 0)
			require.Len(t, reporter.skips, 1)
			require.Equal(t, tt.want, reporter.skips[0].reason)
		})
	}
}

func TestImport_DeduplicatesWithinRun(t *testing.T) {
	repo, reporter, service := newImportFixture()

	// Same content, category differing only in case
	feed := "2024-01-15,42.50,Lunch,Groceries\n" +
		"2024-01-15,42.50,Lunch,groceries\n"

	outcome, err := service.Import(1, io.NopCloser(strings.NewReader(feed)))
	require.NoError(t, err)
	require.Equal(t, 1, outcome.Imported)
	require.Equal(t, 1, outcome.Skipped[SkipDuplicate])
	require.Len(t, repo.Expenses, 1)

	// The duplicate is the second row
	require.Len(t, reporter.skips, 1)
	require.Equal(t, 2, reporter.skips[0].line)
}

func TestImport_DifferentContentIsNotDuplicate(t *testing.T) {
	repo, _, service := newImportFixture()

	feed := "2024-01-15,42.50,Lunch,Groceries\n" +
		"2024-01-16,42.50,Lunch,Groceries\n" + // different date
		"2024-01-15,42.51,Lunch,Groceries\n" + // different amount
		"2024-01-15,42.50,Dinner,Groceries\n" + // different description
		"2024-01-15,42.50,Lunch,Transport\n" // different category

	outcome, err := service.Import(1, io.NopCloser(strings.NewReader(feed)))
	require.NoError(t, err)
	require.Equal(t, 5, outcome.Imported)
	require.Len(t, repo.Expenses, 5)
}

func TestImport_BadRowsDoNotAbortBatch(t *testing.T) {
	repo, reporter, service := newImportFixture()

	feed := "2024-01-15,10.00,First,Groceries\n" +
		"garbage\n" +
		"2024-01-16,20.00,Second,Transport\n" +
		"2024-99-99,5.00,BadDate,Groceries\n" +
		"2024-01-17,30.00,Third,Groceries\n"

	outcome, err := service.Import(1, io.NopCloser(strings.NewReader(feed)))
	require.NoError(t, err)
	require.Equal(t, 3, outcome.Imported)
	require.Equal(t, 2, outcome.SkippedTotal())
	require.Len(t, repo.Expenses, 3)

	// Skips are reported in input order
	require.Equal(t, []skipEvent{
		{line: 2, reason: SkipMalformed},
		{line: 4, reason: SkipInvalidData},
	}, reporter.skips)
	require.True(t, reporter.finished)
}

func TestImport_ClosesStream(t *testing.T) {
	_, _, service := newImportFixture()

	rc := &trackedReadCloser{Reader: strings.NewReader("2024-01-15,42.50,Lunch,Groceries\n")}
	_, err := service.Import(1, rc)
	require.NoError(t, err)
	require.True(t, rc.closed)
}

func TestImport_PersistenceFailureAbortsAndClosesStream(t *testing.T) {
	repo, _, service := newImportFixture()
	repo.SaveErr = func(*domain.Expense) error {
		return errors.New("connection lost")
	}

	rc := &trackedReadCloser{Reader: strings.NewReader("2024-01-15,42.50,Lunch,Groceries\n")}
	outcome, err := service.Import(1, rc)
	require.Error(t, err)
	require.Nil(t, outcome)
	require.True(t, rc.closed)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("stream reset")
}

func TestImport_ReadErrorPropagates(t *testing.T) {
	_, _, service := newImportFixture()

	rc := &trackedReadCloser{Reader: failingReader{}}
	_, err := service.Import(1, rc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "stream reset")
	require.True(t, rc.closed)
}

func TestImport_AtomicRollsBackOnPersistenceFailure(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	reporter := &recordingReporter{}

	calls := 0
	repo.SaveErr = func(*domain.Expense) error {
		calls++
		if calls == 2 {
			return errors.New("disk full")
		}
		return nil
	}

	runner := testutil.NewMockTxRunner(repo)
	service := NewImportService(repo, testCategories, reporter).WithTxRunner(runner)

	feed := "2024-01-15,10.00,First,Groceries\n" +
		"2024-01-16,20.00,Second,Transport\n"

	outcome, err := service.Import(1, io.NopCloser(strings.NewReader(feed)))
	require.Error(t, err)
	require.Nil(t, outcome)
	require.Equal(t, 1, runner.Rolled)
	require.Len(t, repo.Expenses, 0, "rollback must leave no rows behind")
}

func TestImport_AtomicCommitsWholeBatch(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	reporter := &recordingReporter{}
	runner := testutil.NewMockTxRunner(repo)
	service := NewImportService(repo, testCategories, reporter).WithTxRunner(runner)

	feed := "2024-01-15,10.00,First,Groceries\n" +
		"not,a,row\n" +
		"2024-01-16,20.00,Second,Transport\n"

	outcome, err := service.Import(1, io.NopCloser(strings.NewReader(feed)))
	require.NoError(t, err)
	require.Equal(t, 2, outcome.Imported)
	require.Equal(t, 1, outcome.Skipped[SkipMalformed], "validation skips never roll back")
	require.Equal(t, 0, runner.Rolled)
	require.Len(t, repo.Expenses, 2)
}

func TestImport_IsolatedDedupScopePerRun(t *testing.T) {
	repo, _, service := newImportFixture()

	row := "2024-01-15,42.50,Lunch,Groceries\n"

	first, err := service.Import(1, io.NopCloser(strings.NewReader(row)))
	require.NoError(t, err)
	second, err := service.Import(1, io.NopCloser(strings.NewReader(row)))
	require.NoError(t, err)

	// Dedup is per call: the same row imports again on a second run
	require.Equal(t, 1, first.Imported)
	require.Equal(t, 1, second.Imported)
	require.Equal(t, 0, second.Skipped[SkipDuplicate])
	require.Len(t, repo.Expenses, 2)
}
