package service

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogReporter writes import row outcomes to a zerolog logger.
type LogReporter struct {
	logger zerolog.Logger
}

// NewLogReporter creates a new LogReporter
func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// RowSkipped logs a single skipped row with its reason.
func (r *LogReporter) RowSkipped(runID uuid.UUID, line int, raw string, reason SkipReason) {
	r.logger.Warn().
		Str("run_id", runID.String()).
		Int("line", line).
		Str("row", raw).
		Str("reason", string(reason)).
		Msg("import row skipped")
}

// RunFinished logs the summary of a completed import run.
func (r *LogReporter) RunFinished(runID uuid.UUID, userID int64, outcome *ImportOutcome) {
	r.logger.Info().
		Str("run_id", runID.String()).
		Int64("user_id", userID).
		Int("imported", outcome.Imported).
		Int("skipped", outcome.SkippedTotal()).
		Msg("import finished")
}
