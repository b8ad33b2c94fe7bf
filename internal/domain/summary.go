package domain

// CategoryTotal is one category's spend within a period, annotated with its
// share of the period total. Percentages are derived display ratios and are
// rounded independently per category; they are not guaranteed to sum to 100.
type CategoryTotal struct {
	Category   string
	Value      Money
	Percentage float64
}

// MonthlySummary is the aggregation result for one user+year+month window.
// Categories are ordered ascending by name so iteration is deterministic.
type MonthlySummary struct {
	Year       int
	Month      int
	Total      Money
	Categories []CategoryTotal
}

// CategoryAverage is one category's mean expense within a period, annotated
// with its percentage of the highest category average in the same result.
type CategoryAverage struct {
	Category     string
	Value        Money
	PercentOfMax float64
}

// CategoryAverages is the per-category average result for one
// user+year+month window, ordered ascending by category name.
type CategoryAverages struct {
	Year       int
	Month      int
	Categories []CategoryAverage
}
