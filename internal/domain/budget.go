package domain

import "strings"

// CategoryBudgets maps a category name to its configured monthly ceiling.
// Loaded once at startup and immutable afterwards; a missing entry means
// the category is simply not budgeted.
type CategoryBudgets map[string]Money

// Lookup returns the ceiling for a category and whether one is configured.
func (b CategoryBudgets) Lookup(category string) (Money, bool) {
	ceiling, ok := b[category]
	return ceiling, ok
}

// CategorySet is the bounded set of valid expense categories. Matching is
// case-insensitive; the configured spelling is kept for display.
type CategorySet struct {
	names   []string
	byLower map[string]string
}

// NewCategorySet builds a set from the configured category names.
func NewCategorySet(names []string) CategorySet {
	set := CategorySet{byLower: make(map[string]string, len(names))}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		lower := strings.ToLower(name)
		if _, dup := set.byLower[lower]; dup {
			continue
		}
		set.byLower[lower] = name
		set.names = append(set.names, name)
	}
	return set
}

// Contains reports whether name matches a configured category,
// ignoring case.
func (s CategorySet) Contains(name string) bool {
	_, ok := s.byLower[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Names returns the configured categories in configuration order.
func (s CategorySet) Names() []string {
	return s.names
}

// Len returns the number of configured categories.
func (s CategorySet) Len() int {
	return len(s.names)
}
