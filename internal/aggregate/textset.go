// Package aggregate folds per-document extraction results into a single
// deduplicated set per text category.
package aggregate

import (
	"maps"
	"slices"
	"strings"

	"layout-translator/internal/parser"
)

// TextSet is the cumulative state of a scan run. It is owned by a single
// run and must not be shared between goroutines.
type TextSet struct {
	sets map[parser.Category]map[string]struct{}
}

// New returns an empty TextSet.
func New() *TextSet {
	return &TextSet{sets: make(map[parser.Category]map[string]struct{})}
}

// Fold merges every category of result into the set and returns the
// receiver. Values that are empty after trimming are dropped.
func (s *TextSet) Fold(result *parser.ExtractionResult) *TextSet {
	if result == nil {
		return s
	}
	for _, c := range parser.Categories {
		for _, v := range result.Values(c) {
			s.Add(c, v)
		}
	}
	return s
}

// Add inserts a single value.
func (s *TextSet) Add(c parser.Category, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	set, ok := s.sets[c]
	if !ok {
		set = make(map[string]struct{})
		s.sets[c] = set
	}
	set[value] = struct{}{}
}

// Merge folds another TextSet into s.
func (s *TextSet) Merge(other *TextSet) *TextSet {
	for c, set := range other.sets {
		for v := range set {
			s.Add(c, v)
		}
	}
	return s
}

// Contains reports whether value was recorded under c.
func (s *TextSet) Contains(c parser.Category, value string) bool {
	_, ok := s.sets[c][value]
	return ok
}

// Values returns the distinct values of c in lexicographic byte order.
func (s *TextSet) Values(c parser.Category) []string {
	values := slices.Collect(maps.Keys(s.sets[c]))
	slices.SortFunc(values, strings.Compare)
	return values
}

// Len returns the number of distinct values under c.
func (s *TextSet) Len(c parser.Category) int {
	return len(s.sets[c])
}

// Equal reports whether both sets hold the same values in every category.
func (s *TextSet) Equal(other *TextSet) bool {
	for _, c := range parser.Categories {
		if !maps.Equal(s.sets[c], other.sets[c]) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (s *TextSet) Clone() *TextSet {
	return New().Merge(s)
}
