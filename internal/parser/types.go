package parser

import (
	"slices"
	"strings"
)

// Category identifies the kind of user-visible text found in a layout document.
type Category int

const (
	StringReference Category = iota
	LiteralText
	AccessibilityDescription
	Hint
	Title
)

// Categories lists every category in report order.
var Categories = []Category{
	StringReference,
	LiteralText,
	AccessibilityDescription,
	Hint,
	Title,
}

func (c Category) String() string {
	switch c {
	case StringReference:
		return "string_reference"
	case LiteralText:
		return "hardcoded_text"
	case AccessibilityDescription:
		return "content_description"
	case Hint:
		return "hint_text"
	case Title:
		return "title_text"
	default:
		return "unknown"
	}
}

// Label is the human-readable plural used in summaries.
func (c Category) Label() string {
	switch c {
	case StringReference:
		return "String references"
	case LiteralText:
		return "Hardcoded texts"
	case AccessibilityDescription:
		return "Content descriptions"
	case Hint:
		return "Hint texts"
	case Title:
		return "Title texts"
	default:
		return "Unknown"
	}
}

// Occurrence is a single piece of text pulled out of a layout.
type Occurrence struct {
	// Category is the kind of text matched.
	Category Category
	// Value is the bare resource name for string references and the
	// exact attribute value otherwise.
	Value string
	// Offset is the byte offset of the match in the document.
	Offset int
}

// ExtractionResult holds the texts found in a single document, deduplicated
// per category.
type ExtractionResult struct {
	// FilePath identifies the source document. Empty for in-memory content.
	FilePath string

	occurrences []Occurrence
	sets        map[Category]map[string]struct{}
}

// NewResult returns an empty result for the given document.
func NewResult(filePath string) *ExtractionResult {
	return &ExtractionResult{
		FilePath: filePath,
		sets:     make(map[Category]map[string]struct{}),
	}
}

func (r *ExtractionResult) add(o Occurrence) {
	r.occurrences = append(r.occurrences, o)
	set, ok := r.sets[o.Category]
	if !ok {
		set = make(map[string]struct{})
		r.sets[o.Category] = set
	}
	set[o.Value] = struct{}{}
}

// Occurrences returns every match in document order, duplicates included.
func (r *ExtractionResult) Occurrences() []Occurrence {
	return slices.Clone(r.occurrences)
}

// Values returns the distinct values of a category in lexicographic order.
func (r *ExtractionResult) Values(c Category) []string {
	values := make([]string, 0, len(r.sets[c]))
	for v := range r.sets[c] {
		values = append(values, v)
	}
	slices.SortFunc(values, strings.Compare)
	return values
}

// Len returns the number of distinct values in a category.
func (r *ExtractionResult) Len(c Category) int {
	return len(r.sets[c])
}

// Empty reports whether nothing was extracted.
func (r *ExtractionResult) Empty() bool {
	return len(r.occurrences) == 0
}

// Parser is the interface for UI-definition document extractors.
type Parser interface {
	// CanParse returns true if this parser handles the given file extension.
	CanParse(ext string) bool
	// Parse extracts user-visible texts from already loaded document content.
	Parse(filePath string, content string) *ExtractionResult
}
