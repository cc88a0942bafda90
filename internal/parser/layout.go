package parser

import (
	"regexp"
	"slices"
)

// LayoutParser extracts user-visible texts from Android layout XML.
type LayoutParser struct{}

func NewLayoutParser() *LayoutParser { return &LayoutParser{} }

func (p *LayoutParser) CanParse(ext string) bool {
	return ext == ".xml"
}

func (p *LayoutParser) Parse(filePath string, content string) *ExtractionResult {
	result := Extract(content)
	result.FilePath = filePath
	return result
}

// layoutPatterns are matched independently against the raw document, so a
// truncated or malformed file still yields whatever matches it contains.
var layoutPatterns = []struct {
	category Category
	re       *regexp.Regexp
}{
	{StringReference, regexp.MustCompile(`@string/([\p{L}\p{N}_]+)`)},
	{LiteralText, regexp.MustCompile(`android:text="([^"]+)"`)},
	{AccessibilityDescription, regexp.MustCompile(`android:contentDescription="([^"]+)"`)},
	{Hint, regexp.MustCompile(`android:hint="([^"]+)"`)},
	{Title, regexp.MustCompile(`android:title="([^"]+)"`)},
}

// Extract runs every category pattern over content.
func Extract(content string) *ExtractionResult {
	var found []Occurrence
	for _, p := range layoutPatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(content, -1) {
			found = append(found, Occurrence{
				Category: p.category,
				Value:    content[loc[2]:loc[3]],
				Offset:   loc[0],
			})
		}
	}

	// Stable so that overlapping matches keep pattern order.
	slices.SortStableFunc(found, func(a, b Occurrence) int {
		return a.Offset - b.Offset
	})

	result := NewResult("")
	for _, o := range found {
		result.add(o)
	}
	return result
}
