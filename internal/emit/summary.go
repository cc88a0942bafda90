package emit

import (
	"fmt"
	"io"

	"layout-translator/internal/aggregate"
	"layout-translator/internal/keys"
	"layout-translator/internal/parser"
)

// WriteSummary prints per-category counts followed by the sorted reference
// and hardcoded text lists.
func WriteSummary(w io.Writer, set *aggregate.TextSet, m *keys.Mapping) error {
	sw := &stickyWriter{w: w}

	sw.printf("Found the following text types:\n")
	for _, c := range parser.Categories {
		sw.printf("  • %s: %d\n", c.Label(), set.Len(c))
	}

	sw.printf("\nString references found:\n")
	for _, name := range set.Values(parser.StringReference) {
		sw.printf("  • @string/%s\n", name)
	}

	sw.printf("\nHardcoded texts found:\n")
	for _, e := range m.Entries(parser.LiteralText) {
		sw.printf("  • \"%s\"\n", e.Source)
	}

	return sw.err
}

// stickyWriter remembers the first write error so the summary can be
// written without checking every line.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}
