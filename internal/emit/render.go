// Package emit renders a key mapping into the artifacts consumed when
// updating DynamicStringManager.
package emit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"layout-translator/internal/keys"
	"layout-translator/internal/parser"
)

// Format selects the artifact layout.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown format %q (want text or json)", s)
	}
}

const textPreamble = `// Auto-generated from layout files
// Add these to DynamicStringManager.kt in the appStrings map

`

// literalEscaper keeps multi-line attribute values on a single mapping line.
// Android escapes already in the layout (\' or \n) are written as found.
var literalEscaper = strings.NewReplacer(
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

var sectionHeaders = map[parser.Category]string{
	parser.StringReference: "// String references from layouts:",
	parser.LiteralText:     "// Hardcoded texts from layouts:",
}

// Render dispatches to the renderer for f.
func Render(m *keys.Mapping, f Format) ([]byte, error) {
	if f == FormatJSON {
		return RenderJSON(m)
	}
	return RenderText(m), nil
}

// RenderText produces the mapping in the form pasted into the appStrings
// map. Categories without entries are left out.
func RenderText(m *keys.Mapping) []byte {
	var buf bytes.Buffer
	buf.WriteString(textPreamble)

	for _, c := range keys.MappedCategories {
		entries := m.Entries(c)
		if len(entries) == 0 {
			continue
		}
		buf.WriteString(sectionHeaders[c])
		buf.WriteByte('\n')
		for _, e := range entries {
			fmt.Fprintf(&buf, "\"%s\" -> \"%s\"\n", literalEscaper.Replace(e.Key), literalEscaper.Replace(e.Value))
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

type jsonDocument struct {
	StringReferences []keys.Entry `json:"string_references,omitempty"`
	HardcodedTexts   []keys.Entry `json:"hardcoded_texts,omitempty"`
}

// RenderJSON produces the same mapping as an indented JSON document.
func RenderJSON(m *keys.Mapping) ([]byte, error) {
	doc := jsonDocument{
		StringReferences: m.Entries(parser.StringReference),
		HardcodedTexts:   m.Entries(parser.LiteralText),
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode JSON: %w", err)
	}

	return buf.Bytes(), nil
}
