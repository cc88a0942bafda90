package emit

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"layout-translator/internal/aggregate"
	"layout-translator/internal/keys"
	"layout-translator/internal/parser"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mappingFor(docs ...string) (*aggregate.TextSet, *keys.Mapping) {
	set := aggregate.New()
	for _, d := range docs {
		set.Fold(parser.Extract(d))
	}
	return set, keys.Derive(set)
}

func TestRenderText(t *testing.T) {
	t.Run("Should render both sections", func(t *testing.T) {
		_, m := mappingFor(
			`<Button android:text="Submit" />`,
			`<TextView android:text="@string/welcome_message" />`,
		)

		want := `// Auto-generated from layout files
// Add these to DynamicStringManager.kt in the appStrings map

// String references from layouts:
"welcome message" -> "TODO: Add translation for welcome_message"

// Hardcoded texts from layouts:
"submit" -> "Submit"

`
		assert.Equal(t, want, string(RenderText(m)))
	})

	t.Run("Should omit sections without surviving entries", func(t *testing.T) {
		_, m := mappingFor(`<TextView android:text=":" />`)

		out := string(RenderText(m))
		assert.NotContains(t, out, "Hardcoded texts")
		assert.NotContains(t, out, "String references")
		assert.NotContains(t, out, `":"`)
	})

	t.Run("Should be byte-identical across runs", func(t *testing.T) {
		docs := []string{
			`android:text="Zebra crossing" android:text="Apple pie" @string/b_ref @string/a_ref`,
			`android:text="Middle ground" android:hint="ignored"`,
		}
		_, first := mappingFor(docs...)
		_, second := mappingFor(docs[1], docs[0])

		assert.True(t, bytes.Equal(RenderText(first), RenderText(second)))
	})

	t.Run("Should keep multi-line values on one line", func(t *testing.T) {
		_, m := mappingFor("android:text=\"First line\nsecond line\"")

		assert.Contains(t, string(RenderText(m)), `"first_line\nsecond_line" -> "First line\nsecond line"`)
	})

	t.Run("Should write Android escapes as found in the layout", func(t *testing.T) {
		_, m := mappingFor(`android:text="Don\'t stop"`, `android:text="Line one\nLine two"`)

		out := string(RenderText(m))
		assert.Contains(t, out, `"dont_stop" -> "Don\'t stop"`)
		assert.Contains(t, out, `"line_onenline_two" -> "Line one\nLine two"`)
	})
}

func TestRenderJSON(t *testing.T) {
	_, m := mappingFor(`android:text="Terms & Conditions" @string/app_name`)

	out, err := RenderJSON(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Terms & Conditions")

	var doc map[string][]map[string]string
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "app name", doc["string_references"][0]["key"])
	assert.Equal(t, "@app_name", doc["string_references"][0]["source"])
	assert.Equal(t, "terms__conditions", doc["hardcoded_texts"][0]["key"])
}

func TestRender(t *testing.T) {
	_, m := mappingFor(`android:text="Submit"`)

	text, err := Render(m, FormatText)
	require.NoError(t, err)
	assert.Equal(t, RenderText(m), text)

	js, err := Render(m, FormatJSON)
	require.NoError(t, err)
	assert.True(t, json.Valid(js))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestWriteSummary(t *testing.T) {
	set, m := mappingFor(
		`android:text="Submit" android:text="OK" android:hint="Email" @string/welcome_message`,
	)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, set, m))

	out := buf.String()
	assert.Contains(t, out, "  • String references: 1\n")
	assert.Contains(t, out, "  • Hardcoded texts: 2\n")
	assert.Contains(t, out, "  • Hint texts: 1\n")
	assert.Contains(t, out, "  • @string/welcome_message\n")
	assert.Contains(t, out, "  • \"Submit\"\n")
	assert.NotContains(t, out, "\"OK\"")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestWriteSummaryReportsWriteError(t *testing.T) {
	set, m := mappingFor(`android:text="Submit"`)
	assert.EqualError(t, WriteSummary(failingWriter{}, set, m), "closed pipe")
}

// renameFailFs lets every operation through except Rename.
type renameFailFs struct {
	afero.Fs
}

func (renameFailFs) Rename(string, string) error { return errors.New("device busy") }

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Should create the file and its directory", func(t *testing.T) {
		fs := afero.NewMemMapFs()

		require.NoError(t, WriteFileAtomic(fs, "out/mapping.txt", []byte("hello")))

		got, err := afero.ReadFile(fs, "out/mapping.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(got))

		info, err := fs.Stat("out/mapping.txt")
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
	})

	t.Run("Should replace existing content", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "mapping.txt", []byte("old"), 0644))

		require.NoError(t, WriteFileAtomic(fs, "mapping.txt", []byte("new")))

		got, _ := afero.ReadFile(fs, "mapping.txt")
		assert.Equal(t, "new", string(got))
	})

	t.Run("Should leave the old file intact when the rename fails", func(t *testing.T) {
		base := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(base, "out/mapping.txt", []byte("old"), 0644))

		err := WriteFileAtomic(renameFailFs{base}, "out/mapping.txt", []byte("new"))

		var failure *ArtifactWriteFailure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, "out/mapping.txt", failure.Path)
		assert.Contains(t, err.Error(), "device busy")

		got, _ := afero.ReadFile(base, "out/mapping.txt")
		assert.Equal(t, "old", string(got))

		leftovers, _ := afero.ReadDir(base, "out")
		assert.Len(t, leftovers, 1)
	})

	t.Run("Should fail on a read-only filesystem", func(t *testing.T) {
		fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

		err := WriteFileAtomic(fs, "mapping.txt", []byte("data"))

		var failure *ArtifactWriteFailure
		assert.ErrorAs(t, err, &failure)
	})
}
