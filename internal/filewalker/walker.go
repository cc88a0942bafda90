package filewalker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"layout-translator/internal/parser"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// DefaultPattern selects the layout documents directly under the root.
const DefaultPattern = "*.xml"

// Walker discovers layout documents and dispatches them to the matching parser.
type Walker struct {
	fs      afero.Fs
	parsers []parser.Parser
}

// NewWalker creates a Walker over fs with the default parsers.
func NewWalker(fs afero.Fs) *Walker {
	return &Walker{
		fs: fs,
		parsers: []parser.Parser{
			parser.NewLayoutParser(),
		},
	}
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	Path   string
	Ext    string
	Parser parser.Parser
}

// DocumentReadFailure reports a document that could not be read or decoded.
type DocumentReadFailure struct {
	Path string
	Err  error
}

func (e *DocumentReadFailure) Error() string {
	return fmt.Sprintf("read document %s: %v", e.Path, e.Err)
}

func (e *DocumentReadFailure) Unwrap() error { return e.Err }

// ErrInvalidEncoding is wrapped by DocumentReadFailure for non UTF-8 content.
var ErrInvalidEncoding = errors.New("content is not valid UTF-8")

// ValidatePattern rejects glob patterns doublestar cannot evaluate.
func ValidatePattern(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid pattern %q", pattern)
	}
	return nil
}

// Walk returns every file under root whose slash-separated path relative
// to root matches pattern, in lexical order.
func (w *Walker) Walk(root, pattern string) ([]FileEntry, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}

	info, err := w.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); !ok {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		for _, p := range w.parsers {
			if p.CanParse(ext) {
				entries = append(entries, FileEntry{
					Path:   path,
					Ext:    ext,
					Parser: p,
				})
				break
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Str("pattern", pattern).Msg("Discovered files")
	return entries, nil
}

// ReadFile loads a document as UTF-8 text.
func (w *Walker) ReadFile(entry FileEntry) (string, error) {
	data, err := afero.ReadFile(w.fs, entry.Path)
	if err != nil {
		return "", &DocumentReadFailure{Path: entry.Path, Err: err}
	}
	if !utf8.Valid(data) {
		return "", &DocumentReadFailure{Path: entry.Path, Err: ErrInvalidEncoding}
	}
	return string(data), nil
}

// ParseFile reads a single file and runs the entry's parser over it.
func (w *Walker) ParseFile(entry FileEntry) (*parser.ExtractionResult, error) {
	content, err := w.ReadFile(entry)
	if err != nil {
		return nil, err
	}
	return entry.Parser.Parse(entry.Path, content), nil
}
