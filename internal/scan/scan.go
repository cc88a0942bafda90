// Package scan runs one extraction pass over a layout directory and emits
// the resulting key mapping.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"

	"layout-translator/internal/aggregate"
	"layout-translator/internal/emit"
	"layout-translator/internal/filewalker"
	"layout-translator/internal/keys"
	"layout-translator/internal/parser"
	"layout-translator/internal/textutil"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Options selects the documents to scan and where the artifact goes.
type Options struct {
	Root    string
	Pattern string
	Output  string
	Format  emit.Format
}

// Report is the outcome of a scan.
type Report struct {
	Files    int
	Set      *aggregate.TextSet
	Mapping  *keys.Mapping
	Failures []*filewalker.DocumentReadFailure
}

// Scanned is the number of documents that contributed to the aggregate.
func (r *Report) Scanned() int {
	return r.Files - len(r.Failures)
}

// Collect walks the root and folds every readable document into a single
// aggregate. Unreadable documents are recorded and skipped.
func Collect(ctx context.Context, w *filewalker.Walker, opts Options) (*Report, error) {
	entries, err := w.Walk(opts.Root, opts.Pattern)
	if err != nil {
		return nil, fmt.Errorf("walk layout directory: %w", err)
	}

	report := &Report{
		Files: len(entries),
		Set:   aggregate.New(),
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.Debug().Str("file", entry.Path).Msg("Scanning")

		result, err := w.ParseFile(entry)
		if err != nil {
			var failure *filewalker.DocumentReadFailure
			if !errors.As(err, &failure) {
				failure = &filewalker.DocumentReadFailure{Path: entry.Path, Err: err}
			}
			report.Failures = append(report.Failures, failure)
			log.Warn().Err(failure.Err).Str("file", entry.Path).Msg("Failed to read document")
			continue
		}

		report.Set.Fold(result)
	}

	report.Mapping = keys.Derive(report.Set)
	logCollisions(report.Mapping)

	log.Info().
		Int("files", report.Files).
		Int("failed", len(report.Failures)).
		Int("references", report.Set.Len(parser.StringReference)).
		Int("hardcoded", report.Set.Len(parser.LiteralText)).
		Int("keys", report.Mapping.Len()).
		Msg("Layout scan complete")

	return report, nil
}

func logCollisions(m *keys.Mapping) {
	for _, c := range keys.MappedCategories {
		for key, sources := range m.Collisions(c) {
			log.Warn().
				Str("category", c.String()).
				Str("key", textutil.Truncate(key, 40)).
				Int("sources", len(sources)).
				Msg("Derived key shared by several texts")
		}
	}
}

// Generate runs Collect, prints the summary to summary and writes the
// artifact. The artifact is fully rendered before anything is written.
func Generate(ctx context.Context, fs afero.Fs, opts Options, summary io.Writer) (*Report, error) {
	report, err := Collect(ctx, filewalker.NewWalker(fs), opts)
	if err != nil {
		return nil, err
	}

	if err := emit.WriteSummary(summary, report.Set, report.Mapping); err != nil {
		log.Warn().Err(err).Msg("Failed to print summary")
	}

	data, err := emit.Render(report.Mapping, opts.Format)
	if err != nil {
		return report, fmt.Errorf("render mapping: %w", err)
	}

	if err := emit.WriteFileAtomic(fs, opts.Output, data); err != nil {
		return report, fmt.Errorf("write artifact: %w", err)
	}

	log.Info().
		Str("output", opts.Output).
		Str("format", string(opts.Format)).
		Int("entries", report.Mapping.Len()).
		Msg("Generated mapping file")

	return report, nil
}
