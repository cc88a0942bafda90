package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"layout-translator/internal/catalog"
	"layout-translator/internal/config"
	"layout-translator/internal/emit"
	"layout-translator/internal/filewalker"
	"layout-translator/internal/keys"
	"layout-translator/internal/scan"
	"layout-translator/internal/watch"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := newRootCmd(afero.NewOsFs(), config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(fs afero.Fs, cfg *config.Config) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "layout-translator",
		Short: "Extract layout texts and generate DynamicStringManager keys",
		Long: `Scans Android layout XML files for user-visible text (string references,
hardcoded text, hints, titles and content descriptions), derives lookup keys
for the runtime string manager and writes them to a mapping file.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every scanned file")

	rootCmd.AddCommand(scanCmd(fs, cfg))
	rootCmd.AddCommand(watchCmd(fs, cfg))
	rootCmd.AddCommand(publishCmd(fs, cfg))

	return rootCmd
}

// scanFlags holds the flags shared by every command. Defaults come from
// the environment.
type scanFlags struct {
	dir     string
	pattern string
	output  string
	format  string
	publish bool
}

func (f *scanFlags) bindInput(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&f.dir, "dir", cfg.LayoutDir, "Directory containing layout XML files")
	cmd.Flags().StringVar(&f.pattern, "pattern", cfg.LayoutPattern, "Glob selecting layout files, relative to --dir")
}

func (f *scanFlags) bindOutput(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVarP(&f.output, "output", "o", cfg.OutputPath, "Mapping file to write")
	cmd.Flags().StringVar(&f.format, "format", cfg.OutputFormat, "Mapping format: text or json")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "Also upsert keys into the catalog database (needs DATABASE_URL)")
}

func (f *scanFlags) options() (scan.Options, error) {
	format, err := emit.ParseFormat(f.format)
	if err != nil {
		return scan.Options{}, err
	}
	return scan.Options{
		Root:    f.dir,
		Pattern: f.pattern,
		Output:  f.output,
		Format:  format,
	}, nil
}

func scanCmd(fs afero.Fs, cfg *config.Config) *cobra.Command {
	f := &scanFlags{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan layouts once and write the translation mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()
			return runScan(ctx, fs, cfg, f, cmd.OutOrStdout())
		},
	}
	f.bindInput(cmd, cfg)
	f.bindOutput(cmd, cfg)
	return cmd
}

func watchCmd(fs afero.Fs, cfg *config.Config) *cobra.Command {
	f := &scanFlags{}
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the translation mapping whenever a layout changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()
			return runWatch(ctx, fs, cfg, f, debounce, cmd.OutOrStdout())
		},
	}
	f.bindInput(cmd, cfg)
	f.bindOutput(cmd, cfg)
	cmd.Flags().DurationVar(&debounce, "debounce", cfg.WatchDebounce, "Quiet period before regenerating")
	return cmd
}

func publishCmd(fs afero.Fs, cfg *config.Config) *cobra.Command {
	f := &scanFlags{format: string(emit.FormatText)}
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Scan layouts and upsert the derived keys into the catalog database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()
			return runPublish(ctx, fs, cfg, f)
		},
	}
	f.bindInput(cmd, cfg)
	return cmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// runScan handles the `scan` command.
func runScan(ctx context.Context, fs afero.Fs, cfg *config.Config, f *scanFlags, out io.Writer) error {
	opts, err := f.options()
	if err != nil {
		return err
	}

	log.Info().Str("dir", opts.Root).Msg("Scanning layout files for translation needs")

	report, err := scan.Generate(ctx, fs, opts, out)
	if err != nil {
		var failure *emit.ArtifactWriteFailure
		if errors.As(err, &failure) {
			log.Error().Err(failure.Err).Str("path", failure.Path).Msg("Mapping file not written")
		}
		return err
	}

	if len(report.Failures) > 0 {
		log.Warn().Int("failed", len(report.Failures)).Int("scanned", report.Scanned()).Msg("Some documents were skipped")
	}

	if f.publish {
		return publishMapping(ctx, cfg, report.Mapping)
	}
	return nil
}

// runWatch handles the `watch` command.
func runWatch(ctx context.Context, fs afero.Fs, cfg *config.Config, f *scanFlags, debounce time.Duration, out io.Writer) error {
	opts, err := f.options()
	if err != nil {
		return err
	}
	if err := filewalker.ValidatePattern(opts.Pattern); err != nil {
		return err
	}

	w := watch.New(watch.Config{
		Root:     opts.Root,
		Pattern:  opts.Pattern,
		Ignore:   []string{opts.Output},
		Debounce: debounce,
	}, func(ctx context.Context) error {
		report, err := scan.Generate(ctx, fs, opts, out)
		if err != nil {
			return err
		}
		if f.publish {
			return publishMapping(ctx, cfg, report.Mapping)
		}
		return nil
	})

	return w.Run(ctx)
}

// runPublish handles the `publish` command.
func runPublish(ctx context.Context, fs afero.Fs, cfg *config.Config, f *scanFlags) error {
	opts, err := f.options()
	if err != nil {
		return err
	}

	report, err := scan.Collect(ctx, filewalker.NewWalker(fs), opts)
	if err != nil {
		return err
	}

	return publishMapping(ctx, cfg, report.Mapping)
}

func publishMapping(ctx context.Context, cfg *config.Config, m *keys.Mapping) error {
	if cfg.DatabaseURL == "" {
		return errors.New("publish: DATABASE_URL is not set")
	}

	pool, err := initPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	c, err := catalog.New(pool, cfg.CatalogTable)
	if err != nil {
		return err
	}
	if err := c.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := c.Preload(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to preload catalog")
	}

	missing := c.Missing(m)
	if _, err := c.Publish(ctx, m); err != nil {
		return fmt.Errorf("publish catalog: %w", err)
	}

	log.Info().Int("new_keys", len(missing)).Int("total", m.Len()).Msg("Catalog up to date")
	return nil
}

// initPool connects to PostgreSQL and verifies the connection.
func initPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")

	return pool, nil
}
