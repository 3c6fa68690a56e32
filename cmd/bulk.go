package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/watchlog/internal/formatter"
	"github.com/desertthunder/watchlog/internal/models"
	"github.com/desertthunder/watchlog/internal/shared"
	"github.com/desertthunder/watchlog/internal/tasks"
	"github.com/urfave/cli/v3"
)

// progress drains updates into the log until the returned stop func is called.
func (r *Runner) progress() (chan tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()
	return progressCh, func() {
		close(progressCh)
		<-done
	}
}

// Export renders both watchlists to a file or stdout.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	order, err := models.ParseSort(cmd.String("sort"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	opts := tasks.ExportOpts{Format: format, Sort: order, Genre: cmd.String("genre")}
	if !cmd.Bool("stdout") {
		opts.Path = cmd.String("output")
		if opts.Path == "" {
			opts.Path = "watchlog_export." + format.Ext()
		}
	}

	progressCh, stop := r.progress()
	result, err := tasks.NewExporter(r.catalog, r.logger).Export(ctx, progressCh, opts)
	stop()
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if cmd.Bool("stdout") {
		_, err := r.output.Write(result.Data)
		return err
	}
	return r.writePlain("✓ Exported %d movies and %d series to %s\n",
		result.Export.Movies.Len(), result.Export.Series.Len(), result.Path)
}

// Import creates items from a CSV file through the rate-limited worker pool.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	opts := tasks.ImportOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		DryRun:     cmd.Bool("dry-run"),
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = r.config.Import.RateLimit
	}
	if v := cmd.String("kind"); v != "" {
		kind, err := models.ParseKind(v)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		opts.Kind = kind
	}

	f, err := os.Open(cmd.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	rows, err := formatter.ParseCSV(f)
	if err != nil {
		return err
	}

	progressCh, stop := r.progress()
	result, err := tasks.NewImporter(r.catalog, r.logger).Import(ctx, progressCh, rows, opts)
	stop()
	if result == nil {
		return fmt.Errorf("import failed: %w", err)
	}

	r.writePlainHeader("Import Summary")
	r.writePlain("Rows: %d\nCreated: %d\nInvalid: %d\nFailed: %d\n", result.Total, result.Created, result.Invalid, result.Failed)
	for _, row := range result.Rows {
		if row.Err != nil {
			r.writePlain("  line %d %q: %v\n", row.Line, row.Title, row.Err)
		}
	}
	if opts.DryRun {
		r.writePlainln("Dry run: nothing was created")
	}
	return err
}
