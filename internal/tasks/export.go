package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlog/internal/formatter"
	"github.com/desertthunder/watchlog/internal/models"
	"github.com/desertthunder/watchlog/internal/services"
	"github.com/desertthunder/watchlog/internal/shared"
	"golang.org/x/sync/errgroup"
)

// ExportOpts contains configuration for an export.
type ExportOpts struct {
	Format formatter.Format // default: json
	Path   string           // written when set; otherwise only Data is returned
	Sort   models.SortOrder // title order within buckets
	Genre  string           // optional genre name filter
}

// ExportResult contains the snapshot and its rendering.
type ExportResult struct {
	Export *formatter.Export
	Data   []byte
	Path   string
}

// Exporter snapshots both watchlists.
type Exporter struct {
	catalog services.Catalog
	logger  *log.Logger
	now     func() time.Time
}

// NewExporter creates an [Exporter] reading from catalog.
func NewExporter(catalog services.Catalog, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Exporter{catalog: catalog, logger: logger, now: time.Now}
}

// Export fetches movies and series concurrently and renders them.
//
// Either list failing fails the export; no partial file is written.
func (e *Exporter) Export(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	q := models.ListQuery{Genre: opts.Genre, Sort: opts.Sort}

	kinds := []models.Kind{models.KindMovie, models.KindSeries}
	lists := make([][]models.Item, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			items, err := e.catalog.List(gctx, kind, q)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", kind.Plural(), err)
			}
			lists[i] = items
			sendProgress(prog, fetchedItemsUpdate(i+1, len(kinds), kind, len(items)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.Error("export failed", "err", err)
		return nil, err
	}

	export := &formatter.Export{
		ExportedAt: e.now().UTC(),
		Movies:     models.PartitionByStatus(lists[0]),
		Series:     models.PartitionByStatus(lists[1]),
	}
	result := &ExportResult{Export: export}

	sendProgress(prog, renderUpdate(string(opts.Format)))
	data, err := formatter.Render(export, opts.Format)
	if err != nil {
		return nil, err
	}
	result.Data = data

	if opts.Path != "" {
		path, err := formatter.WriteExport(export, opts.Format, opts.Path)
		if err != nil {
			return result, err
		}
		result.Path = path
		e.logger.Info("export written", "path", path, "movies", export.Movies.Len(), "series", export.Series.Len())
	}

	return result, nil
}
