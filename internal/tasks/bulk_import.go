package tasks

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlog/internal/formatter"
	"github.com/desertthunder/watchlog/internal/models"
	"github.com/desertthunder/watchlog/internal/services"
	"github.com/desertthunder/watchlog/internal/shared"
	"golang.org/x/time/rate"
)

// ImportOpts contains configuration for bulk imports.
type ImportOpts struct {
	Kind       models.Kind // overrides each row's kind when set
	NumWorkers int         // Concurrent workers (default: 3)
	RateLimit  float64     // Requests per second (default: 5)
	DryRun     bool        // validate only
}

// RowResult is the outcome of one imported row.
type RowResult struct {
	Line  int
	Title string
	Kind  models.Kind
	Item  *models.Item // created item; nil on failure or dry run
	Err   error
}

// ImportResult summarizes an import. Rows are ordered by line.
type ImportResult struct {
	Total   int
	Created int
	Invalid int
	Failed  int
	Rows    []RowResult
}

type importJob struct {
	line    int
	title   string
	kind    models.Kind
	payload models.Payload
}

// Importer creates items from parsed CSV rows.
type Importer struct {
	catalog services.Catalog
	logger  *log.Logger
}

// NewImporter creates an [Importer] writing to catalog.
func NewImporter(catalog services.Catalog, logger *log.Logger) *Importer {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Importer{catalog: catalog, logger: logger}
}

// Import validates every row, then creates the valid ones through a rate-limited worker pool.
//
// A row that fails validation is never sent. Failed creates are recorded and not retried.
// The returned error is only set when the import could not start or ctx ended.
func (im *Importer) Import(ctx context.Context, prog chan<- ProgressUpdate, rows []formatter.Row, opts ImportOpts) (*ImportResult, error) {
	if im.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	sendProgress(prog, fetchGenresUpdate())
	genres, err := im.catalog.Genres(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch genres: %w", err)
	}
	byName := make(map[string]int, len(genres))
	for _, g := range genres {
		byName[strings.ToLower(g.Name)] = g.ID
	}

	result := &ImportResult{Total: len(rows)}
	var jobs []importJob

	for i, row := range rows {
		kind := row.Kind
		if opts.Kind != "" {
			kind = opts.Kind
		}

		payload, err := rowPayload(kind, row, byName)
		if err != nil {
			res := RowResult{Line: row.Line, Title: row.Title, Kind: kind, Err: err}
			result.Invalid++
			result.Rows = append(result.Rows, res)
			sendProgress(prog, invalidRowUpdate(i+1, len(rows), res))
			continue
		}
		if opts.DryRun {
			result.Rows = append(result.Rows, RowResult{Line: row.Line, Title: row.Title, Kind: kind})
			continue
		}
		jobs = append(jobs, importJob{line: row.Line, title: row.Title, kind: kind, payload: payload})
	}

	if len(jobs) > 0 {
		im.run(ctx, prog, jobs, opts, result)
	}

	slices.SortFunc(result.Rows, func(a, b RowResult) int { return a.Line - b.Line })
	im.logger.Info("import finished", "total", result.Total, "created", result.Created, "invalid", result.Invalid, "failed", result.Failed)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (im *Importer) run(ctx context.Context, prog chan<- ProgressUpdate, jobs []importJob, opts ImportOpts, result *ImportResult) {
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	queue := make(chan importJob, len(jobs))
	results := make(chan RowResult, len(jobs))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go im.worker(ctx, &wg, queue, results)
	}

	go func() {
		defer close(queue)
		for _, job := range jobs {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			queue <- job
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	done := 0
	for res := range results {
		done++
		result.Rows = append(result.Rows, res)
		if res.Err != nil {
			result.Failed++
			sendProgress(prog, createFailedUpdate(done, len(jobs), res))
		} else {
			result.Created++
			sendProgress(prog, createdUpdate(done, len(jobs), res))
		}
	}
}

// worker creates items from the queue until it is closed or ctx ends.
func (im *Importer) worker(ctx context.Context, wg *sync.WaitGroup, queue <-chan importJob, results chan<- RowResult) {
	defer wg.Done()

	for job := range queue {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := RowResult{Line: job.line, Title: job.title, Kind: job.kind}
		item, err := im.catalog.Create(ctx, job.kind, job.payload)
		if err != nil {
			im.logger.Warn("import row failed", "line", job.line, "err", err)
			res.Err = err
		} else {
			res.Item = item
		}
		results <- res
	}
}

// rowPayload resolves genres and validates the row as a form draft would be.
func rowPayload(kind models.Kind, row formatter.Row, genres map[string]int) (models.Payload, error) {
	d := models.Draft{
		Title:    row.Title,
		Summary:  row.Summary,
		Duration: row.Duration,
		Episodes: row.Episodes,
		ImageURL: row.ImageURL,
	}
	for _, name := range row.Genres {
		id, ok := genres[strings.ToLower(name)]
		if !ok {
			return models.Payload{}, fmt.Errorf("%w: unknown genre %q", shared.ErrValidation, name)
		}
		if !d.HasGenre(id) {
			d.ToggleGenre(id)
		}
	}

	if res := models.Validate(kind, d); !res.Valid() {
		return models.Payload{}, fmt.Errorf("%w: %s", shared.ErrValidation, res.FirstViolation())
	}

	status := row.Status
	if !status.Valid() {
		status = models.StatusToWatch
	}
	return d.Payload(kind, status), nil
}
