package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/watchlog/internal/formatter"
	"github.com/desertthunder/watchlog/internal/models"
	"github.com/desertthunder/watchlog/internal/screens"
	"github.com/desertthunder/watchlog/internal/shared"
	"github.com/urfave/cli/v3"
)

// itemsFunc is a watchlist command run against a fresh screen for one kind.
type itemsFunc func(ctx context.Context, cmd *cli.Command, s *screens.Screen) error

// itemsAction guards fn behind the session and hands it a screen for kind.
func (r *Runner) itemsAction(kind models.Kind, fn itemsFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := r.requireSession(); err != nil {
			return err
		}
		return fn(ctx, cmd, screens.New(kind, r.catalog, r.logger))
	}
}

// ItemsList prints the three status buckets.
//
// Genre and sort given on the command line are remembered per kind and reused when omitted.
func (r *Runner) ItemsList(ctx context.Context, cmd *cli.Command, s *screens.Screen) error {
	q, err := r.listQuery(s.Kind(), cmd)
	if err != nil {
		return err
	}
	s.SetFilter(q.Genre)
	s.SetSort(q.Sort)
	s.SetTitleSearch(q.Title)

	if err := s.Load(ctx); err != nil {
		return fmt.Errorf("failed to list %s: %w", s.Kind().Plural(), err)
	}
	buckets := s.Buckets()

	if cmd.Bool("json") {
		return r.writeJSON(buckets, cmd.Bool("pretty"))
	}

	genre := q.Genre
	if genre == "" {
		genre = "All"
	}
	r.writePlainHeader(fmt.Sprintf("MY %s  (genre: %s, sort: %s)", strings.ToUpper(s.Kind().Plural()), genre, q.Sort.Label()))
	for _, status := range models.Statuses {
		items := buckets.Get(status)
		r.writePlainln("%s (%d)", status.Label(), len(items))
		if len(items) == 0 {
			r.writePlain("  No %s found.\n", s.Kind().Plural())
			continue
		}
		for _, it := range items {
			r.writePlain("  #%-4d %s (%s) [%s]\n", it.ID, it.Title, shared.FormatMinutes(it.Duration), it.GenreNames())
		}
	}
	return nil
}

// listQuery merges the flags over the saved preferences and saves any change.
func (r *Runner) listQuery(kind models.Kind, cmd *cli.Command) (models.ListQuery, error) {
	q := models.ListQuery{Sort: models.SortAsc}
	if r.prefs != nil {
		saved, err := r.prefs.Get(kind)
		if err != nil {
			r.logger.Warn("ignoring saved preferences", "err", err)
		} else {
			q = saved
		}
	}

	changed := false
	if cmd.IsSet("genre") {
		genre := strings.TrimSpace(cmd.String("genre"))
		if strings.EqualFold(genre, "all") {
			genre = ""
		}
		q.Genre = genre
		changed = true
	}
	if cmd.IsSet("sort") {
		order, err := models.ParseSort(cmd.String("sort"))
		if err != nil {
			return q, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		q.Sort = order
		changed = true
	}
	q.Title = strings.TrimSpace(cmd.String("title"))

	if changed && r.prefs != nil {
		if err := r.prefs.Save(kind, q); err != nil {
			r.logger.Warn("failed to save preferences", "err", err)
		}
	}
	return q, nil
}

// ItemsAdd creates an item in the to-watch bucket.
func (r *Runner) ItemsAdd(ctx context.Context, cmd *cli.Command, s *screens.Screen) error {
	if err := s.LoadGenres(ctx); err != nil {
		return fmt.Errorf("failed to load genres: %w", err)
	}
	s.OpenCreate()
	if err := r.applyDraftFlags(ctx, cmd, s); err != nil {
		return err
	}

	draft := s.Draft()
	if err := s.Submit(ctx); err != nil {
		return fmt.Errorf("failed to add %s: %w", s.Kind().Label(), err)
	}
	return r.writePlain("✓ Added %s %q to %s\n", s.Kind().Label(), draft.Title, models.StatusToWatch.Label())
}

// ItemsEdit updates an item. Flags that are not given keep the stored value.
func (r *Runner) ItemsEdit(ctx context.Context, cmd *cli.Command, s *screens.Screen) error {
	if err := s.LoadGenres(ctx); err != nil {
		return fmt.Errorf("failed to load genres: %w", err)
	}
	it, err := r.catalog.Get(ctx, s.Kind(), cmd.Int("id"))
	if err != nil {
		return err
	}
	s.OpenEdit(*it)
	if err := r.applyDraftFlags(ctx, cmd, s); err != nil {
		return err
	}

	draft := s.Draft()
	if err := s.Submit(ctx); err != nil {
		return fmt.Errorf("failed to update %s: %w", s.Kind().Label(), err)
	}
	return r.writePlain("✓ Updated %s %q\n", s.Kind().Label(), draft.Title)
}

// applyDraftFlags copies the given flags into the open draft and uploads --image-file.
func (r *Runner) applyDraftFlags(ctx context.Context, cmd *cli.Command, s *screens.Screen) error {
	if cmd.IsSet("image") && cmd.IsSet("image-file") {
		return fmt.Errorf("%w: cannot specify both --image and --image-file", shared.ErrInvalidFlag)
	}

	var genreIDs []int
	if cmd.IsSet("genre") {
		ids, err := resolveGenres(s.Genres(), cmd.StringSlice("genre"))
		if err != nil {
			return err
		}
		genreIDs = ids
	}

	s.UpdateDraft(func(d *models.Draft) {
		if cmd.IsSet("title") {
			d.Title = cmd.String("title")
		}
		if cmd.IsSet("summary") {
			d.Summary = cmd.String("summary")
		}
		if cmd.IsSet("duration") {
			d.Duration = strings.TrimSpace(cmd.String("duration"))
		}
		if cmd.IsSet("episodes") {
			d.Episodes = strings.TrimSpace(cmd.String("episodes"))
		}
		if cmd.IsSet("image") {
			d.ImageURL = strings.TrimSpace(cmd.String("image"))
		}
		if cmd.IsSet("genre") {
			d.GenreIDs = genreIDs
		}
	})

	if path := cmd.String("image-file"); path != "" {
		if r.uploader == nil {
			return fmt.Errorf("%w: set upload.cloud_name and upload.upload_preset to upload images", shared.ErrInvalidConfig)
		}
		id := s.BeginUpload()
		url, err := r.uploadFile(ctx, path)
		s.FinishUpload(id, url, err)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Alert(), err)
		}
		r.logger.Info("image uploaded", "file", path, "url", url)
	}
	return nil
}

func (r *Runner) uploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)
	}
	defer f.Close()
	return r.uploader.Upload(ctx, filepath.Base(path), f)
}

// resolveGenres maps genre names (any case) or numeric IDs to IDs.
func resolveGenres(genres []models.Genre, values []string) ([]int, error) {
	var ids []int
	for _, raw := range values {
		for _, v := range strings.Split(raw, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			id, ok := findGenre(genres, v)
			if !ok {
				return nil, fmt.Errorf("%w: unknown genre %q", shared.ErrInvalidFlag, v)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func findGenre(genres []models.Genre, v string) (int, bool) {
	n, numErr := strconv.Atoi(v)
	for _, g := range genres {
		if strings.EqualFold(g.Name, v) || (numErr == nil && g.ID == n) {
			return g.ID, true
		}
	}
	return 0, false
}

// ItemsDelete removes an item after confirmation.
func (r *Runner) ItemsDelete(ctx context.Context, cmd *cli.Command, s *screens.Screen) error {
	it, err := r.catalog.Get(ctx, s.Kind(), cmd.Int("id"))
	if err != nil {
		return err
	}

	s.RequestDelete(*it)
	target := s.DeleteTarget()
	if !cmd.Bool("yes") && !r.confirm(fmt.Sprintf("Are you sure you want to delete %q?", target.Title)) {
		s.CancelDelete()
		return r.writePlain("Cancelled\n")
	}

	if err := s.ConfirmDelete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s: %w", s.Kind().Label(), err)
	}
	return r.writePlain("✓ Deleted %q\n", target.Title)
}

// confirm asks a yes/no question on the runner's input. Anything but y/yes is a no.
func (r *Runner) confirm(question string) bool {
	r.writePlain("%s [y/N] ", question)
	line, _ := bufio.NewReader(r.input).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// ItemsNext moves an item one bucket forward.
func (r *Runner) ItemsNext(ctx context.Context, cmd *cli.Command, s *screens.Screen) error {
	return r.move(ctx, cmd, s, s.Advance)
}

// ItemsPrev moves an item one bucket back.
func (r *Runner) ItemsPrev(ctx context.Context, cmd *cli.Command, s *screens.Screen) error {
	return r.move(ctx, cmd, s, s.Retreat)
}

func (r *Runner) move(ctx context.Context, cmd *cli.Command, s *screens.Screen, fn func(context.Context, models.Item) error) error {
	it, err := r.catalog.Get(ctx, s.Kind(), cmd.Int("id"))
	if err != nil {
		return err
	}
	if err := fn(ctx, *it); err != nil {
		return err
	}

	moved, err := r.catalog.Get(ctx, s.Kind(), it.ID)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Moved %q from %s to %s\n", it.Title, it.Status.Label(), moved.Status.Label())
}

// ItemsInfo prints the detail view of an item.
func (r *Runner) ItemsInfo(ctx context.Context, cmd *cli.Command, s *screens.Screen) error {
	it, err := r.catalog.Get(ctx, s.Kind(), cmd.Int("id"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(it, true)
	}
	if err := r.writePlain("%s", formatter.ItemDetailText(*it)); err != nil {
		return err
	}
	if cmd.Bool("open") {
		return shared.OpenBrowser(it.ImageURL)
	}
	return nil
}

// GenresList prints the genre reference data.
func (r *Runner) GenresList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	genres, err := r.catalog.Genres(ctx)
	if err != nil {
		return fmt.Errorf("failed to list genres: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(genres, true)
	}
	for _, g := range genres {
		r.writePlain("%3d  %s\n", g.ID, g.Name)
	}
	return nil
}
