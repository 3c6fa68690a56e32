package screens

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/desertthunder/watchlog/internal/models"
	"github.com/desertthunder/watchlog/internal/shared"
	tu "github.com/desertthunder/watchlog/internal/testing"
)

func drama() models.Genre { return models.Genre{ID: 3, Name: "Drama"} }

func seeded(t *testing.T, kind models.Kind) (*Screen, *tu.FakeCatalog) {
	t.Helper()
	cat := tu.NewFakeCatalog()
	cat.Seed(kind,
		models.Item{ID: 1, Title: "Arrival", Status: models.StatusToWatch, Genres: []models.Genre{drama()}},
		models.Item{ID: 2, Title: "Blade Runner", Status: models.StatusInProgress},
		models.Item{ID: 3, Title: "Casablanca", Status: models.StatusCompleted, Genres: []models.Genre{drama()}},
	)
	s := New(kind, cat, nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s, cat
}

func validDraft() models.Draft {
	return models.Draft{
		Title:    "Dune",
		Summary:  "Spice",
		Duration: "155",
		ImageURL: "http://x/y.jpg",
		GenreIDs: []int{5},
	}
}

func titles(items []models.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestScreenLoad(t *testing.T) {
	t.Run("Sends Filter And Sort", func(t *testing.T) {
		s, cat := seeded(t, models.KindSeries)
		s.SetFilter("Drama")
		s.SetSort(models.SortDesc)

		if err := s.Load(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		q := cat.LastQuery()
		if q.Genre != "Drama" || q.Sort != models.SortDesc {
			t.Errorf("unexpected query %+v", q)
		}
		if got := titles(s.Items()); !slices.Equal(got, []string{"Casablanca", "Arrival"}) {
			t.Errorf("expected server order, got %v", got)
		}
	})

	t.Run("Defaults To Ascending", func(t *testing.T) {
		s, cat := seeded(t, models.KindMovie)
		if s.Query().Sort != models.SortAsc || cat.LastQuery().Sort != models.SortAsc {
			t.Error("expected ascending sort by default")
		}
	})

	t.Run("Failure Keeps Previous List", func(t *testing.T) {
		s, cat := seeded(t, models.KindMovie)
		cat.FailOn["list"] = errors.New("network down")

		if err := s.Load(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if len(s.Items()) != 3 {
			t.Errorf("expected stale list of 3, got %d", len(s.Items()))
		}
	})

	t.Run("Genres Are Fetched Once", func(t *testing.T) {
		s, cat := seeded(t, models.KindMovie)
		s.LoadGenres(context.Background())
		s.LoadGenres(context.Background())

		if n := cat.CallCount("genres"); n != 1 {
			t.Errorf("expected 1 genres call, got %d", n)
		}
		if len(s.Genres()) != len(tu.DefaultGenres) {
			t.Errorf("expected %d genres, got %d", len(tu.DefaultGenres), len(s.Genres()))
		}
	})

	t.Run("Genre Failure Allows Retry", func(t *testing.T) {
		s, cat := seeded(t, models.KindMovie)
		cat.FailOn["genres"] = errors.New("boom")
		if err := s.LoadGenres(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		delete(cat.FailOn, "genres")
		if err := s.LoadGenres(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n := cat.CallCount("genres"); n != 2 {
			t.Errorf("expected 2 genres calls, got %d", n)
		}
	})
}

// gatedCatalog holds each List call until its sort order is released.
type gatedCatalog struct {
	*tu.FakeCatalog
	started chan models.SortOrder
	release map[models.SortOrder]chan struct{}
}

func (g *gatedCatalog) List(ctx context.Context, kind models.Kind, q models.ListQuery) ([]models.Item, error) {
	g.started <- q.Sort
	<-g.release[q.Sort]
	return g.FakeCatalog.List(ctx, kind, q)
}

func TestScreenLoadOrdering(t *testing.T) {
	t.Run("Older Response Is Discarded", func(t *testing.T) {
		cat := &gatedCatalog{
			FakeCatalog: tu.NewFakeCatalog(),
			started:     make(chan models.SortOrder, 2),
			release: map[models.SortOrder]chan struct{}{
				models.SortAsc:  make(chan struct{}),
				models.SortDesc: make(chan struct{}),
			},
		}
		cat.Seed(models.KindMovie,
			models.Item{ID: 1, Title: "Arrival", Status: models.StatusToWatch},
			models.Item{ID: 2, Title: "Casablanca", Status: models.StatusToWatch},
		)
		s := New(models.KindMovie, cat, nil)

		older := make(chan error, 1)
		go func() { older <- s.Load(context.Background()) }()
		<-cat.started

		s.SetSort(models.SortDesc)
		newer := make(chan error, 1)
		go func() { newer <- s.Load(context.Background()) }()
		<-cat.started

		close(cat.release[models.SortDesc])
		if err := <-newer; err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(cat.release[models.SortAsc])
		if err := <-older; err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"Casablanca", "Arrival"}
		if got := titles(s.Items()); !slices.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestScreenBuckets(t *testing.T) {
	s, _ := seeded(t, models.KindMovie)
	b := s.Buckets()

	if b.Len() != len(s.Items()) {
		t.Fatalf("expected %d items across buckets, got %d", len(s.Items()), b.Len())
	}
	if len(b.ToWatch) != 1 || len(b.InProgress) != 1 || len(b.Completed) != 1 {
		t.Errorf("unexpected partition %+v", b)
	}
}

func TestScreenSubmit(t *testing.T) {
	t.Run("Empty Title Never Reaches Catalog", func(t *testing.T) {
		s, cat := seeded(t, models.KindMovie)
		s.OpenCreate()
		s.UpdateDraft(func(d *models.Draft) {
			*d = validDraft()
			d.Title = ""
		})

		err := s.Submit(context.Background())
		if !errors.Is(err, shared.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		if cat.CallCount("create") != 0 {
			t.Error("expected no create call")
		}
		if s.Alert() != models.RuleTitleRequired {
			t.Errorf("expected title alert, got %q", s.Alert())
		}
		if s.ActiveModal() != ModalForm {
			t.Error("expected form to stay open")
		}
	})

	t.Run("Series Requires Episodes", func(t *testing.T) {
		series, cat := seeded(t, models.KindSeries)
		series.OpenCreate()
		series.UpdateDraft(func(d *models.Draft) { *d = validDraft() })
		if err := series.Submit(context.Background()); !errors.Is(err, shared.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		if series.Alert() != models.RuleEpisodesRequired {
			t.Errorf("expected episodes alert, got %q", series.Alert())
		}
		if cat.CallCount("create") != 0 {
			t.Error("expected no create call")
		}

		movies, movieCat := seeded(t, models.KindMovie)
		movies.OpenCreate()
		movies.UpdateDraft(func(d *models.Draft) { *d = validDraft() })
		if err := movies.Submit(context.Background()); err != nil {
			t.Fatalf("expected movie draft to be accepted, got %v", err)
		}
		if movieCat.CallCount("create") != 1 {
			t.Error("expected one create call")
		}
	})

	t.Run("Create Starts In To Watch And Reloads", func(t *testing.T) {
		s, cat := seeded(t, models.KindMovie)
		s.OpenCreate()
		s.UpdateDraft(func(d *models.Draft) { *d = validDraft() })

		if err := s.Submit(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.ActiveModal() != ModalNone {
			t.Error("expected form to close")
		}
		if s.Draft().Title != "" {
			t.Error("expected draft to be reset")
		}

		calls := cat.Calls()
		if calls[len(calls)-1] != "list" {
			t.Errorf("expected reload after create, got %v", calls)
		}
		found := false
		for _, it := range s.Buckets().ToWatch {
			if it.Title == "Dune" && it.Duration == 155 {
				found = true
			}
		}
		if !found {
			t.Error("expected Dune under To watch")
		}
	})

	t.Run("Edit Preserves Status", func(t *testing.T) {
		s, cat := seeded(t, models.KindMovie)
		item := s.Items()[2]
		s.OpenEdit(item)
		s.UpdateDraft(func(d *models.Draft) {
			d.Summary = "Of all the gin joints"
			d.Duration = "102"
			d.ImageURL = "http://x/c.jpg"
		})

		if err := s.Submit(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := cat.Items(models.KindMovie)[2]
		if got.Status != models.StatusCompleted || got.Duration != 102 {
			t.Errorf("unexpected item after edit %+v", got)
		}
	})

	t.Run("Catalog Failure Keeps Form", func(t *testing.T) {
		s, cat := seeded(t, models.KindMovie)
		cat.FailOn["create"] = errors.New("boom")
		s.OpenCreate()
		s.UpdateDraft(func(d *models.Draft) { *d = validDraft() })

		if err := s.Submit(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if s.ActiveModal() != ModalForm || s.Draft().Title != "Dune" {
			t.Error("expected form and draft to survive")
		}
	})

	t.Run("Without Open Form", func(t *testing.T) {
		s, _ := seeded(t, models.KindMovie)
		if err := s.Submit(context.Background()); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestScreenDelete(t *testing.T) {
	t.Run("Removes Only The Target", func(t *testing.T) {
		s, _ := seeded(t, models.KindMovie)
		target := s.Items()[1]

		s.RequestDelete(target)
		if s.ActiveModal() != ModalDelete {
			t.Fatal("expected delete modal")
		}
		if err := s.ConfirmDelete(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := titles(s.Items()); !slices.Equal(got, []string{"Arrival", "Casablanca"}) {
			t.Errorf("unexpected list after delete %v", got)
		}
		if s.DeleteTarget() != nil {
			t.Error("expected target to be cleared")
		}
	})

	t.Run("Cancel Makes No Request", func(t *testing.T) {
		s, cat := seeded(t, models.KindMovie)
		s.RequestDelete(s.Items()[0])
		s.CancelDelete()

		if cat.CallCount("delete") != 0 {
			t.Error("expected no delete call")
		}
		if s.ActiveModal() != ModalNone {
			t.Error("expected no modal")
		}
	})

	t.Run("Failure Keeps Target", func(t *testing.T) {
		s, cat := seeded(t, models.KindMovie)
		cat.FailOn["delete"] = errors.New("boom")
		s.RequestDelete(s.Items()[0])

		if err := s.ConfirmDelete(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if s.DeleteTarget() == nil {
			t.Error("expected target to remain")
		}
	})

	t.Run("Untitled Target Shows No Modal", func(t *testing.T) {
		s, _ := seeded(t, models.KindMovie)
		s.RequestDelete(models.Item{ID: 9})
		if s.ActiveModal() != ModalNone {
			t.Error("expected no modal for an untitled target")
		}
	})

	t.Run("Nothing Pending", func(t *testing.T) {
		s, _ := seeded(t, models.KindMovie)
		if err := s.ConfirmDelete(context.Background()); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestScreenTransitions(t *testing.T) {
	t.Run("Advance Twice Reaches Completed", func(t *testing.T) {
		s, _ := seeded(t, models.KindMovie)
		item := s.Items()[0]

		for range 2 {
			if err := s.Advance(context.Background(), item); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			item = s.Items()[0]
		}
		if item.Status != models.StatusCompleted {
			t.Errorf("expected COMPLETED, got %s", item.Status)
		}
		if err := s.Advance(context.Background(), item); !errors.Is(err, shared.ErrNoTransition) {
			t.Errorf("expected ErrNoTransition, got %v", err)
		}
	})

	t.Run("Retreat Twice Reaches To Watch", func(t *testing.T) {
		s, _ := seeded(t, models.KindMovie)
		item := s.Items()[2]

		for range 2 {
			if err := s.Retreat(context.Background(), item); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			item = s.Items()[2]
		}
		if item.Status != models.StatusToWatch {
			t.Errorf("expected TO_WATCH, got %s", item.Status)
		}
		if err := s.Retreat(context.Background(), item); !errors.Is(err, shared.ErrNoTransition) {
			t.Errorf("expected ErrNoTransition, got %v", err)
		}
	})

	t.Run("Unknown Status Advances From To Watch", func(t *testing.T) {
		cat := tu.NewFakeCatalog()
		cat.Seed(models.KindMovie, models.Item{ID: 9, Title: "Odd", Status: models.Status("ARCHIVED")})
		s := New(models.KindMovie, cat, nil)
		s.Load(context.Background())

		it := s.Buckets().ToWatch[0]
		if err := s.Advance(context.Background(), it); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := cat.Items(models.KindMovie)[0].Status; got != models.StatusInProgress {
			t.Errorf("expected IN_PROGRESS, got %s", got)
		}
		if err := s.Retreat(context.Background(), it); !errors.Is(err, shared.ErrNoTransition) {
			t.Errorf("expected ErrNoTransition, got %v", err)
		}
	})

	t.Run("Only Status Changes", func(t *testing.T) {
		s, cat := seeded(t, models.KindSeries)
		item := s.Items()[0]
		s.Advance(context.Background(), item)

		got := cat.Items(models.KindSeries)[0]
		if got.Title != item.Title || len(got.Genres) != 1 || got.Genres[0].ID != drama().ID {
			t.Errorf("expected other fields unchanged, got %+v", got)
		}
	})
}

func TestScreenModals(t *testing.T) {
	s, cat := seeded(t, models.KindMovie)
	item := s.Items()[0]

	s.ShowInfo(item)
	if s.ActiveModal() != ModalInfo || s.InfoTarget().Title != item.Title {
		t.Fatal("expected info modal")
	}

	s.RequestDelete(item)
	if s.ActiveModal() != ModalDelete || s.InfoTarget() != nil {
		t.Error("expected delete to replace info")
	}

	s.OpenEdit(item)
	if s.ActiveModal() != ModalForm || s.DeleteTarget() != nil {
		t.Error("expected form to replace delete")
	}
	if s.Editing() == nil || s.Draft().Title != item.Title {
		t.Error("expected draft filled from item")
	}

	s.CancelForm()
	if s.ActiveModal() != ModalNone || s.Editing() != nil {
		t.Error("expected all modals closed")
	}

	s.ShowInfo(item)
	s.CloseInfo()
	if s.ActiveModal() != ModalNone {
		t.Error("expected info closed")
	}

	if n := len(cat.Calls()); n != 1 {
		t.Errorf("expected only the initial load, got %v", cat.Calls())
	}
}

func TestScreenUpload(t *testing.T) {
	t.Run("Success Sets Image", func(t *testing.T) {
		s, _ := seeded(t, models.KindMovie)
		s.OpenCreate()
		id := s.BeginUpload()
		if !s.Uploading() {
			t.Fatal("expected uploading flag")
		}
		if !s.FinishUpload(id, "https://img/x.png", nil) {
			t.Fatal("expected upload to apply")
		}
		if s.Uploading() || s.Draft().ImageURL != "https://img/x.png" {
			t.Error("expected image url to be set")
		}
	})

	t.Run("Failure Leaves Image And Alerts", func(t *testing.T) {
		s, _ := seeded(t, models.KindMovie)
		s.OpenCreate()
		s.UpdateDraft(func(d *models.Draft) { d.ImageURL = "http://old" })
		id := s.BeginUpload()
		s.FinishUpload(id, "", shared.ErrUploadFailed)

		if s.Draft().ImageURL != "http://old" {
			t.Errorf("expected image unchanged, got %q", s.Draft().ImageURL)
		}
		if s.Alert() != MsgUploadFailed {
			t.Errorf("expected upload alert, got %q", s.Alert())
		}
	})
}

func TestScreenStaleUpload(t *testing.T) {
	t.Run("Cancelled Form Does Not Leak Into Next Draft", func(t *testing.T) {
		s, _ := seeded(t, models.KindMovie)
		s.OpenCreate()
		id := s.BeginUpload()
		s.CancelForm()
		s.OpenCreate()

		if s.FinishUpload(id, "http://host/old.jpg", nil) {
			t.Error("expected abandoned upload to be dropped")
		}
		if got := s.Draft().ImageURL; got != "" {
			t.Errorf("expected empty image in fresh draft, got %q", got)
		}
		if s.Alert() != "" {
			t.Errorf("expected no alert, got %q", s.Alert())
		}
	})

	t.Run("Closed Form Ignores Failure", func(t *testing.T) {
		s, _ := seeded(t, models.KindMovie)
		s.OpenCreate()
		id := s.BeginUpload()
		s.CancelForm()

		if s.FinishUpload(id, "", shared.ErrUploadFailed) || s.Alert() != "" {
			t.Error("expected late failure to be dropped")
		}
	})

	t.Run("Newer Upload Wins", func(t *testing.T) {
		s, _ := seeded(t, models.KindMovie)
		s.OpenCreate()
		first := s.BeginUpload()
		second := s.BeginUpload()

		if s.FinishUpload(first, "http://host/first.jpg", nil) {
			t.Error("expected superseded upload to be dropped")
		}
		if !s.Uploading() {
			t.Error("expected newer upload to still be in flight")
		}
		s.FinishUpload(second, "http://host/second.jpg", nil)
		if got := s.Draft().ImageURL; got != "http://host/second.jpg" {
			t.Errorf("expected newer image, got %q", got)
		}
	})
}

func TestActions(t *testing.T) {
	tests := []struct {
		status  models.Status
		advance bool
		retreat bool
	}{
		{models.StatusToWatch, true, false},
		{models.StatusInProgress, true, true},
		{models.StatusCompleted, false, true},
		{models.Status("ARCHIVED"), true, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			actions := Actions(models.Item{Status: tt.status})
			if got := slices.Contains(actions, ActionAdvance); got != tt.advance {
				t.Errorf("advance offered = %v, want %v", got, tt.advance)
			}
			if got := slices.Contains(actions, ActionRetreat); got != tt.retreat {
				t.Errorf("retreat offered = %v, want %v", got, tt.retreat)
			}
		})
	}
}

func TestIsSilent(t *testing.T) {
	if IsSilent(nil) || IsSilent(shared.ErrValidation) || IsSilent(shared.ErrUnauthorized) {
		t.Error("expected nil, validation and rejection errors to be handled elsewhere")
	}
	if !IsSilent(errors.New("boom")) {
		t.Error("expected generic errors to be silent")
	}
}
