package screens

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlog/internal/models"
	"github.com/desertthunder/watchlog/internal/services"
	"github.com/desertthunder/watchlog/internal/shared"
)

// MsgUploadFailed is shown when the image host rejects an upload.
const MsgUploadFailed = "Error uploading image, please try again."

// Modal identifies the overlay currently shown.
type Modal int

const (
	ModalNone Modal = iota
	ModalForm
	ModalDelete
	ModalInfo
)

func (m Modal) String() string {
	switch m {
	case ModalForm:
		return "form"
	case ModalDelete:
		return "delete"
	case ModalInfo:
		return "info"
	default:
		return "none"
	}
}

// Action is a per-item control offered in a bucket.
type Action string

const (
	ActionInfo    Action = "info"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionAdvance Action = "advance"
	ActionRetreat Action = "retreat"
)

// Screen is the state holder for one entity kind.
//
// It is safe for concurrent use: presentation layers run its network
// operations off the render loop. The mutex is never held across a catalog call.
type Screen struct {
	mu      sync.Mutex
	kind    models.Kind
	catalog services.Catalog
	logger  *log.Logger

	items        []models.Item
	genres       []models.Genre
	genresLoaded bool
	query        models.ListQuery

	formOpen     bool
	editing      *models.Item
	draft        models.Draft
	deleteTarget *models.Item
	infoTarget   *models.Item

	// upload is the id of the in-flight upload, 0 when none. Closing the
	// form resets it so a late result cannot land in another draft.
	upload    uint64
	uploadSeq uint64
	alert     string

	// generation increases on every Load so that a slower, older response
	// cannot overwrite a newer one.
	generation uint64
}

// New creates a screen for kind backed by catalog.
func New(kind models.Kind, catalog services.Catalog, logger *log.Logger) *Screen {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Screen{
		kind:    kind,
		catalog: catalog,
		logger:  logger.WithPrefix(kind.Plural()),
		query:   models.ListQuery{Sort: models.SortAsc},
	}
}

func (s *Screen) Kind() models.Kind { return s.kind }

// Items returns a copy of the loaded list in server order.
func (s *Screen) Items() []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Genres returns the genre reference list.
func (s *Screen) Genres() []models.Genre {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.genres)
}

// Query returns the active filter and sort.
func (s *Screen) Query() models.ListQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Buckets partitions the current list. It is recomputed on every call.
func (s *Screen) Buckets() models.Buckets {
	return models.PartitionByStatus(s.Items())
}

// LoadGenres fetches genres once. Later calls are no-ops after a success.
func (s *Screen) LoadGenres(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.genresLoaded
	s.mu.Unlock()
	if loaded {
		return nil
	}

	genres, err := s.catalog.Genres(ctx)
	if err != nil {
		s.logger.Error("error fetching genres", "err", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.genres = genres
	s.genresLoaded = true
	return nil
}

// Load fetches the list with the current filter and sort.
//
// On failure the error is logged and the previous list is kept. A response
// that arrives after a newer Load was started is discarded.
func (s *Screen) Load(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	q := s.query
	s.mu.Unlock()

	items, err := s.catalog.List(ctx, s.kind, q)
	if err != nil {
		s.logger.Error("error loading list", "err", err, "genre", q.Genre, "sort", q.Sort)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Debug("discarding stale list", "generation", gen, "latest", s.generation)
		return nil
	}
	s.items = items
	return nil
}

// SetFilter selects a genre by name; "" means all genres. Callers reload.
func (s *Screen) SetFilter(genre string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Genre = genre
}

// SetSort changes the title order. Callers reload.
func (s *Screen) SetSort(order models.SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Sort = order
}

// SetTitleSearch sets the optional title substring filter. Callers reload.
func (s *Screen) SetTitleSearch(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Title = title
}

// ActiveModal reports which overlay is visible. At most one is.
func (s *Screen) ActiveModal() Modal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeModal()
}

func (s *Screen) activeModal() Modal {
	switch {
	case s.formOpen:
		return ModalForm
	case s.deleteTarget != nil && s.deleteTarget.Title != "":
		return ModalDelete
	case s.infoTarget != nil:
		return ModalInfo
	default:
		return ModalNone
	}
}

// closeModals must be called with mu held.
func (s *Screen) closeModals() {
	s.formOpen = false
	s.editing = nil
	s.draft.Reset()
	s.deleteTarget = nil
	s.infoTarget = nil
	s.upload = 0
	s.alert = ""
}

// OpenCreate opens an empty form.
func (s *Screen) OpenCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeModals()
	s.formOpen = true
}

// OpenEdit opens the form filled from it.
func (s *Screen) OpenEdit(it models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeModals()
	s.formOpen = true
	s.editing = &it
	s.draft = models.DraftFromItem(it)
}

// CancelForm discards the draft and closes the form.
func (s *Screen) CancelForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeModals()
}

// Editing returns the item being edited, or nil when creating.
func (s *Screen) Editing() *models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return nil
	}
	it := *s.editing
	return &it
}

// Draft returns a copy of the form buffer.
func (s *Screen) Draft() models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft
	d.GenreIDs = slices.Clone(s.draft.GenreIDs)
	return d
}

// UpdateDraft applies fn to the form buffer.
func (s *Screen) UpdateDraft(fn func(d *models.Draft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.draft)
}

// Alert is the last user-facing message, or "".
func (s *Screen) Alert() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alert
}

// ClearAlert dismisses the alert.
func (s *Screen) ClearAlert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alert = ""
}

// Submit validates the draft and creates or updates the item.
//
// A draft that fails validation never reaches the catalog: the first violated
// rule becomes the alert and [shared.ErrValidation] is returned. New items
// start in TO_WATCH; edits keep the item's status. On a catalog failure the
// form stays open with the draft intact.
func (s *Screen) Submit(ctx context.Context) error {
	s.mu.Lock()
	if !s.formOpen {
		s.mu.Unlock()
		return fmt.Errorf("%w: no form is open", shared.ErrInvalidInput)
	}
	res := models.Validate(s.kind, s.draft)
	if !res.Valid() {
		s.alert = res.FirstViolation()
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", shared.ErrValidation, res.FirstViolation())
	}
	s.alert = ""
	draft := s.draft
	var editing *models.Item
	if s.editing != nil {
		it := *s.editing
		editing = &it
	}
	s.mu.Unlock()

	var err error
	if editing == nil {
		_, err = s.catalog.Create(ctx, s.kind, draft.Payload(s.kind, models.StatusToWatch))
	} else {
		_, err = s.catalog.Update(ctx, s.kind, editing.ID, draft.Payload(s.kind, editing.Status))
	}
	if err != nil {
		s.logger.Error("error saving item", "err", err, "title", draft.Title)
		return err
	}

	s.mu.Lock()
	s.closeModals()
	s.mu.Unlock()

	s.Load(ctx)
	return nil
}

// RequestDelete opens the confirmation for it.
func (s *Screen) RequestDelete(it models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeModals()
	s.deleteTarget = &it
}

// DeleteTarget returns the item awaiting confirmation, or nil.
func (s *Screen) DeleteTarget() *models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteTarget == nil {
		return nil
	}
	it := *s.deleteTarget
	return &it
}

// CancelDelete clears the target without any request.
func (s *Screen) CancelDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteTarget = nil
}

// ConfirmDelete deletes the pending target and reloads.
//
// The target is kept when the request fails.
func (s *Screen) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	if s.deleteTarget == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: nothing to delete", shared.ErrInvalidInput)
	}
	target := *s.deleteTarget
	s.mu.Unlock()

	if err := s.catalog.Delete(ctx, s.kind, target.ID); err != nil {
		s.logger.Error("error deleting item", "err", err, "id", target.ID)
		return err
	}

	s.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteTarget != nil && s.deleteTarget.ID == target.ID {
		s.deleteTarget = nil
	}
	return nil
}

// Advance moves it one bucket forward.
func (s *Screen) Advance(ctx context.Context, it models.Item) error {
	next, ok := it.Status.Bucket().Next()
	if !ok {
		return fmt.Errorf("%w: %s cannot advance from %s", shared.ErrNoTransition, it.Title, it.Status)
	}
	return s.move(ctx, it, next)
}

// Retreat moves it one bucket back.
func (s *Screen) Retreat(ctx context.Context, it models.Item) error {
	prev, ok := it.Status.Bucket().Prev()
	if !ok {
		return fmt.Errorf("%w: %s cannot retreat from %s", shared.ErrNoTransition, it.Title, it.Status)
	}
	return s.move(ctx, it, prev)
}

// move sends the full item with only the status replaced.
func (s *Screen) move(ctx context.Context, it models.Item, to models.Status) error {
	if _, err := s.catalog.Update(ctx, s.kind, it.ID, it.WithStatus(to)); err != nil {
		s.logger.Error("error changing status", "err", err, "id", it.ID, "to", to)
		return err
	}
	s.Load(ctx)
	return nil
}

// ShowInfo opens the read-only detail view. No request is made.
func (s *Screen) ShowInfo(it models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeModals()
	s.infoTarget = &it
}

// InfoTarget returns the item being viewed, or nil.
func (s *Screen) InfoTarget() *models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.infoTarget == nil {
		return nil
	}
	it := *s.infoTarget
	return &it
}

// CloseInfo closes the detail view.
func (s *Screen) CloseInfo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infoTarget = nil
}

// BeginUpload marks an image upload as in flight for the open form and
// returns the id to hand back to [Screen.FinishUpload].
func (s *Screen) BeginUpload() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadSeq++
	s.upload = s.uploadSeq
	return s.upload
}

// Uploading reports whether an upload is in flight. Submit is discouraged, not blocked.
func (s *Screen) Uploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upload != 0
}

// FinishUpload records the outcome of an upload.
//
// On success the URL replaces the draft image. On failure the image field is
// left as it was and the upload alert is raised. A result whose form was
// closed, or that a newer upload superseded, is dropped and false returned.
func (s *Screen) FinishUpload(id uint64, url string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == 0 || id != s.upload || !s.formOpen {
		s.logger.Debug("discarding stale upload", "upload", id, "current", s.upload, "url", url)
		return false
	}
	s.upload = 0
	if err != nil {
		s.logger.Error("error uploading image", "err", err)
		s.alert = MsgUploadFailed
		return true
	}
	s.draft.ImageURL = url
	return true
}

// Actions lists the controls offered for it in the bucket it is shown in.
func Actions(it models.Item) []Action {
	actions := []Action{ActionInfo, ActionEdit, ActionDelete}
	bucket := it.Status.Bucket()
	if _, ok := bucket.Prev(); ok {
		actions = append(actions, ActionRetreat)
	}
	if _, ok := bucket.Next(); ok {
		actions = append(actions, ActionAdvance)
	}
	return actions
}

// IsSilent reports whether err belongs to the class that is only logged.
//
// Session rejections are handled by the client's redirect and validation
// failures by the alert, so neither needs further surfacing.
func IsSilent(err error) bool {
	return err != nil && !errors.Is(err, shared.ErrValidation) && !errors.Is(err, shared.ErrUnauthorized)
}
