package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ProjectStore persists projects. ListOrdered returns projects ascending by
// order; Delete of an absent id succeeds.
type ProjectStore interface {
	ListOrdered(ctx context.Context) ([]models.Project, error)
	Create(ctx context.Context, project models.Project) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, fields models.ProjectFields) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, fileName string) (string, error)
}

// SessionSource delivers the current identity (nil when signed out) on
// subscribe and again on every change.
type SessionSource interface {
	Subscribe(fn func(*auth.Identity)) (unsubscribe func())
}

// ConfirmFunc is the synchronous yes/no gate shown before destructive actions.
type ConfirmFunc func(prompt string) bool

// DeletePrompt is the question asked before a project is deleted.
const DeletePrompt = "Are you sure you want to delete this project?"

// Controller drives project administration: it mirrors the store's project
// list locally, holds the create/edit form, and synchronizes user actions
// with the store and the uploader.
//
// The local list is a cache. It is authoritative only right after a
// successful ListOrdered; after a reorder it reflects the optimistic swap
// even if one of the two updates failed, until the next refresh.
type Controller struct {
	store    ProjectStore
	uploader Uploader
	notifier Notifier
	confirm  ConfirmFunc
	logger   zerolog.Logger

	// held for the whole of one user action
	action sync.Mutex

	mu        sync.RWMutex
	state     State
	identity  *auth.Identity
	projects  []models.Project
	form      Form
	editingID uuid.UUID
	pending   *PendingFile
	thumbName string
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier routes user-visible notices to n.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// WithConfirm installs the confirmation gate. Without one, deletes are
// always declined.
func WithConfirm(fn ConfirmFunc) Option {
	return func(c *Controller) {
		c.confirm = fn
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(store ProjectStore, uploader Uploader, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		uploader: uploader,
		confirm:  func(string) bool { return false },
		logger:   log.With().Str("component", "adminController").Logger(),
		state:    StateLoading,
		form:     DefaultForm(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = LogNotifier{Logger: c.logger}
	}
	return c
}

// Watch subscribes the controller to session changes. An identity enters
// the authenticated flow; nil moves the controller to Unauthenticated.
func (c *Controller) Watch(ctx context.Context, session SessionSource) (stop func()) {
	return session.Subscribe(func(identity *auth.Identity) {
		c.onAuthChange(ctx, identity)
	})
}

func (c *Controller) onAuthChange(ctx context.Context, identity *auth.Identity) {
	c.mu.Lock()
	if c.state == StateUnauthenticated {
		c.mu.Unlock()
		c.logger.Debug().Msg("Ignoring session change after sign-out")
		return
	}
	if identity == nil {
		c.state = StateUnauthenticated
		c.identity = nil
		c.projects = nil
		c.resetFormLocked()
		c.mu.Unlock()
		c.logger.Info().Msg("No signed-in user; handing off to sign-in")
		return
	}
	first := c.identity == nil
	id := *identity
	c.identity = &id
	c.mu.Unlock()

	if !first {
		return
	}
	// Enter reports store failures itself; only a collision with a running
	// action is left to surface here.
	if err := c.Enter(ctx); errors.Is(err, errs.ErrBusy) {
		c.notifier.Notify(errorNotice("Projects were not loaded because another action is running. Reload to try again.", err))
	}
}

// Enter loads the ordered project list. On failure the list is left empty,
// the error is surfaced and the controller is still usable.
func (c *Controller) Enter(ctx context.Context) error {
	if !c.action.TryLock() {
		return errs.ErrBusy
	}
	defer c.action.Unlock()

	c.mu.Lock()
	if c.state == StateUnauthenticated || c.identity == nil {
		c.mu.Unlock()
		return errs.ErrNotAuthenticated
	}
	resume := c.state
	if resume != StateCreating && resume != StateEditing {
		resume = StateReady
	}
	c.state = StateLoading
	c.mu.Unlock()

	projects, err := c.store.ListOrdered(ctx)

	c.mu.Lock()
	if err != nil {
		c.projects = nil
	} else {
		models.SortByOrder(projects)
		c.projects = projects
	}
	c.setStateLocked(resume)
	c.mu.Unlock()

	if err != nil {
		err = storeUnavailable(err)
		c.notifier.Notify(errorNotice("Failed to load projects.", err))
		return err
	}
	return nil
}

// BeginEdit copies project into the form and switches to editing it.
func (c *Controller) BeginEdit(project models.Project) error {
	if !c.action.TryLock() {
		return errs.ErrBusy
	}
	defer c.action.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireIdleLocked(); err != nil {
		return err
	}

	c.form = Form{
		Title:       project.Title,
		Description: project.Description,
		Thumbnail:   project.Thumbnail,
		DemoLink:    project.DemoLink,
		ViewText:    project.ViewText,
		Order:       project.Order,
	}
	c.editingID = project.ID
	c.pending = nil
	c.thumbName = FileNameFromURL(project.Thumbnail)
	c.state = StateEditing
	return nil
}

// BeginCreate clears the form and switches to creating a new project.
func (c *Controller) BeginCreate() error {
	if !c.action.TryLock() {
		return errs.ErrBusy
	}
	defer c.action.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireIdleLocked(); err != nil {
		return err
	}

	c.resetFormLocked()
	c.state = StateCreating
	return nil
}

// UpdateForm applies fn to the form while creating or editing.
func (c *Controller) UpdateForm(fn func(*Form)) error {
	if !c.action.TryLock() {
		return errs.ErrBusy
	}
	defer c.action.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireFormLocked(); err != nil {
		return err
	}
	fn(&c.form)
	return nil
}

// SelectFile stages a new thumbnail. Files over the size limit are rejected
// here and nothing is staged.
func (c *Controller) SelectFile(name string, data []byte) error {
	if !c.action.TryLock() {
		return errs.ErrBusy
	}
	defer c.action.Unlock()

	c.mu.Lock()
	if err := c.requireFormLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if len(data) > models.MaxThumbnailBytes {
		c.pending = nil
		c.thumbName = FileNameFromURL(c.form.Thumbnail)
		c.mu.Unlock()
		err := fileTooLarge(name, len(data))
		c.notifier.Notify(errorNotice("File size exceeds 1 MB. Please choose a smaller image.", err))
		return err
	}
	c.pending = &PendingFile{Name: name, Data: append([]byte(nil), data...)}
	c.thumbName = name
	c.mu.Unlock()
	return nil
}

// Submit saves the form: upload the staged file (if any), then create or
// update the project, then refresh the list.
//
// A failure before persistence leaves the controller in its pre-submit mode
// with the form intact. If the upload succeeded but persistence failed the
// blob stays where it is; the form keeps the uploaded URL so a retry does
// not upload again.
func (c *Controller) Submit(ctx context.Context) error {
	if !c.action.TryLock() {
		return errs.ErrBusy
	}
	defer c.action.Unlock()

	c.mu.Lock()
	mode := c.state
	if mode != StateCreating && mode != StateEditing {
		c.mu.Unlock()
		if mode == StateUnauthenticated {
			return errs.ErrNotAuthenticated
		}
		return fmt.Errorf("submit from %s: %w", mode, errs.ErrInvalidTransition)
	}
	form := c.form
	pending := c.pending
	editingID := c.editingID
	c.mu.Unlock()

	if pending != nil && len(pending.Data) > models.MaxThumbnailBytes {
		err := fileTooLarge(pending.Name, len(pending.Data))
		c.notifier.Notify(errorNotice("File size exceeds 1 MB. Please choose a smaller image.", err))
		return err
	}
	// A thumbnail already uploaded by an earlier attempt counts as selected.
	if pending == nil && mode == StateCreating && form.Thumbnail == "" {
		err := errs.ErrMissingThumbnail
		c.notifier.Notify(errorNotice("Please select a thumbnail image.", err))
		return err
	}
	if field := form.missingField(); field != "" {
		err := fmt.Errorf("%w: %s", errs.ErrMissingRequiredField, field)
		c.notifier.Notify(errorNotice("Please fill in "+field+".", err))
		return err
	}

	c.setState(StateSubmitting)

	thumbnail := form.Thumbnail
	uploaded := false
	if pending != nil {
		url, err := c.uploader.Upload(ctx, pending.Data, pending.Name)
		if err != nil {
			c.setState(mode)
			err = uploadFailed(pending.Name, err)
			c.notifier.Notify(errorNotice("Failed to upload thumbnail.", err))
			return err
		}
		thumbnail = url
		uploaded = true

		c.mu.Lock()
		c.form.Thumbnail = url
		c.pending = nil
		c.mu.Unlock()
	}

	viewText := form.ViewText
	if viewText == "" {
		viewText = models.DefaultViewText
	}

	var err error
	var success string
	if mode == StateEditing {
		err = c.store.Update(ctx, editingID, models.ProjectFields{
			Title:       &form.Title,
			Description: &form.Description,
			Thumbnail:   &thumbnail,
			DemoLink:    &form.DemoLink,
			ViewText:    &viewText,
		})
		success = "Project updated successfully!"
	} else {
		c.mu.RLock()
		order := models.NextOrder(c.projects)
		c.mu.RUnlock()
		_, err = c.store.Create(ctx, models.Project{
			Title:       form.Title,
			Description: form.Description,
			Thumbnail:   thumbnail,
			DemoLink:    form.DemoLink,
			ViewText:    viewText,
			Order:       order,
		})
		success = "Project added successfully!"
	}
	if err != nil {
		c.setState(mode)
		if uploaded {
			c.logger.Warn().Str("thumbnail", thumbnail).Msg("Uploaded thumbnail left without a project")
		}
		err = persistFailed("save project", err)
		c.notifier.Notify(errorNotice("Failed to save project.", err))
		return err
	}

	projects, listErr := c.store.ListOrdered(ctx)

	c.mu.Lock()
	if listErr == nil {
		models.SortByOrder(projects)
		c.projects = projects
	}
	c.resetFormLocked()
	c.setStateLocked(StateReady)
	c.mu.Unlock()

	c.notifier.Notify(infoNotice(success))
	if listErr != nil {
		listErr = storeUnavailable(listErr)
		c.notifier.Notify(errorNotice("Saved, but failed to reload projects.", listErr))
		return listErr
	}
	return nil
}

// Reorder moves the project at index one step in direction by swapping its
// order with the neighbour's. The swap is applied locally first; the two
// store updates run concurrently and a failure is surfaced without rolling
// the local swap back.
func (c *Controller) Reorder(ctx context.Context, index int, direction Direction) error {
	if !c.action.TryLock() {
		return errs.ErrBusy
	}
	defer c.action.Unlock()

	c.mu.Lock()
	if err := c.requireIdleLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if index < 0 || index >= len(c.projects) {
		c.mu.Unlock()
		return errs.NewInvalidFieldError("index", fmt.Sprintf("%d is outside the list", index))
	}
	neighbor := index + direction.offset()
	if neighbor < 0 || neighbor >= len(c.projects) {
		c.mu.Unlock()
		return nil
	}

	moved, other := c.projects[index], c.projects[neighbor]
	moved.Order, other.Order = other.Order, moved.Order
	c.projects[neighbor], c.projects[index] = moved, other
	c.mu.Unlock()

	var g errgroup.Group
	var movedErr, otherErr error
	g.Go(func() error {
		movedErr = c.store.Update(ctx, moved.ID, models.OrderOnly(moved.Order))
		return movedErr
	})
	g.Go(func() error {
		otherErr = c.store.Update(ctx, other.ID, models.OrderOnly(other.Order))
		return otherErr
	})
	if g.Wait() == nil {
		return nil
	}

	var failures []error
	if movedErr != nil {
		failures = append(failures, persistFailed("reorder "+moved.ID.String(), movedErr))
	}
	if otherErr != nil {
		failures = append(failures, persistFailed("reorder "+other.ID.String(), otherErr))
	}
	err := errors.Join(failures...)
	c.notifier.Notify(errorNotice("Failed to save the new order. Reload to see the saved order.", err))
	return err
}

// Delete removes a project after confirmation. Remaining orders are left as
// they are.
func (c *Controller) Delete(ctx context.Context, id uuid.UUID) error {
	if !c.action.TryLock() {
		return errs.ErrBusy
	}
	defer c.action.Unlock()

	c.mu.RLock()
	err := c.requireIdleLocked()
	c.mu.RUnlock()
	if err != nil {
		return err
	}

	if !c.confirm(DeletePrompt) {
		c.logger.Debug().Str("projectID", id.String()).Msg("Delete declined")
		return nil
	}

	if err := c.store.Delete(ctx, id); err != nil {
		err = persistFailed("delete project", err)
		c.notifier.Notify(errorNotice("Failed to delete project.", err))
		return err
	}

	c.mu.Lock()
	kept := c.projects[:0:0]
	for _, p := range c.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.projects = kept
	if c.state == StateEditing && c.editingID == id {
		c.resetFormLocked()
		c.setStateLocked(StateReady)
	}
	c.mu.Unlock()

	c.notifier.Notify(infoNotice("Project deleted successfully!"))
	return nil
}

// CancelEdit drops the form and any staged file and returns to Ready.
func (c *Controller) CancelEdit() error {
	if !c.action.TryLock() {
		return errs.ErrBusy
	}
	defer c.action.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireIdleLocked(); err != nil {
		return err
	}
	c.resetFormLocked()
	c.state = StateReady
	return nil
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Projects returns a copy of the local list in display order.
func (c *Controller) Projects() []models.Project {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Project(nil), c.projects...)
}

func (c *Controller) Form() Form {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.form
}

// EditingID is the project being edited, or uuid.Nil.
func (c *Controller) EditingID() uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.editingID
}

// ThumbnailFileName names the staged file, or the current thumbnail's file
// when editing without a new selection.
func (c *Controller) ThumbnailFileName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.thumbName
}

// HasPendingFile reports whether a new thumbnail is staged for upload.
func (c *Controller) HasPendingFile() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pending != nil
}

func (c *Controller) Identity() *auth.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return nil
	}
	id := *c.identity
	return &id
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.setStateLocked(s)
	c.mu.Unlock()
}

// setStateLocked never leaves Unauthenticated: a sign-out that lands while
// an action is in flight wins.
func (c *Controller) setStateLocked(s State) {
	if c.state == StateUnauthenticated {
		return
	}
	c.state = s
}

func (c *Controller) resetFormLocked() {
	c.form = DefaultForm()
	c.editingID = uuid.Nil
	c.pending = nil
	c.thumbName = ""
}

// requireIdleLocked admits list actions from Ready and from either form mode.
func (c *Controller) requireIdleLocked() error {
	switch c.state {
	case StateReady, StateCreating, StateEditing:
		return nil
	case StateUnauthenticated:
		return errs.ErrNotAuthenticated
	case StateSubmitting, StateLoading:
		return errs.ErrBusy
	}
	return errs.ErrInvalidTransition
}

func (c *Controller) requireFormLocked() error {
	switch c.state {
	case StateCreating, StateEditing:
		return nil
	case StateUnauthenticated:
		return errs.ErrNotAuthenticated
	}
	return fmt.Errorf("form is closed in %s: %w", c.state, errs.ErrInvalidTransition)
}
