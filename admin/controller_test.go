package admin

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeStore struct {
	mu        sync.Mutex
	projects  map[uuid.UUID]models.Project
	listErr   error
	createErr error
	deleteErr error
	updateErr map[uuid.UUID]error
	calls     []string
	// runs inside Update, outside the lock
	onUpdate func()
}

func newFakeStore(projects ...models.Project) *fakeStore {
	s := &fakeStore{
		projects:  make(map[uuid.UUID]models.Project),
		updateErr: make(map[uuid.UUID]error),
	}
	for _, p := range projects {
		s.projects[p.ID] = p
	}
	return s
}

func (s *fakeStore) ListOrdered(ctx context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "list")
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *fakeStore) Create(ctx context.Context, project models.Project) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "create")
	if s.createErr != nil {
		return uuid.Nil, s.createErr
	}
	project.ID = uuid.New()
	s.projects[project.ID] = project
	return project.ID, nil
}

func (s *fakeStore) Update(ctx context.Context, id uuid.UUID, fields models.ProjectFields) error {
	s.mu.Lock()
	s.calls = append(s.calls, "update")
	hook := s.onUpdate
	s.mu.Unlock()

	if hook != nil {
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.updateErr[id]; err != nil {
		return err
	}
	p, ok := s.projects[id]
	if !ok {
		return errs.NewNotFound("project")
	}
	fields.Apply(&p)
	s.projects[id] = p
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "delete")
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.projects, id)
	return nil
}

func (s *fakeStore) get(id uuid.UUID) models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects[id]
}

func (s *fakeStore) count(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == kind {
			n++
		}
	}
	return n
}

func (s *fakeStore) writes() int {
	return s.count("create") + s.count("update") + s.count("delete")
}

type fakeUploader struct {
	mu    sync.Mutex
	err   error
	names []string
}

func (u *fakeUploader) Upload(ctx context.Context, data []byte, fileName string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.names = append(u.names, fileName)
	if u.err != nil {
		return "", u.err
	}
	return "https://blob.example.com/thumbnails/" + fileName, nil
}

func (u *fakeUploader) calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.names)
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}
	}
	return r.notices[len(r.notices)-1]
}

func project(title string, order int) models.Project {
	return models.Project{
		ID:          uuid.New(),
		Title:       title,
		Description: title + " description",
		Thumbnail:   "https://blob.example.com/thumbnails/" + title + ".png",
		DemoLink:    "https://example.com/" + title,
		ViewText:    models.DefaultViewText,
		Order:       order,
	}
}

type harness struct {
	ctrl     *Controller
	store    *fakeStore
	uploader *fakeUploader
	notices  *noticeRecorder
	session  *auth.Session
}

func newHarness(t *testing.T, store *fakeStore, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		store:    store,
		uploader: &fakeUploader{},
		notices:  &noticeRecorder{},
		session:  auth.NewSession(&auth.Identity{Email: "admin@example.com"}),
	}
	opts = append([]Option{WithNotifier(h.notices), WithConfirm(func(string) bool { return true })}, opts...)
	h.ctrl = New(store, h.uploader, opts...)
	stop := h.ctrl.Watch(context.Background(), h.session)
	t.Cleanup(stop)
	require.Equal(t, StateReady, h.ctrl.State())
	return h
}

func (h *harness) create(t *testing.T, title string) {
	t.Helper()
	require.NoError(t, h.ctrl.BeginCreate())
	require.NoError(t, h.ctrl.UpdateForm(func(f *Form) {
		f.Title = title
		f.Description = title + " description"
		f.DemoLink = "https://example.com/" + title
	}))
	require.NoError(t, h.ctrl.SelectFile(title+".png", []byte("png")))
	require.NoError(t, h.ctrl.Submit(context.Background()))
}

func titles(projects []models.Project) []string {
	out := make([]string, len(projects))
	for i, p := range projects {
		out[i] = p.Title
	}
	return out
}

func orders(projects []models.Project) []int {
	out := make([]int, len(projects))
	for i, p := range projects {
		out[i] = p.Order
	}
	return out
}

func TestWatchEntersWithOrderedList(t *testing.T) {
	b, a, c := project("B", 2), project("A", 1), project("C", 3)
	h := newHarness(t, newFakeStore(b, a, c))

	assert.Equal(t, []string{"A", "B", "C"}, titles(h.ctrl.Projects()))
	assert.Equal(t, "admin@example.com", h.ctrl.Identity().Email)
	assert.Equal(t, 1, h.store.count("list"))
}

func TestEnterFailureLeavesEmptyList(t *testing.T) {
	store := newFakeStore(project("A", 1))
	store.listErr = errors.New("connection refused")

	h := newHarness(t, store)

	assert.Empty(t, h.ctrl.Projects())
	assert.Equal(t, LevelError, h.notices.last().Level)
	assert.True(t, errs.IsStoreUnavailable(h.notices.last().Err))

	store.mu.Lock()
	store.listErr = nil
	store.mu.Unlock()
	require.NoError(t, h.ctrl.Enter(context.Background()))
	assert.Equal(t, []string{"A"}, titles(h.ctrl.Projects()))
}

func TestNoSessionIsUnauthenticated(t *testing.T) {
	store := newFakeStore(project("A", 1))
	ctrl := New(store, &fakeUploader{})
	stop := ctrl.Watch(context.Background(), auth.NewSession(nil))
	defer stop()

	assert.Equal(t, StateUnauthenticated, ctrl.State())
	assert.Zero(t, store.count("list"))
	assert.True(t, errs.IsNotAuthenticated(ctrl.Enter(context.Background())))
	assert.True(t, errs.IsNotAuthenticated(ctrl.BeginCreate()))
}

func TestSignInDuringActionReportsSkippedLoad(t *testing.T) {
	store := newFakeStore(project("A", 1))
	notices := &noticeRecorder{}
	ctrl := New(store, &fakeUploader{}, WithNotifier(notices))

	ctrl.action.Lock()
	stop := ctrl.Watch(context.Background(), auth.NewSession(&auth.Identity{Email: "admin@example.com"}))
	defer stop()
	ctrl.action.Unlock()

	last := notices.last()
	assert.Equal(t, LevelError, last.Level)
	assert.True(t, errs.IsBusy(last.Err))
	assert.Zero(t, store.count("list"))
	assert.Equal(t, StateLoading, ctrl.State())

	require.NoError(t, ctrl.Enter(context.Background()))
	assert.Equal(t, StateReady, ctrl.State())
	assert.Equal(t, []string{"A"}, titles(ctrl.Projects()))
}

func TestSignOutIsTerminal(t *testing.T) {
	h := newHarness(t, newFakeStore(project("A", 1)))
	require.NoError(t, h.ctrl.BeginCreate())

	h.session.SignOut()

	assert.Equal(t, StateUnauthenticated, h.ctrl.State())
	assert.Empty(t, h.ctrl.Projects())
	assert.Nil(t, h.ctrl.Identity())
	assert.True(t, errs.IsNotAuthenticated(h.ctrl.Reorder(context.Background(), 0, Down)))
	assert.True(t, errs.IsNotAuthenticated(h.ctrl.Submit(context.Background())))

	h.session.SignIn(auth.Identity{Email: "admin@example.com"})
	assert.Equal(t, StateUnauthenticated, h.ctrl.State())
}

func TestCreateAssignsNextOrder(t *testing.T) {
	t.Run("empty list starts at one", func(t *testing.T) {
		h := newHarness(t, newFakeStore())
		h.create(t, "first")

		got := h.ctrl.Projects()
		require.Len(t, got, 1)
		assert.Equal(t, 1, got[0].Order)
		assert.Equal(t, models.DefaultViewText, got[0].ViewText)
		assert.Equal(t, "https://blob.example.com/thumbnails/first.png", got[0].Thumbnail)
	})

	t.Run("one past the highest order", func(t *testing.T) {
		h := newHarness(t, newFakeStore(project("A", 2), project("B", 5), project("C", 3)))
		h.create(t, "D")

		got := h.ctrl.Projects()
		assert.Equal(t, []int{2, 3, 5, 6}, orders(got))
		assert.Equal(t, "D", got[3].Title)
		assert.Equal(t, StateReady, h.ctrl.State())
		assert.Equal(t, "Project added successfully!", h.notices.last().Message)
	})
}

func TestOrdersStayDistinctAcrossCreatesAndDeletes(t *testing.T) {
	h := newHarness(t, newFakeStore())
	ctx := context.Background()

	h.create(t, "A")
	h.create(t, "B")
	h.create(t, "C")

	middle := h.ctrl.Projects()[1]
	require.NoError(t, h.ctrl.Delete(ctx, middle.ID))
	h.create(t, "D")

	last := h.ctrl.Projects()[2]
	require.NoError(t, h.ctrl.Delete(ctx, last.ID))
	h.create(t, "E")
	h.create(t, "F")

	require.NoError(t, h.ctrl.Enter(ctx))
	got := h.ctrl.Projects()
	seen := make(map[int]bool)
	for _, p := range got {
		assert.False(t, seen[p.Order], "order %d assigned twice", p.Order)
		seen[p.Order] = true
	}
	assert.Equal(t, []string{"A", "C", "E", "F"}, titles(got))
}

func TestReorderSwapsWithNeighbour(t *testing.T) {
	a, b, c := project("A", 1), project("B", 2), project("C", 3)
	h := newHarness(t, newFakeStore(a, b, c))

	require.NoError(t, h.ctrl.Reorder(context.Background(), 1, Up))

	got := h.ctrl.Projects()
	assert.Equal(t, []string{"B", "A", "C"}, titles(got))
	assert.Equal(t, []int{1, 2, 3}, orders(got))

	assert.Equal(t, 1, h.store.get(b.ID).Order)
	assert.Equal(t, 2, h.store.get(a.ID).Order)
	assert.Equal(t, 3, h.store.get(c.ID).Order)
	assert.Equal(t, 2, h.store.count("update"))
	assert.Equal(t, b.Title, h.store.get(b.ID).Title)
}

func TestReorderUpThenDownRestoresOrders(t *testing.T) {
	a, b, c := project("A", 1), project("B", 4), project("C", 9)
	h := newHarness(t, newFakeStore(a, b, c))
	ctx := context.Background()
	before := h.ctrl.Projects()

	require.NoError(t, h.ctrl.Reorder(ctx, 2, Up))
	require.NoError(t, h.ctrl.Reorder(ctx, 1, Down))

	if diff := cmp.Diff(before, h.ctrl.Projects()); diff != "" {
		t.Errorf("projects changed after up/down (-want +got):\n%s", diff)
	}
	for _, p := range before {
		assert.Equal(t, p.Order, h.store.get(p.ID).Order)
	}
}

func TestReorderAtBoundaryIsNoop(t *testing.T) {
	h := newHarness(t, newFakeStore(project("A", 1), project("B", 2)))
	ctx := context.Background()
	before := h.ctrl.Projects()

	require.NoError(t, h.ctrl.Reorder(ctx, 0, Up))
	require.NoError(t, h.ctrl.Reorder(ctx, 1, Down))

	assert.Zero(t, h.store.writes())
	assert.Equal(t, before, h.ctrl.Projects())
}

func TestReorderOutOfRange(t *testing.T) {
	h := newHarness(t, newFakeStore(project("A", 1)))

	err := h.ctrl.Reorder(context.Background(), 3, Up)
	assert.ErrorIs(t, err, errs.ErrInvalidField)
	assert.Zero(t, h.store.writes())
}

func TestReorderFailureKeepsLocalSwap(t *testing.T) {
	a, b := project("A", 1), project("B", 2)
	store := newFakeStore(a, b)
	store.updateErr[a.ID] = errors.New("write timeout")
	h := newHarness(t, store)

	err := h.ctrl.Reorder(context.Background(), 0, Down)

	require.Error(t, err)
	assert.True(t, errs.IsPersistFailed(err))
	assert.Equal(t, []string{"B", "A"}, titles(h.ctrl.Projects()))
	assert.Equal(t, 1, store.get(b.ID).Order)
	assert.Equal(t, 1, store.get(a.ID).Order)
	assert.Equal(t, LevelError, h.notices.last().Level)
}

func TestSubmitCreateWithoutThumbnail(t *testing.T) {
	h := newHarness(t, newFakeStore())
	require.NoError(t, h.ctrl.BeginCreate())
	require.NoError(t, h.ctrl.UpdateForm(func(f *Form) {
		f.Title = "A"
		f.Description = "desc"
		f.DemoLink = "https://example.com"
	}))

	err := h.ctrl.Submit(context.Background())

	assert.True(t, errs.IsMissingThumbnail(err))
	assert.Zero(t, h.uploader.calls())
	assert.Zero(t, h.store.writes())
	assert.Equal(t, StateCreating, h.ctrl.State())
	assert.Equal(t, "A", h.ctrl.Form().Title)
}

func TestSubmitMissingRequiredField(t *testing.T) {
	h := newHarness(t, newFakeStore())
	require.NoError(t, h.ctrl.BeginCreate())
	require.NoError(t, h.ctrl.UpdateForm(func(f *Form) { f.Title = "A" }))
	require.NoError(t, h.ctrl.SelectFile("a.png", []byte("png")))

	err := h.ctrl.Submit(context.Background())

	assert.True(t, errs.IsMissingRequiredFieldError(err))
	assert.Contains(t, err.Error(), "description")
	assert.Zero(t, h.uploader.calls())
	assert.Zero(t, h.store.writes())
}

func TestSelectFileTooLarge(t *testing.T) {
	h := newHarness(t, newFakeStore())
	require.NoError(t, h.ctrl.BeginCreate())

	err := h.ctrl.SelectFile("huge.png", make([]byte, models.MaxThumbnailBytes+1))
	assert.True(t, errs.IsFileTooLarge(err))
	assert.False(t, h.ctrl.HasPendingFile())
	assert.Empty(t, h.ctrl.ThumbnailFileName())

	require.NoError(t, h.ctrl.SelectFile("exact.png", make([]byte, models.MaxThumbnailBytes)))
	assert.True(t, h.ctrl.HasPendingFile())
	assert.Equal(t, "exact.png", h.ctrl.ThumbnailFileName())

	assert.Zero(t, h.uploader.calls())
	assert.Zero(t, h.store.writes())
}

func TestEditTitleOnlyKeepsThumbnail(t *testing.T) {
	a := project("A", 7)
	h := newHarness(t, newFakeStore(a))

	require.NoError(t, h.ctrl.BeginEdit(a))
	assert.Equal(t, StateEditing, h.ctrl.State())
	assert.Equal(t, a.ID, h.ctrl.EditingID())
	assert.Equal(t, "A.png", h.ctrl.ThumbnailFileName())

	require.NoError(t, h.ctrl.UpdateForm(func(f *Form) { f.Title = "Renamed" }))
	require.NoError(t, h.ctrl.Submit(context.Background()))

	saved := h.store.get(a.ID)
	assert.Equal(t, "Renamed", saved.Title)
	assert.Equal(t, a.Thumbnail, saved.Thumbnail)
	assert.Equal(t, 7, saved.Order)
	assert.Zero(t, h.uploader.calls())
	assert.Equal(t, StateReady, h.ctrl.State())
	assert.Equal(t, uuid.Nil, h.ctrl.EditingID())
	assert.Equal(t, DefaultForm(), h.ctrl.Form())
	assert.Equal(t, "Project updated successfully!", h.notices.last().Message)
}

func TestEditWithNewFileReplacesThumbnail(t *testing.T) {
	a := project("A", 1)
	h := newHarness(t, newFakeStore(a))

	require.NoError(t, h.ctrl.BeginEdit(a))
	require.NoError(t, h.ctrl.SelectFile("new.png", []byte("png")))
	require.NoError(t, h.ctrl.Submit(context.Background()))

	assert.Equal(t, "https://blob.example.com/thumbnails/new.png", h.store.get(a.ID).Thumbnail)
	assert.Equal(t, 1, h.uploader.calls())
}

func TestUploadFailureSkipsPersist(t *testing.T) {
	h := newHarness(t, newFakeStore())
	h.uploader.err = errors.New("bucket unreachable")

	require.NoError(t, h.ctrl.BeginCreate())
	require.NoError(t, h.ctrl.UpdateForm(func(f *Form) {
		f.Title = "A"
		f.Description = "desc"
		f.DemoLink = "https://example.com"
	}))
	require.NoError(t, h.ctrl.SelectFile("a.png", []byte("png")))

	err := h.ctrl.Submit(context.Background())

	assert.True(t, errs.IsUploadFailed(err))
	assert.Zero(t, h.store.writes())
	assert.Equal(t, StateCreating, h.ctrl.State())
	assert.True(t, h.ctrl.HasPendingFile())
}

func TestPersistFailureAfterUploadKeepsUploadedURL(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("insert failed")
	h := newHarness(t, store)

	require.NoError(t, h.ctrl.BeginCreate())
	require.NoError(t, h.ctrl.UpdateForm(func(f *Form) {
		f.Title = "A"
		f.Description = "desc"
		f.DemoLink = "https://example.com"
	}))
	require.NoError(t, h.ctrl.SelectFile("a.png", []byte("png")))

	err := h.ctrl.Submit(context.Background())

	assert.True(t, errs.IsPersistFailed(err))
	assert.Equal(t, 1, h.uploader.calls())
	assert.Equal(t, StateCreating, h.ctrl.State())
	assert.Equal(t, "https://blob.example.com/thumbnails/a.png", h.ctrl.Form().Thumbnail)
	assert.False(t, h.ctrl.HasPendingFile())
	assert.Empty(t, h.ctrl.Projects())

	store.mu.Lock()
	store.createErr = nil
	store.mu.Unlock()
	require.NoError(t, h.ctrl.Submit(context.Background()))

	assert.Equal(t, 1, h.uploader.calls())
	require.Len(t, h.ctrl.Projects(), 1)
	assert.Equal(t, "https://blob.example.com/thumbnails/a.png", h.ctrl.Projects()[0].Thumbnail)
}

func TestEditOfVanishedProjectReportsNotFound(t *testing.T) {
	a := project("A", 1)
	store := newFakeStore()
	h := newHarness(t, store)

	require.NoError(t, h.ctrl.BeginEdit(a))
	err := h.ctrl.Submit(context.Background())

	assert.True(t, errs.IsNotFound(err))
	assert.False(t, errs.IsPersistFailed(err))
	assert.Equal(t, StateEditing, h.ctrl.State())
}

func TestSubmitRefreshFailure(t *testing.T) {
	a := project("A", 1)
	store := newFakeStore(a)
	h := newHarness(t, store)

	require.NoError(t, h.ctrl.BeginEdit(a))
	require.NoError(t, h.ctrl.UpdateForm(func(f *Form) { f.Title = "Renamed" }))
	store.mu.Lock()
	store.listErr = errors.New("connection reset")
	store.mu.Unlock()

	err := h.ctrl.Submit(context.Background())

	assert.True(t, errs.IsStoreUnavailable(err))
	assert.Equal(t, "Renamed", store.get(a.ID).Title)
	assert.Equal(t, StateReady, h.ctrl.State())
	assert.Equal(t, []string{"A"}, titles(h.ctrl.Projects()))
}

func TestSubmitOutsideForm(t *testing.T) {
	h := newHarness(t, newFakeStore())

	err := h.ctrl.Submit(context.Background())
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	assert.ErrorIs(t, h.ctrl.UpdateForm(func(*Form) {}), errs.ErrInvalidTransition)
}

func TestDeleteDeclined(t *testing.T) {
	a := project("A", 1)
	var prompts []string
	h := newHarness(t, newFakeStore(a), WithConfirm(func(prompt string) bool {
		prompts = append(prompts, prompt)
		return false
	}))

	require.NoError(t, h.ctrl.Delete(context.Background(), a.ID))

	assert.Equal(t, []string{DeletePrompt}, prompts)
	assert.Zero(t, h.store.writes())
	assert.Len(t, h.ctrl.Projects(), 1)
}

func TestDeleteWithoutConfirmGateIsDeclined(t *testing.T) {
	a := project("A", 1)
	store := newFakeStore(a)
	ctrl := New(store, &fakeUploader{}, WithNotifier(&noticeRecorder{}))
	stop := ctrl.Watch(context.Background(), auth.NewSession(&auth.Identity{Email: "admin@example.com"}))
	defer stop()

	require.NoError(t, ctrl.Delete(context.Background(), a.ID))
	assert.Zero(t, store.writes())
}

func TestDeleteFailureKeepsLocalState(t *testing.T) {
	a, b := project("A", 1), project("B", 2)
	store := newFakeStore(a, b)
	store.deleteErr = errors.New("permission denied")
	h := newHarness(t, store)

	err := h.ctrl.Delete(context.Background(), a.ID)

	assert.True(t, errs.IsPersistFailed(err))
	assert.Equal(t, []string{"A", "B"}, titles(h.ctrl.Projects()))
	assert.Equal(t, LevelError, h.notices.last().Level)
}

func TestDeleteLeavesGapsAndClosesEdit(t *testing.T) {
	a, b, c := project("A", 1), project("B", 2), project("C", 3)
	h := newHarness(t, newFakeStore(a, b, c))

	require.NoError(t, h.ctrl.BeginEdit(b))
	require.NoError(t, h.ctrl.Delete(context.Background(), b.ID))

	got := h.ctrl.Projects()
	assert.Equal(t, []int{1, 3}, orders(got))
	assert.Equal(t, StateReady, h.ctrl.State())
	assert.Equal(t, uuid.Nil, h.ctrl.EditingID())
	assert.Equal(t, 1, h.store.count("delete"))
	assert.Zero(t, h.store.count("update"))
}

func TestCancelEditDiscardsForm(t *testing.T) {
	a := project("A", 1)
	h := newHarness(t, newFakeStore(a))

	require.NoError(t, h.ctrl.BeginEdit(a))
	require.NoError(t, h.ctrl.SelectFile("new.png", []byte("png")))
	require.NoError(t, h.ctrl.CancelEdit())

	assert.Equal(t, StateReady, h.ctrl.State())
	assert.False(t, h.ctrl.HasPendingFile())
	assert.Equal(t, DefaultForm(), h.ctrl.Form())
	assert.Zero(t, h.store.writes())
}

func TestActionDuringSubmitIsBusy(t *testing.T) {
	a, b := project("A", 1), project("B", 2)
	store := newFakeStore(a, b)
	h := newHarness(t, store)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	store.mu.Lock()
	store.onUpdate = func() {
		once.Do(func() { close(started) })
		<-release
	}
	store.mu.Unlock()

	require.NoError(t, h.ctrl.BeginEdit(a))
	done := make(chan error, 1)
	go func() {
		done <- h.ctrl.Submit(context.Background())
	}()
	<-started

	assert.Equal(t, StateSubmitting, h.ctrl.State())
	assert.True(t, errs.IsBusy(h.ctrl.Reorder(context.Background(), 0, Down)))
	assert.True(t, errs.IsBusy(h.ctrl.Delete(context.Background(), b.ID)))
	assert.True(t, errs.IsBusy(h.ctrl.Submit(context.Background())))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateReady, h.ctrl.State())
	assert.Equal(t, 1, store.count("update"))
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("UP")
	require.NoError(t, err)
	assert.Equal(t, Up, d)

	d, err = ParseDirection(" down ")
	require.NoError(t, err)
	assert.Equal(t, Down, d)

	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, errs.ErrInvalidField)
}

func TestFileNameFromURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"https://blob.example.com/thumbnails/shot-1a2b.png", "shot-1a2b.png"},
		{"https://blob.example.com/thumbnails/my%20shot.png?v=2", "my shot.png"},
		{"https://blob.example.com/", "https://blob.example.com/"},
		{"plain.png", "plain.png"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FileNameFromURL(tt.in))
		})
	}
}
