package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"alumni-prep-backend/internal/domain"
	"alumni-prep-backend/internal/usecase"
	"alumni-prep-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mocks

type MockAlumniRepo struct {
	mock.Mock
}

func (m *MockAlumniRepo) Create(ctx context.Context, profile *domain.CandidateProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockAlumniRepo) List(ctx context.Context) ([]domain.CandidateProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateProfile), args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, file domain.StagedFile) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

// memoryRepo is a working record store that also records the call order.
type memoryRepo struct {
	mu       sync.Mutex
	profiles []domain.CandidateProfile
	calls    *[]string
	listErr  error
}

func (r *memoryRepo) Create(ctx context.Context, profile *domain.CandidateProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.calls = append(*r.calls, "create")
	profile.ID = int64(len(r.profiles) + 1)
	profile.CreatedAt = time.Now()
	r.profiles = append(r.profiles, *profile)
	return nil
}

func (r *memoryRepo) List(ctx context.Context) ([]domain.CandidateProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.calls = append(*r.calls, "list")
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.CandidateProfile, len(r.profiles))
	copy(out, r.profiles)
	return out, nil
}

type recordingUploader struct {
	url   string
	calls *[]string
}

func (u *recordingUploader) Upload(ctx context.Context, file domain.StagedFile) (string, error) {
	*u.calls = append(*u.calls, "upload")
	return u.url, nil
}

// Helpers

func newForm(repo domain.AlumniRepository, uploader domain.PictureUploader) (*usecase.SignupForm, *usecase.AlumniDirectory) {
	dir := usecase.NewAlumniDirectory(repo, time.Second)
	form := usecase.NewSignupForm("test", usecase.SignupDeps{
		Validate:       validation.New(),
		Uploader:       uploader,
		Repo:           repo,
		Directory:      dir,
		PersistTimeout: time.Second,
	})
	form.Open()
	return form, dir
}

func fill(t *testing.T, form *usecase.SignupForm, fields map[string]string) {
	t.Helper()
	for k, v := range fields {
		require.NoError(t, form.UpdateField(k, v))
	}
}

func validFields() map[string]string {
	return map[string]string{
		domain.FieldName:    "Ada Lovelace",
		domain.FieldEmail:   "ada@example.com",
		domain.FieldCompany: "Analytical Engines",
	}
}

// Validation engine

func TestValidateDraft(t *testing.T) {
	v := validation.New()

	t.Run("invalid email is reported", func(t *testing.T) {
		for _, email := range []string{"", "bad-email", "a@b", "a@b.c", "@example.com", "a b@example.com"} {
			errs := usecase.ValidateDraft(v, domain.Draft{Email: email})
			assert.Equal(t, validation.CodeInvalidEmail, errs[domain.FieldEmail], "email %q", email)
		}
	})

	t.Run("valid email with empty links is clean", func(t *testing.T) {
		for _, email := range []string{"ada@example.com", "first.last+tag@sub.example.co", "x_y%z@host-1.io"} {
			errs := usecase.ValidateDraft(v, domain.Draft{Email: email})
			assert.Empty(t, errs, "email %q", email)
		}
	})

	t.Run("scenario from the signup form", func(t *testing.T) {
		errs := usecase.ValidateDraft(v, domain.Draft{Name: "A", Email: "bad-email", Company: "X"})
		assert.Equal(t, domain.ErrorMap{"email": "InvalidEmail"}, errs)
	})

	t.Run("links are checked only when set", func(t *testing.T) {
		errs := usecase.ValidateDraft(v, domain.Draft{
			Email:        "ada@example.com",
			LinkedinLink: "not a url",
			CalendlyLink: "calendly",
		})
		assert.Equal(t, domain.ErrorMap{
			"linkedinLink": validation.CodeInvalidLinkedIn,
			"calendlyLink": validation.CodeInvalidCalendly,
		}, errs)
	})

	t.Run("accepted link shapes", func(t *testing.T) {
		for _, link := range []string{
			"https://www.linkedin.com/in/ada-lovelace",
			"http://calendly.com/ada/30min",
			"linkedin.com/in/ada",
			"calendly.com/",
		} {
			errs := usecase.ValidateDraft(v, domain.Draft{Email: "ada@example.com", LinkedinLink: link, CalendlyLink: link})
			assert.Empty(t, errs, "link %q", link)
		}
	})

	t.Run("visibility toggles never affect validity", func(t *testing.T) {
		d := domain.Draft{Email: "ada@example.com", ShowEmail: false, ShowCalendly: false}
		assert.Empty(t, usecase.ValidateDraft(v, d))
	})

	t.Run("is deterministic", func(t *testing.T) {
		d := domain.Draft{Email: "nope", LinkedinLink: "x"}
		assert.Equal(t, usecase.ValidateDraft(v, d), usecase.ValidateDraft(v, d))
	})
}

// Submission sequencer

func TestSignupSubmit_InvalidDraftMakesNoNetworkCall(t *testing.T) {
	repo := new(MockAlumniRepo)
	uploader := new(MockUploader)
	form, _ := newForm(repo, uploader)

	fill(t, form, map[string]string{domain.FieldName: "A", domain.FieldEmail: "bad-email", domain.FieldCompany: "X"})
	require.NoError(t, form.AttachFile(domain.StagedFile{Name: "me.png", Data: []byte("png")}))

	err := form.Submit(context.Background())

	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "List", mock.Anything)
	uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)

	st := form.State()
	assert.Equal(t, domain.PhaseFailed, st.Phase)
	require.NotNil(t, st.Failure)
	assert.Equal(t, domain.PhaseValidating, st.Failure.Stage)
	assert.Equal(t, domain.ErrorMap{"email": "InvalidEmail"}, st.Errors)
	assert.Equal(t, "bad-email", st.Draft.Email, "draft must be preserved")
	assert.True(t, st.Open)
}

func TestSignupSubmit_FailedUploadNeverPersists(t *testing.T) {
	repo := new(MockAlumniRepo)
	uploader := new(MockUploader)
	cause := errors.New("bucket rejected the object")
	uploader.On("Upload", mock.Anything, mock.Anything).Return("", cause)

	form, _ := newForm(repo, uploader)
	fill(t, form, validFields())
	require.NoError(t, form.AttachFile(domain.StagedFile{Name: "me.png", Data: []byte("png")}))

	err := form.Submit(context.Background())

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	assert.ErrorIs(t, err, cause)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	st := form.State()
	assert.Equal(t, domain.PhaseFailed, st.Phase)
	assert.Equal(t, domain.PhaseUploading, st.Failure.Stage)
	assert.Equal(t, domain.KindUploadFailed, st.Failure.Kind)
	assert.Equal(t, "me.png", st.PictureName, "staged file kept for retry")
	assert.Equal(t, "ada@example.com", st.Draft.Email)
}

func TestSignupSubmit_RetryWithoutPictureAfterUploadFailure(t *testing.T) {
	uploader := new(MockUploader)
	uploader.On("Upload", mock.Anything, mock.Anything).Return("", errors.New("network down")).Once()

	var calls []string
	repo := &memoryRepo{calls: &calls}
	form, dir := newForm(repo, uploader)
	fill(t, form, validFields())
	require.NoError(t, form.AttachFile(domain.StagedFile{Name: "me.png", Data: []byte("png")}))

	require.ErrorIs(t, form.Submit(context.Background()), domain.ErrUploadFailed)

	require.NoError(t, form.RemoveFile())
	require.NoError(t, form.Submit(context.Background()))

	profiles := dir.Snapshot()
	require.Len(t, profiles, 1)
	assert.Nil(t, profiles[0].PictureURL, "picture stays absent, not empty")
}

func TestSignupSubmit_SuccessfulFlow(t *testing.T) {
	var calls []string
	repo := &memoryRepo{calls: &calls}
	uploader := &recordingUploader{url: "https://x/img.png", calls: &calls}
	form, dir := newForm(repo, uploader)

	fill(t, form, validFields())
	fill(t, form, map[string]string{
		domain.FieldAdvice:       "Practice daily.\nSleep well.",
		domain.FieldLinkedinLink: "https://www.linkedin.com/in/ada",
		domain.FieldShowEmail:    "false",
	})
	require.NoError(t, form.AttachFile(domain.StagedFile{Name: "me.png", Data: []byte("png")}))

	err := form.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"upload", "create", "list"}, calls, "stages run strictly in order")

	st := form.State()
	assert.Equal(t, domain.PhaseIdle, st.Phase)
	assert.Nil(t, st.Failure)
	assert.False(t, st.Open, "form is closed")
	assert.Equal(t, domain.NewDraft(), st.Draft, "draft reset to its initial shape")
	assert.Empty(t, st.PictureName)
	assert.False(t, st.DirectoryStale)

	profiles := dir.Snapshot()
	require.Len(t, profiles, 1)
	got := profiles[0]
	assert.Equal(t, "ada@example.com", got.Email)
	require.NotNil(t, got.PictureURL)
	assert.Equal(t, "https://x/img.png", *got.PictureURL)
	assert.False(t, got.ShowEmail)
	assert.True(t, got.ShowCalendly)
	assert.Equal(t, "Practice daily.\nSleep well.", got.Advice)
}

func TestSignupSubmit_PersistenceFailureKeepsDraft(t *testing.T) {
	repo := new(MockAlumniRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.CandidateProfile")).Return(errors.New("connection refused"))

	form, dir := newForm(repo, new(MockUploader))
	fill(t, form, validFields())

	err := form.Submit(context.Background())

	assert.ErrorIs(t, err, domain.ErrPersistenceFailed)
	repo.AssertNotCalled(t, "List", mock.Anything)
	assert.Empty(t, dir.Snapshot())

	st := form.State()
	assert.Equal(t, domain.PhaseFailed, st.Phase)
	assert.Equal(t, domain.PhasePersisting, st.Failure.Stage)
	assert.Equal(t, "Ada Lovelace", st.Draft.Name)
	assert.True(t, st.Open)
}

func TestSignupSubmit_PersistenceTimeoutIsDistinct(t *testing.T) {
	repo := new(MockAlumniRepo)
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		<-ctx.Done()
	}).Return(context.DeadlineExceeded)

	dir := usecase.NewAlumniDirectory(repo, time.Second)
	form := usecase.NewSignupForm("timeout", usecase.SignupDeps{
		Validate:       validation.New(),
		Uploader:       new(MockUploader),
		Repo:           repo,
		Directory:      dir,
		PersistTimeout: 20 * time.Millisecond,
	})
	form.Open()
	fill(t, form, validFields())

	err := form.Submit(context.Background())

	assert.ErrorIs(t, err, domain.ErrPersistenceFailed)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, "the request timed out", form.State().Failure.Reason)
}

func TestSignupSubmit_RefreshFailureIsNonFatal(t *testing.T) {
	var calls []string
	repo := &memoryRepo{calls: &calls, listErr: errors.New("read replica down")}
	form, dir := newForm(repo, new(MockUploader))
	fill(t, form, validFields())

	err := form.Submit(context.Background())

	assert.ErrorIs(t, err, domain.ErrRefreshFailed)
	assert.NotErrorIs(t, err, domain.ErrPersistenceFailed)
	assert.Equal(t, []string{"create", "list"}, calls)

	st := form.State()
	assert.Equal(t, domain.PhaseIdle, st.Phase, "refresh failure is not a Failed state")
	assert.False(t, st.Open)
	assert.Equal(t, domain.NewDraft(), st.Draft)
	assert.True(t, st.DirectoryStale)
	assert.True(t, dir.Stale())
	assert.Len(t, repo.profiles, 1, "the write went through")
}

func TestSignupSubmit_RejectsOverlappingSubmission(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	uploader := new(MockUploader)
	uploader.On("Upload", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		close(started)
		<-release
	}).Return("https://x/img.png", nil)

	var calls []string
	form, _ := newForm(&memoryRepo{calls: &calls}, uploader)
	fill(t, form, validFields())
	require.NoError(t, form.AttachFile(domain.StagedFile{Name: "me.png", Data: []byte("png")}))

	done := make(chan error, 1)
	go func() { done <- form.Submit(context.Background()) }()
	<-started

	assert.Equal(t, domain.PhaseUploading, form.State().Phase)
	assert.ErrorIs(t, form.Submit(context.Background()), domain.ErrSubmissionInProgress)
	assert.ErrorIs(t, form.UpdateField(domain.FieldName, "Eve"), domain.ErrSubmissionInProgress)

	close(release)
	require.NoError(t, <-done)
	uploader.AssertNumberOfCalls(t, "Upload", 1)
}

func TestSignupForm_ClosedFormRejectsActions(t *testing.T) {
	repo := new(MockAlumniRepo)
	form, _ := newForm(repo, new(MockUploader))
	fill(t, form, validFields())
	require.NoError(t, form.Close())

	assert.ErrorIs(t, form.Submit(context.Background()), domain.ErrFormClosed)
	assert.ErrorIs(t, form.UpdateField(domain.FieldName, "x"), domain.ErrFormClosed)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	form.Open()
	assert.Equal(t, "Ada Lovelace", form.State().Draft.Name, "closing keeps the draft")
}

func TestSignupForm_FailedStateLeftOnNewAttempt(t *testing.T) {
	var calls []string
	form, _ := newForm(&memoryRepo{calls: &calls}, new(MockUploader))
	fill(t, form, map[string]string{domain.FieldName: "A", domain.FieldEmail: "nope", domain.FieldCompany: "X"})

	require.ErrorIs(t, form.Submit(context.Background()), domain.ErrValidationFailed)
	assert.Equal(t, domain.PhaseFailed, form.State().Phase)

	fill(t, form, validFields())
	require.NoError(t, form.Submit(context.Background()))
	assert.Equal(t, domain.PhaseIdle, form.State().Phase)
	assert.Nil(t, form.State().Failure)
	assert.Empty(t, form.State().Errors)
}

// Upload coordinator

type fakeObjectStore struct {
	key, contentType string
	body             []byte
	err              error
	calls            int
}

func (s *fakeObjectStore) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	s.calls++
	s.key, s.contentType, s.body = key, contentType, body
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.example.com/" + key, nil
}

func TestPictureUploader(t *testing.T) {
	t.Run("returns the stored object URL", func(t *testing.T) {
		store := &fakeObjectStore{}
		up := usecase.NewPictureUploader(store, time.Second)

		url, err := up.Upload(context.Background(), domain.StagedFile{Name: "doc.pdf", Data: []byte("%PDF-1.7 hello")})
		require.NoError(t, err)

		assert.Regexp(t, `^alumni/pictures/[0-9a-f-]{36}\.pdf$`, store.key)
		assert.Equal(t, "application/pdf", store.contentType)
		assert.Equal(t, "https://cdn.example.com/"+store.key, url)
	})

	t.Run("does not filter file types", func(t *testing.T) {
		store := &fakeObjectStore{}
		up := usecase.NewPictureUploader(store, time.Second)

		_, err := up.Upload(context.Background(), domain.StagedFile{Name: "notes.txt", Data: []byte("plain text")})
		assert.NoError(t, err)
		assert.Equal(t, []byte("plain text"), store.body)
	})

	t.Run("failure preserves the cause and is not retried", func(t *testing.T) {
		cause := errors.New("403 forbidden")
		store := &fakeObjectStore{err: cause}
		up := usecase.NewPictureUploader(store, time.Second)

		_, err := up.Upload(context.Background(), domain.StagedFile{Name: "a.png", Data: []byte("x")})
		assert.ErrorIs(t, err, domain.ErrUploadFailed)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, 1, store.calls)
	})
}

// Directory

func TestAlumniDirectory_RefreshReplacesWholesale(t *testing.T) {
	repo := new(MockAlumniRepo)
	repo.On("List", mock.Anything).Return([]domain.CandidateProfile{{ID: 1, Email: "a@example.com"}}, nil).Once()
	repo.On("List", mock.Anything).Return([]domain.CandidateProfile{{ID: 2, Email: "b@example.com"}}, nil).Once()
	repo.On("List", mock.Anything).Return(nil, errors.New("down")).Once()

	dir := usecase.NewAlumniDirectory(repo, time.Second)
	assert.Empty(t, dir.Snapshot())

	require.NoError(t, dir.Refresh(context.Background()))
	first := dir.Snapshot()

	require.NoError(t, dir.Refresh(context.Background()))
	assert.Equal(t, []domain.CandidateProfile{{ID: 2, Email: "b@example.com"}}, dir.Snapshot())
	assert.Equal(t, int64(1), first[0].ID, "earlier snapshots are not mutated")

	assert.Error(t, dir.Refresh(context.Background()))
	assert.True(t, dir.Stale())
	assert.Equal(t, int64(2), dir.Snapshot()[0].ID, "failed refresh keeps the last collection")
}

// gatedRepo blocks the first List after it has read the collection, so a
// later refresh can overtake it.
type gatedRepo struct {
	memoryRepo
	gated   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (r *gatedRepo) List(ctx context.Context) ([]domain.CandidateProfile, error) {
	out, err := r.memoryRepo.List(ctx)
	if r.gated.CompareAndSwap(false, true) {
		close(r.entered)
		<-r.release
	}
	return out, err
}

func TestAlumniDirectory_OlderRefreshNeverOverwritesNewer(t *testing.T) {
	var calls []string
	repo := &gatedRepo{
		memoryRepo: memoryRepo{calls: &calls},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	dir := usecase.NewAlumniDirectory(repo, 5*time.Second)
	deps := usecase.SignupDeps{
		Validate:       validation.New(),
		Uploader:       new(MockUploader),
		Repo:           repo,
		Directory:      dir,
		PersistTimeout: time.Second,
	}

	formA := usecase.NewSignupForm("a", deps)
	formA.Open()
	fill(t, formA, map[string]string{domain.FieldName: "A", domain.FieldEmail: "a@x.io", domain.FieldCompany: "X"})

	formB := usecase.NewSignupForm("b", deps)
	formB.Open()
	fill(t, formB, map[string]string{domain.FieldName: "B", domain.FieldEmail: "b@x.io", domain.FieldCompany: "Y"})

	done := make(chan error, 1)
	go func() { done <- formA.Submit(context.Background()) }()
	<-repo.entered

	require.NoError(t, formB.Submit(context.Background()))
	close(repo.release)
	require.NoError(t, <-done)

	var emails []string
	for _, p := range dir.Snapshot() {
		emails = append(emails, p.Email)
	}
	assert.ElementsMatch(t, []string{"a@x.io", "b@x.io"}, emails)
	assert.False(t, dir.Stale())
}

func TestAlumniDirectory_StaleUntilNewerRefreshSucceeds(t *testing.T) {
	repo := new(MockAlumniRepo)
	repo.On("List", mock.Anything).Return([]domain.CandidateProfile{{ID: 1}}, nil).Once()
	repo.On("List", mock.Anything).Return(nil, errors.New("down")).Once()
	repo.On("List", mock.Anything).Return([]domain.CandidateProfile{{ID: 1}, {ID: 2}}, nil).Once()

	dir := usecase.NewAlumniDirectory(repo, time.Second)
	require.NoError(t, dir.Refresh(context.Background()))
	assert.False(t, dir.Stale())

	require.Error(t, dir.Refresh(context.Background()))
	assert.True(t, dir.Stale())
	assert.Len(t, dir.Snapshot(), 1)

	require.NoError(t, dir.Refresh(context.Background()))
	assert.False(t, dir.Stale())
	assert.Len(t, dir.Snapshot(), 2)
}

func TestSignupSubmit_MissingRequiredChecksTheSubmittedDraft(t *testing.T) {
	repo := new(MockAlumniRepo)
	form, _ := newForm(repo, new(MockUploader))
	fill(t, form, validFields())
	require.NoError(t, form.UpdateField(domain.FieldCompany, ""))

	err := form.Submit(context.Background())

	assert.ErrorIs(t, err, domain.ErrMissingRequired)
	var missing *domain.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{domain.FieldCompany}, missing.Fields)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	st := form.State()
	assert.Equal(t, domain.PhaseIdle, st.Phase)
	assert.True(t, st.Open)

	require.NoError(t, form.UpdateField(domain.FieldCompany, "X"), "form is not left mid-submission")
}

// cancellingRepo cancels the caller's context once the record is written and
// fails List if that cancellation reaches it.
type cancellingRepo struct {
	memoryRepo
	cancel context.CancelFunc
}

func (r *cancellingRepo) Create(ctx context.Context, profile *domain.CandidateProfile) error {
	err := r.memoryRepo.Create(ctx, profile)
	r.cancel()
	return err
}

func (r *cancellingRepo) List(ctx context.Context) ([]domain.CandidateProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.memoryRepo.List(ctx)
}

func TestSignupSubmit_RefreshSurvivesCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls []string
	repo := &cancellingRepo{memoryRepo: memoryRepo{calls: &calls}, cancel: cancel}
	form, dir := newForm(repo, new(MockUploader))
	fill(t, form, validFields())

	require.NoError(t, form.Submit(ctx))
	assert.False(t, dir.Stale())
	require.Len(t, dir.Snapshot(), 1)
	assert.Equal(t, "ada@example.com", dir.Snapshot()[0].Email)
}
