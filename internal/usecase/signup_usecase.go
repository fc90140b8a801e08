package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"alumni-prep-backend/internal/domain"
	"alumni-prep-backend/pkg/logger"
	"alumni-prep-backend/pkg/metrics"
	"alumni-prep-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// ValidateDraft runs the field rules against d. The draft is submittable iff
// the returned map is empty.
func ValidateDraft(v *validator.Validate, d domain.Draft) domain.ErrorMap {
	return domain.ErrorMap(validation.Fields(v, d))
}

// SignupDeps are the collaborators shared by every signup form.
type SignupDeps struct {
	Validate       *validator.Validate
	Uploader       domain.PictureUploader
	Repo           domain.AlumniRepository
	Directory      *AlumniDirectory
	PersistTimeout time.Duration
}

// SignupState is what the client renders for the signup workflow.
type SignupState struct {
	Open           bool            `json:"open"`
	Draft          domain.Draft    `json:"draft"`
	PictureName    string          `json:"pictureName,omitempty"`
	Errors         domain.ErrorMap `json:"errors"`
	Phase          domain.Phase    `json:"phase"`
	Failure        *domain.Failure `json:"failure,omitempty"`
	DirectoryStale bool            `json:"directoryStale"`
}

// SignupForm sequences one alumni signup: validate, upload the staged
// picture, create the record, then re-read the directory.
type SignupForm struct {
	id   string
	deps SignupDeps

	mu         sync.Mutex
	open       bool
	draft      domain.Draft
	errors     domain.ErrorMap
	phase      domain.Phase
	failure    *domain.Failure
	submitting bool
}

func NewSignupForm(id string, deps SignupDeps) *SignupForm {
	return &SignupForm{
		id:     id,
		deps:   deps,
		draft:  domain.NewDraft(),
		errors: domain.ErrorMap{},
		phase:  domain.PhaseIdle,
	}
}

func (f *SignupForm) State() SignupState {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := SignupState{
		Open:           f.open,
		Draft:          f.draft,
		Errors:         copyErrors(f.errors),
		Phase:          f.phase,
		Failure:        f.failure,
		DirectoryStale: f.deps.Directory.Stale(),
	}
	if f.draft.Picture != nil {
		st.PictureName = f.draft.Picture.Name
	}
	return st
}

// Open shows the form. The draft is kept as it was.
func (f *SignupForm) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
}

// Close hides the form without discarding the draft.
func (f *SignupForm) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return domain.ErrSubmissionInProgress
	}
	f.open = false
	return nil
}

// UpdateField applies one edit to the draft.
func (f *SignupForm) UpdateField(field, value string) error {
	return f.edit(func(d domain.Draft) (domain.Draft, error) {
		return domain.ApplyField(d, field, value)
	})
}

// AttachFile stages a picture; it is uploaded on submit. A later attach
// replaces the earlier one.
func (f *SignupForm) AttachFile(file domain.StagedFile) error {
	return f.edit(func(d domain.Draft) (domain.Draft, error) {
		d.Picture = &file
		return d, nil
	})
}

// RemoveFile drops the staged picture so the draft can be submitted without one.
func (f *SignupForm) RemoveFile() error {
	return f.edit(func(d domain.Draft) (domain.Draft, error) {
		d.Picture = nil
		return d, nil
	})
}

func (f *SignupForm) edit(reduce func(domain.Draft) (domain.Draft, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return domain.ErrFormClosed
	}
	if f.submitting {
		return domain.ErrSubmissionInProgress
	}

	next, err := reduce(f.draft)
	if err != nil {
		return err
	}
	f.draft = next
	return nil
}

// Submit runs the full sequence. Each stage starts only after the previous
// one succeeded. A draft with blank required fields is rejected with
// ErrMissingRequired before any stage runs. A RefreshFailed error means the record was written but the
// directory could not be re-read.
func (f *SignupForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return domain.ErrSubmissionInProgress
	}
	if !f.open {
		f.mu.Unlock()
		return domain.ErrFormClosed
	}
	draft := f.draft
	if missing := draft.MissingRequired(); len(missing) > 0 {
		f.mu.Unlock()
		return &domain.MissingFieldsError{Fields: missing}
	}
	f.submitting = true
	f.failure = nil
	f.phase = domain.PhaseValidating
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	// 1. Validate
	errs := ValidateDraft(f.deps.Validate, draft)
	f.mu.Lock()
	f.errors = errs
	f.mu.Unlock()
	if len(errs) > 0 {
		return f.fail(domain.PhaseValidating, domain.ValidationFailed(errs), "validation_failed")
	}

	// 2. Upload
	var pictureURL *string
	if draft.HasPicture() {
		f.setPhase(domain.PhaseUploading)
		url, err := f.deps.Uploader.Upload(ctx, *draft.Picture)
		if err != nil {
			if !errors.Is(err, domain.ErrUploadFailed) {
				err = domain.UploadFailed(err)
			}
			return f.fail(domain.PhaseUploading, err, "upload_failed")
		}
		pictureURL = &url
	}

	// 3. Persist
	f.setPhase(domain.PhasePersisting)
	profile := draft.Profile(pictureURL)
	if err := f.create(ctx, &profile); err != nil {
		return f.fail(domain.PhasePersisting, domain.PersistenceFailed(domain.MarkTimeout(err)), "persistence_failed")
	}

	logger.Log.Infow("Alumni profile created", "form", f.id, "profile_id", profile.ID, "with_picture", pictureURL != nil)

	// The write is done: reset and close before re-reading
	f.mu.Lock()
	f.draft = domain.NewDraft()
	f.errors = domain.ErrorMap{}
	f.open = false
	f.phase = domain.PhaseRefreshing
	f.mu.Unlock()

	// 4. Refresh; the record is written, so a departed caller must not cancel it
	err := f.deps.Directory.Refresh(context.WithoutCancel(ctx))
	f.setPhase(domain.PhaseIdle)
	if err != nil {
		logger.Log.Warnw("Directory refresh failed after signup", "form", f.id, "error", err)
		metrics.SignupSubmissions.WithLabelValues("refresh_failed").Inc()
		return domain.RefreshFailed(err)
	}

	metrics.SignupSubmissions.WithLabelValues("success").Inc()
	return nil
}

func (f *SignupForm) create(ctx context.Context, profile *domain.CandidateProfile) error {
	if f.deps.PersistTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.deps.PersistTimeout)
		defer cancel()
	}
	return f.deps.Repo.Create(ctx, profile)
}

func (f *SignupForm) setPhase(p domain.Phase) {
	f.mu.Lock()
	f.phase = p
	f.mu.Unlock()
}

// fail moves the form into Failed(stage, reason). The draft is left as is so
// the user can retry.
func (f *SignupForm) fail(stage domain.Phase, err error, outcome string) error {
	failure := &domain.Failure{Stage: stage, Reason: err.Error()}
	var wfErr *domain.WorkflowError
	if errors.As(err, &wfErr) {
		failure.Kind = wfErr.Kind
		failure.Reason = wfErr.Cause()
		failure.Fields = copyErrors(wfErr.Fields)
	}

	f.mu.Lock()
	f.phase = domain.PhaseFailed
	f.failure = failure
	f.mu.Unlock()

	if stage != domain.PhaseValidating {
		logger.Log.Warnw("Signup submission failed", "form", f.id, "stage", stage, "error", err)
	}
	metrics.SignupSubmissions.WithLabelValues(outcome).Inc()
	return err
}

func copyErrors(m domain.ErrorMap) domain.ErrorMap {
	out := make(domain.ErrorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
