package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyField(t *testing.T) {
	d := NewDraft()

	next, err := ApplyField(d, FieldName, "Ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", next.Name)
	assert.Empty(t, d.Name, "input draft is not mutated")

	next, err = ApplyField(next, FieldShowCalendly, "false")
	require.NoError(t, err)
	assert.False(t, next.ShowCalendly)
	assert.True(t, next.ShowEmail)

	_, err = ApplyField(next, FieldShowEmail, "maybe")
	assert.Error(t, err)

	_, err = ApplyField(next, "pictureUrl", "https://x/img.png")
	assert.Error(t, err, "picture is only set by an upload")
}

func TestDraft_MissingRequired(t *testing.T) {
	assert.Equal(t, []string{FieldName, FieldEmail, FieldCompany}, NewDraft().MissingRequired())
	assert.Empty(t, Draft{Name: "A", Email: "a@b.co", Company: "X"}.MissingRequired())
}

func TestDraft_Profile(t *testing.T) {
	d := Draft{Name: "A", Email: "a@b.co", Company: "X", ShowEmail: true, Picture: &StagedFile{Name: "a.png"}}

	p := d.Profile(nil)
	assert.Nil(t, p.PictureURL)

	url := "https://x/img.png"
	p = d.Profile(&url)
	require.NotNil(t, p.PictureURL)
	assert.Equal(t, url, *p.PictureURL)
	assert.True(t, p.ShowEmail)
}

func TestWorkflowError(t *testing.T) {
	cause := errors.New("socket closed")
	err := fmt.Errorf("submit: %w", PersistenceFailed(cause))

	assert.ErrorIs(t, err, ErrPersistenceFailed)
	assert.NotErrorIs(t, err, ErrUploadFailed)
	assert.ErrorIs(t, err, cause)

	var wf *WorkflowError
	require.ErrorAs(t, err, &wf)
	assert.Equal(t, "socket closed", wf.Cause())

	v := ValidationFailed(ErrorMap{"email": "InvalidEmail"})
	assert.ErrorIs(t, v, ErrValidationFailed)
	assert.Equal(t, "ValidationFailed: 1 invalid field(s)", v.Error())
}

func TestMarkTimeout(t *testing.T) {
	assert.Nil(t, MarkTimeout(nil))

	plain := errors.New("refused")
	assert.Same(t, plain, MarkTimeout(plain))

	wrapped := fmt.Errorf("dial: %w", context.DeadlineExceeded)
	marked := MarkTimeout(wrapped)
	assert.ErrorIs(t, marked, ErrTimeout)
	assert.ErrorIs(t, marked, context.DeadlineExceeded)
	assert.Same(t, marked, MarkTimeout(marked))
}

func TestPrepTier_Valid(t *testing.T) {
	for _, tier := range []PrepTier{PrepBeginner, PrepIntermediate, PrepAdvanced} {
		assert.True(t, tier.Valid())
	}
	assert.False(t, PrepTier("expert").Valid())
	assert.False(t, PrepTier("").Valid())
}

func TestCandidateProfile_Public(t *testing.T) {
	p := CandidateProfile{Email: "a@u.edu", ShowEmail: false, CalendlyLink: "https://calendly.com/a", ShowCalendly: true}

	pub := p.Public()
	assert.Empty(t, pub.Email)
	assert.Equal(t, "https://calendly.com/a", pub.CalendlyLink)
	assert.Equal(t, "a@u.edu", p.Email, "original untouched")

	p.ShowEmail, p.ShowCalendly = true, false
	list := PublicProfiles([]CandidateProfile{p})
	assert.Equal(t, "a@u.edu", list[0].Email)
	assert.Empty(t, list[0].CalendlyLink)
}
