package domain

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Draft field names, as sent by the signup form.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldShowEmail    = "showEmail"
	FieldCompany      = "company"
	FieldAdvice       = "advice"
	FieldCalendlyLink = "calendlyLink"
	FieldShowCalendly = "showCalendly"
	FieldLinkedinLink = "linkedinLink"
)

// CandidateProfile is an alumni mentor record as held by the record store.
type CandidateProfile struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ShowEmail    bool      `json:"showEmail"`
	Company      string    `json:"company"`
	Advice       string    `json:"advice"`
	PictureURL   *string   `json:"pictureUrl,omitempty"`
	CalendlyLink string    `json:"calendlyLink"`
	ShowCalendly bool      `json:"showCalendly"`
	LinkedinLink string    `json:"linkedinLink"`
	CreatedAt    time.Time `json:"createdAt"`
}

// StagedFile is a picture attached to a draft but not uploaded yet.
type StagedFile struct {
	Name string
	Data []byte
}

// Draft is the in-progress signup record. It is a value: edits go through
// ApplyField and produce a new Draft.
type Draft struct {
	Name         string      `json:"name"`
	Email        string      `json:"email" validate:"alumni_email"`
	ShowEmail    bool        `json:"showEmail"`
	Company      string      `json:"company"`
	Advice       string      `json:"advice"`
	CalendlyLink string      `json:"calendlyLink" validate:"omitempty,profile_url"`
	ShowCalendly bool        `json:"showCalendly"`
	LinkedinLink string      `json:"linkedinLink" validate:"omitempty,profile_url"`
	Picture      *StagedFile `json:"-" validate:"-"`
}

// NewDraft returns the empty form shape. Both visibility toggles start on.
func NewDraft() Draft {
	return Draft{
		ShowEmail:    true,
		ShowCalendly: true,
	}
}

// HasPicture reports whether a file is staged for upload.
func (d Draft) HasPicture() bool {
	return d.Picture != nil
}

// MissingRequired lists the fields the form marks as required but are blank.
func (d Draft) MissingRequired() []string {
	var missing []string
	if d.Name == "" {
		missing = append(missing, FieldName)
	}
	if d.Email == "" {
		missing = append(missing, FieldEmail)
	}
	if d.Company == "" {
		missing = append(missing, FieldCompany)
	}
	return missing
}

// Profile converts the draft into the record to be created. pictureURL is nil
// when no upload took place.
func (d Draft) Profile(pictureURL *string) CandidateProfile {
	return CandidateProfile{
		Name:         d.Name,
		Email:        d.Email,
		ShowEmail:    d.ShowEmail,
		Company:      d.Company,
		Advice:       d.Advice,
		PictureURL:   pictureURL,
		CalendlyLink: d.CalendlyLink,
		ShowCalendly: d.ShowCalendly,
		LinkedinLink: d.LinkedinLink,
	}
}

// ApplyField returns a copy of d with one field replaced. Toggle fields accept
// "true"/"false" (and the other forms strconv.ParseBool understands).
func ApplyField(d Draft, field, value string) (Draft, error) {
	switch field {
	case FieldName:
		d.Name = value
	case FieldEmail:
		d.Email = value
	case FieldCompany:
		d.Company = value
	case FieldAdvice:
		d.Advice = value
	case FieldCalendlyLink:
		d.CalendlyLink = value
	case FieldLinkedinLink:
		d.LinkedinLink = value
	case FieldShowEmail, FieldShowCalendly:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return d, fmt.Errorf("field %s expects a boolean, got %q", field, value)
		}
		if field == FieldShowEmail {
			d.ShowEmail = b
		} else {
			d.ShowCalendly = b
		}
	default:
		return d, fmt.Errorf("unknown field %q", field)
	}
	return d, nil
}

// ErrorMap maps a draft field name to an error code such as InvalidEmail.
type ErrorMap map[string]string

// AlumniRepository is the record store.
type AlumniRepository interface {
	Create(ctx context.Context, profile *CandidateProfile) error
	List(ctx context.Context) ([]CandidateProfile, error)
}

// ObjectStore hosts uploaded binaries and hands back a URL for display.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// PictureUploader exchanges a staged file for a stable reference URL.
type PictureUploader interface {
	Upload(ctx context.Context, file StagedFile) (string, error)
}

// Public returns the profile as shown in the directory: the email and the
// Calendly link are blanked when their visibility toggle is off.
func (p CandidateProfile) Public() CandidateProfile {
	if !p.ShowEmail {
		p.Email = ""
	}
	if !p.ShowCalendly {
		p.CalendlyLink = ""
	}
	return p
}

// PublicProfiles applies Public to every profile.
func PublicProfiles(profiles []CandidateProfile) []CandidateProfile {
	out := make([]CandidateProfile, len(profiles))
	for i, p := range profiles {
		out[i] = p.Public()
	}
	return out
}
