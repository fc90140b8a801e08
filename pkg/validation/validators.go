package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Local part, @, domain with at least one dot and a 2+ letter TLD
	emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

	// Optional http(s) scheme, host with at least one dot, optional path
	profileURLRegex = regexp.MustCompile(`^(https?://)?([\w-])+\.([a-zA-Z]{2,})([/\w.-]*)*/?$`)
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("alumni_email", AlumniEmail)
	_ = v.RegisterValidation("profile_url", ProfileURL)
}

// New returns a validator that reports fields by their json name and knows
// the custom tags above.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	RegisterValidators(v)
	return v
}

// AlumniEmail validates an email address. Unlike the other validators an
// empty value fails: the address is always required.
func AlumniEmail(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

// ProfileURL validates a LinkedIn/Calendly style link
func ProfileURL(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return profileURLRegex.MatchString(val)
}
