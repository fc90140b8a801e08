package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Error codes returned per field.
const (
	CodeInvalidEmail    = "InvalidEmail"
	CodeInvalidLinkedIn = "InvalidLinkedIn"
	CodeInvalidCalendly = "InvalidCalendly"
)

// FieldCodes maps a json field name to the code reported when its rule fails
var FieldCodes = map[string]string{
	"email":        CodeInvalidEmail,
	"linkedinLink": CodeInvalidLinkedIn,
	"calendlyLink": CodeInvalidCalendly,
}

// Messages maps an error code to the text shown under the field
var Messages = map[string]string{
	CodeInvalidEmail:    "Invalid email address",
	CodeInvalidLinkedIn: "Invalid LinkedIn URL",
	CodeInvalidCalendly: "Invalid Calendly URL",
}

// Fields validates s and returns field -> error code. An empty map means s is
// valid. Only the first failing rule of a field is reported.
func Fields(v *validator.Validate, s interface{}) map[string]string {
	out := map[string]string{}

	err := v.Struct(s)
	if err == nil {
		return out
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// InvalidValidationError: s is not a struct; nothing field-level to say
		out["_"] = err.Error()
		return out
	}

	for _, e := range validationErrors {
		field := e.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = codeFor(e)
	}
	return out
}

// Describe turns a code map into the user-facing messages.
func Describe(codes map[string]string) map[string]string {
	msgs := make(map[string]string, len(codes))
	for field, code := range codes {
		if msg, ok := Messages[code]; ok {
			msgs[field] = msg
			continue
		}
		msgs[field] = code
	}
	return msgs
}

func codeFor(e validator.FieldError) string {
	if code, ok := FieldCodes[e.Field()]; ok {
		return code
	}
	// Fallback for fields without a dedicated code
	return fmt.Sprintf("Invalid%s", e.Tag())
}
