package validator

import (
	"errors"

	"github.com/nibzard/featurecheck/internal/features"
)

// LoadFailure converts a features.Load error into a result holding a single
// top-level finding. Load failures are terminal for the run: no
// feature-level findings are possible.
func LoadFailure(path string, err error) *Result {
	var f Finding
	var malformed *features.MalformedInputError
	switch {
	case errors.Is(err, features.ErrMissingFile):
		f = errorf("", 0, CodeMissingFile, "file not found: %s", path)
	case errors.As(err, &malformed):
		f = errorf("", malformed.Line, CodeMalformedInput, "malformed XML: %s", malformed.Msg)
	default:
		f = errorf("", 0, CodeUnreadableInput, "cannot read file: %v", err)
	}
	return newResult(path, []Finding{f})
}

// ValidateFile loads path and validates it. Load failures become a single
// top-level finding instead of an error.
func ValidateFile(path string, opts Options) (*features.Document, *Result) {
	doc, err := features.Load(path)
	if err != nil {
		return nil, LoadFailure(path, err)
	}
	return doc, Validate(doc, opts)
}
