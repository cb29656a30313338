package cluster

import "github.com/sells-group/water-cli/internal/model"

type (
	// ValidationError reports input a run cannot be computed from.
	ValidationError = model.ValidationError
	// NotFoundError reports a county or selection absent from a run.
	NotFoundError = model.NotFoundError
)

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool { return model.IsValidation(err) }

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool { return model.IsNotFound(err) }

func invalid(field, format string, args ...any) error {
	return model.Invalid(field, format, args...)
}

func notFound(kind, key string) error {
	return model.NotFound(kind, key)
}
