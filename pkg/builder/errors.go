package builder

import "errors"

var (
	// ErrConfiguration covers missing or unusable options and project configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrSchema is returned when the table does not exist in the schema.
	ErrSchema = errors.New("schema error")
	// ErrConflict is returned when the model file exists and force is not set.
	ErrConflict = errors.New("conflict")
	ErrIO       = errors.New("io error")
)
