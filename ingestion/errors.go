package ingestion

import "errors"

var (
	// ErrConceptRepositoryRequired is returned when a concept repository is not provided.
	ErrConceptRepositoryRequired = errors.New("concept repository required")

	// ErrMissingDescriptor is returned when an NDJSON stream has no
	// CodeSystem descriptor before its first concept record.
	ErrMissingDescriptor = errors.New("stream has no code system descriptor")
)
