package vecindex

import "errors"

var (
	// ErrInconsistent is returned when the vector file and the metadata
	// side-file disagree about how many entries exist. The index refuses
	// writes until it is rebuilt.
	ErrInconsistent = errors.New("vector index inconsistent with metadata")

	// ErrNotFound is returned when no entries exist for a document id.
	ErrNotFound = errors.New("document not in index")
)
