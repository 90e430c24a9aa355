package domain

import "errors"

var (
	// ErrCatalogInvalid indicates the question catalog is missing, malformed,
	// or contains a task that fails validation. Loads are atomic: one bad
	// record fails the whole catalog.
	ErrCatalogInvalid = errors.New("question catalog invalid")
	// ErrStoreUnavailable indicates a backing store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrSessionCorrupt indicates a stored session document failed decoding
	// or schema validation. Distinct from absent: corruption is never treated
	// as "no session".
	ErrSessionCorrupt = errors.New("session document corrupt")
	// ErrSessionNotFound is returned when an operation targets a session that
	// does not exist, either never created or expired.
	ErrSessionNotFound = errors.New("interview session not found")
	// ErrSessionNotStarted is returned when a submit arrives before start.
	ErrSessionNotStarted = errors.New("interview not started")
	// ErrSessionFinished is returned when a finished session receives a
	// submit. Finished sessions are read-only.
	ErrSessionFinished = errors.New("interview already finished")
)
