package util

import "errors"

// Sentinel errors for the error kinds the core surfaces to callers.
var (
	// ErrNotFound indicates a requested machine or store file does not exist
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable indicates the store could not be opened or has no live connection
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrQueryFailed indicates a prepared statement failed to bind, execute, or scan
	ErrQueryFailed = errors.New("query failed")

	// ErrIngestParseFailed indicates the catalog XML was ill-formed
	ErrIngestParseFailed = errors.New("ingest parse failed")

	// ErrIngestWriteFailed indicates schema creation, insertion, or snapshot publish failed
	ErrIngestWriteFailed = errors.New("ingest write failed")

	// ErrAlreadyExists indicates the output path exists and overwrite was not permitted
	ErrAlreadyExists = errors.New("already exists")
)
