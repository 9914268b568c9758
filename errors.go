package romcat

import "github.com/elwood/romcat/internal/util"

// Error kinds surfaced to callers. Use errors.Is to test for these across
// any wrapping this package or its internals add.
var (
	ErrNotFound          = util.ErrNotFound
	ErrStoreUnavailable  = util.ErrStoreUnavailable
	ErrQueryFailed       = util.ErrQueryFailed
	ErrIngestParseFailed = util.ErrIngestParseFailed
	ErrIngestWriteFailed = util.ErrIngestWriteFailed
	ErrAlreadyExists     = util.ErrAlreadyExists
)
