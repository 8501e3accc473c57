package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so callers can decide between failing open and surfacing an error.
//   - ErrNotFound: key does not exist in store
//   - ErrUnavailable: backing service temporarily unavailable
//   - ErrClosed: component already shut down
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrClosed      = errors.New("closed")
)
