package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrChannelDisabled indicates that Send was called on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidReport indicates a report without an outcome.
	ErrInvalidReport = errors.New("invalid refresh report")
)
