package a2s

import "errors"

// Failure kinds returned by the client. Wrapped errors carry detail,
// match them with errors.Is.
var (
	// ErrResolution means the host/port could not be turned into a sendable address.
	ErrResolution = errors.New("a2s: address resolution failed")

	// ErrTimeout means no reply arrived within Client.Timeout. The query is
	// idempotent, retrying is up to the caller.
	ErrTimeout = errors.New("a2s: query timed out")

	// ErrProtocol means a reply arrived but its header, type byte or payload
	// did not match the Source query wire format.
	ErrProtocol = errors.New("a2s: malformed response")
)
