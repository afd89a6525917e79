package core

import (
	"errors"
	"fmt"
)

// Sentinel errors of the resolution pipeline. Providers return these (or
// wrap them with %w) so the delivery layer can map each failure class to
// distinct user guidance.
var (
	// ErrUnknownLink means the input matched no supported platform.
	ErrUnknownLink = errors.New("unsupported link")
	// ErrNotFound means the platform reports the content as absent,
	// including expired story items.
	ErrNotFound = errors.New("content not found")
	// ErrUnauthorized means credentials are missing or rejected.
	ErrUnauthorized = errors.New("missing or invalid platform credentials")
	// ErrUnavailable covers transient platform failures worth retrying.
	ErrUnavailable = errors.New("platform temporarily unavailable")
	// ErrNoResults means the cross-platform search returned nothing.
	ErrNoResults = errors.New("search returned no results")
	// ErrNoMatch means search succeeded but no candidate was selected.
	ErrNoMatch = errors.New("no matching media found")
	// ErrSessionExpired means a follow-up choice arrived after its
	// session was invalidated or evicted.
	ErrSessionExpired = errors.New("session expired")
	// ErrTooLarge is matched via errors.Is against TooLargeError.
	ErrTooLarge = errors.New("media exceeds size limit")
)

// TooLargeError reports an artifact that exceeded the transport's upload
// limit. The oversized file has already been deleted when this is
// returned.
type TooLargeError struct {
	SizeBytes  int64
	LimitBytes int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("media size %d bytes exceeds limit of %d bytes", e.SizeBytes, e.LimitBytes)
}

// Is makes errors.Is(err, ErrTooLarge) match.
func (e *TooLargeError) Is(target error) bool {
	return target == ErrTooLarge
}
