package cachevault

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/cachevault/codec"
)

var (
	// ErrNotFound is returned when a key has no entry in the active backend.
	ErrNotFound = errors.New("cachevault: not found")

	// ErrQuotaExceeded is returned when a write would push the namespace past
	// its configured MaxSize. The rejected write leaves stored state unchanged.
	ErrQuotaExceeded = errors.New("cachevault: quota exceeded")

	// ErrCryptoUnavailable is returned when encryption is configured but no
	// cipher capability is available.
	ErrCryptoUnavailable = codec.ErrCryptoUnavailable

	// ErrCorruptData is returned when a stored payload cannot be decrypted,
	// decompressed, or deserialized back to a value.
	ErrCorruptData = codec.ErrCorrupt

	// ErrClosed is returned from operations issued after Close.
	ErrClosed = errors.New("cachevault: store closed")
)

// ValidationError reports the first schema violation found in a value.
// Validation is all-or-nothing; a failing value never reaches the backend.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("cachevault: validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("cachevault: validation failed on %q: %s", e.Field, e.Reason)
}
