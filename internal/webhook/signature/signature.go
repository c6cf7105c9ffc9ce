// Package signature verifies that inbound webhook payloads really come from
// the provider that claims to have sent them. The two providers use
// incompatible schemes, so each gets its own verifier; the shared contract is
// Verify(headers, rawBody) against the raw bytes as received on the wire —
// re-serialized JSON produces a different digest.
package signature

import (
	"errors"
	"time"
)

var (
	ErrMissingSignature = errors.New("signature header is required")
	ErrMissingHeader    = errors.New("required webhook header is missing")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidTimestamp = errors.New("invalid signature timestamp")
	ErrTimestampExpired = errors.New("signature timestamp outside allowed skew")
)

// DefaultTolerance bounds how far a signed timestamp may drift from the
// receiver's clock before the delivery is treated as a replay.
const DefaultTolerance = 5 * time.Minute

func withinTolerance(now, signed time.Time, tolerance time.Duration) bool {
	diff := now.Sub(signed)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
