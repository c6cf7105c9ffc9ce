// Package event parses raw webhook payloads into a closed set of typed
// variants per provider. Unknown type discriminators decode to Ignored
// instead of failing: new provider event types must not break existing
// deliveries, and the decision to skip them stays visible and testable.
package event

import (
	"fmt"

	"github.com/romariotrain/video-platform/internal/video/models"
)

// MalformedError reports a recognized event whose required correlation field
// is absent. Unknown event types never produce it.
type MalformedError struct {
	Type  string
	Field string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s event missing %s", e.Type, e.Field)
}

func (e *MalformedError) Is(target error) bool {
	return target == models.ErrMalformedEvent
}

// Ignored is the explicit no-op variant for unrecognized event types. It
// satisfies both provider unions so either decoder can return it.
type Ignored struct {
	Type string
}

func (Ignored) mediaEvent()    {}
func (Ignored) identityEvent() {}
