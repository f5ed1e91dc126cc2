package callwatch

import (
	"time"

	"github.com/apillai/callwatch/internal/scheduler"
)

// Observation is one recorded availability sample for a tracked link,
// delivered to callbacks registered via [WithObservationCallback].
//
// By the time a callback receives an Observation, the sample has already
// been appended to the link's CSV history file.
type Observation struct {
	// Link is the tracked URL that was probed.
	Link string

	// Timestamp is when the probe completed, in local time.
	Timestamp time.Time

	// AvailableForCall reports whether any status element on the page
	// advertised call availability.
	AvailableForCall bool

	// OnCall reports whether any status element indicated an active call
	// (a "join queue" style label).
	OnCall bool
}

// eventToObservation converts a scheduler event to the public API type.
func eventToObservation(ev scheduler.Event) Observation {
	return Observation{
		Link:             ev.Link,
		Timestamp:        ev.Observation.Timestamp,
		AvailableForCall: ev.Observation.AvailableForCall,
		OnCall:           ev.Observation.OnCall,
	}
}
