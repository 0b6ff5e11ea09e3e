package ports

import "github.com/jfortea/floorbot/internal/domain"

// ControlPlane is the pull side of the operator dashboard. The engine reads
// it only at fixed checkpoints between cycle steps; an operator action mid-
// cycle never interrupts an in-flight marketplace call.
type ControlPlane interface {
	// Toggles returns the current feature-toggle state.
	Toggles() domain.Toggles

	// StopRequested reports whether the operator asked the bot to stop.
	// Once true it stays true.
	StopRequested() bool

	// TakeCancelRequest consumes the one-shot cancel-all-offers request.
	// Returns true at most once per operator action.
	TakeCancelRequest() bool
}

// Broadcaster is the push side of the dashboard: cycle stats and discrete
// action logs fanned out to connected clients. Implementations must not
// block the engine's cycle.
type Broadcaster interface {
	Stats(s domain.Stats)
	Log(level, message string)
}
