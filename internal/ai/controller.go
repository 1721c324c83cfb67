package ai

import "github.com/udisondev/magic2d/internal/model"

// Controller drives one character between magic ticks.
type Controller interface {
	// Start enables ticking.
	Start()

	// Stop disables ticking. A stopped controller ignores Tick.
	Stop()

	// Character returns the controlled character.
	Character() model.Ref

	// Tick advances the controller by deltaMs of simulated time.
	Tick(deltaMs int32)
}

// Updater is a per-tick system, e.g. the magic manager.
type Updater interface {
	Update(deltaMs int32)
}
