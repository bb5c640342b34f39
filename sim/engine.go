package sim

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTime
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	Schedule(e Event)
}

// A SimulationEndHandler is a handler that is called after the simulation ends.
type SimulationEndHandler interface {
	Handle(now VTime)
}

// SimulationEndHandlerFunc adapts a function to a SimulationEndHandler.
type SimulationEndHandlerFunc func(now VTime)

// Handle calls the function.
func (f SimulationEndHandlerFunc) Handle(now VTime) {
	f(now)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Spawn creates a process that starts running at the current time.
	Spawn(name string, fn func(p *Process)) *Process

	// Run will process all the events until the simulation finishes. It
	// returns the error passed to Abort, if any.
	Run() error

	// Pause will pause the simulation until continue is called.
	Pause()

	// Continue will continue the paused simulation
	Continue()

	// Stop ends the simulation gracefully after the current event.
	Stop()

	// Abort ends the simulation after the current event and makes Run return
	// err.
	Abort(err error)

	// Stopped tells if Stop or Abort has been called.
	Stopped() bool

	// RegisterSimulationEndHandler registers a handler that perform some
	// actions after the simulation is finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes all the registered SimulationEndHandler and releases
	// every process that is still waiting.
	Finished()
}
