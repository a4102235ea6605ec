package emit

// Emitter receives observability events from the engine.
//
// Implementations must be safe for concurrent use and must not block;
// the engine calls Emit inline on the execution path. Emitters must
// never panic on malformed events.
type Emitter interface {
	Emit(e Event)
}
