package receiver

// InitState tracks the push-backend connection lifecycle. It replaces
// the implicit "is a messaging instance already registered" global
// check with an explicit, observable holder.
type InitState int32

const (
	StateUninitialized InitState = iota
	StateInitializing
	StateReady
	// StateFailed means the last init attempt errored. The guard stays
	// open: a later config push retries.
	StateFailed
)

func (s InitState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
