package task

// State is the lifecycle position of a Task.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateWatching
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateWatching:
		return "watching"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
