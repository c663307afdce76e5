package assistant

import "fmt"

type State string

const (
	StateGreeting   State = "greeting"
	StateListening  State = "listening"
	StateIdle       State = "idle"
	StateResponding State = "responding"
	StateTerminated State = "terminated"
	StateFailed     State = "failed"
)

type Event string

const (
	EventGreeted   Event = "greeted"
	EventIgnored   Event = "ignored"
	EventResumed   Event = "resumed"
	EventWoken     Event = "woken"
	EventResponded Event = "responded"
	EventStopped   Event = "stopped"
	EventFailed    Event = "failed"
)

// Transition returns the state reached by applying event to current.
func Transition(current State, event Event) (State, error) {
	switch current {
	case StateGreeting:
		switch event {
		case EventGreeted:
			return StateListening, nil
		case EventFailed:
			return StateFailed, nil
		}
	case StateListening:
		switch event {
		case EventIgnored:
			return StateIdle, nil
		case EventWoken:
			return StateResponding, nil
		case EventStopped:
			return StateTerminated, nil
		case EventFailed:
			return StateFailed, nil
		}
	case StateIdle:
		switch event {
		case EventResumed:
			return StateListening, nil
		case EventFailed:
			return StateFailed, nil
		}
	case StateResponding:
		switch event {
		case EventResponded:
			return StateListening, nil
		case EventFailed:
			return StateFailed, nil
		}
	}
	return current, invalidTransition(current, event)
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: state=%s event=%s", state, event)
}
