package lib

import "fmt"

// Action is the mode selected for one invocation.
type Action int

const (
	ActionSend   Action = iota // enqueue pending files, do not wait
	ActionWait                 // enqueue, wait per file, then remove the original
	ActionRemove               // remove duplicates after confirmation
	ActionList                 // print duplicates
)

func (a Action) String() string {
	switch a {
	case ActionSend:
		return "send"
	case ActionWait:
		return "wait"
	case ActionRemove:
		return "rm"
	case ActionList:
		return "dup"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// NeedsProcessor reports whether the action talks to the external queue.
func (a Action) NeedsProcessor() bool {
	return a == ActionSend || a == ActionWait
}

// State is a step of one dispatch run.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateListing
	StateEnqueueNoWait
	StateEnqueueWait
	StateConfirmDelete
	StateDone
)

var stateNames = map[State]string{
	StateIdle:          "idle",
	StateScanning:      "scanning",
	StateListing:       "listing",
	StateEnqueueNoWait: "enqueue",
	StateEnqueueWait:   "enqueue-wait",
	StateConfirmDelete: "confirm-delete",
	StateDone:          "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// stateFor maps an action to the state that handles it.
func stateFor(a Action) State {
	switch a {
	case ActionWait:
		return StateEnqueueWait
	case ActionRemove:
		return StateConfirmDelete
	case ActionList:
		return StateListing
	default:
		return StateEnqueueNoWait
	}
}
