package connectivity

import "fmt"

// State is the connectivity state of the client. There is exactly one
// authoritative current state; combinations like "connected while offline"
// cannot be expressed.
type State int

const (
	// StateOffline means no network at all.
	StateOffline State = iota

	// StateUnreachable means the network is up but the remote store is not
	// answering the probe.
	StateUnreachable

	// StateConnected means the remote store answered a probe.
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateOffline:
		return "offline"
	case StateUnreachable:
		return "online-unreachable"
	case StateConnected:
		return "online-connected"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Connected reports whether the remote store is reachable.
func (s State) Connected() bool {
	return s == StateConnected
}

// Online reports whether the network itself is up, reachable or not.
func (s State) Online() bool {
	return s != StateOffline
}
